package infrastructure

import (
	"fmt"
	"strconv"

	"github.com/bogem/id3v2"
	"github.com/yourusername/ytshim/internal/domain"
)

// ID3Tagger writes title, artist and length frames into mp3 files
type ID3Tagger struct{}

// NewID3Tagger creates a new ID3 tagger
func NewID3Tagger() *ID3Tagger {
	return &ID3Tagger{}
}

// Tag writes the video's metadata into the ID3 tag of the file at path
func (t *ID3Tagger) Tag(path string, m *domain.Metadata) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s for tagging: %w", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if m.Title != "" {
		tag.SetTitle(m.Title)
	}
	if uploader := m.UploaderName(); uploader != "" {
		tag.SetArtist(uploader)
	}
	// TLEN is in milliseconds
	if seconds := m.DurationSeconds(); seconds > 0 {
		tag.AddTextFrame("TLEN", id3v2.EncodingUTF8, strconv.FormatInt(seconds*1000, 10))
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags for %s: %w", path, err)
	}
	return nil
}
