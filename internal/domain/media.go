package domain

import (
	"math"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxTitleLength bounds the title part of output filenames
const MaxTitleLength = 200

// OutputTemplate is the yt-dlp output template relative to the output directory
const OutputTemplate = "%(title).200s_%(id)s.%(ext)s"

// DefaultTitle replaces titles that sanitize to nothing
const DefaultTitle = "video"

// Metadata is the subset of the extractor's info dictionary this tool reads.
// Sources omit fields freely, so every field is optional.
type Metadata struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Uploader  *string  `json:"uploader,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	Thumbnail *string  `json:"thumbnail,omitempty"`
	Ext       string   `json:"ext,omitempty"`
	Filepath  string   `json:"filepath,omitempty"` // final path after post-processing
	Filename  string   `json:"filename,omitempty"` // path before post-processing
}

// InfoRecord is the single JSON line printed by the info command
type InfoRecord struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Uploader  *string `json:"uploader"`
	Duration  int64   `json:"duration"`
	Thumbnail *string `json:"thumbnail"`
}

// NewInfoRecord projects extractor metadata onto an InfoRecord
func NewInfoRecord(m *Metadata) InfoRecord {
	return InfoRecord{
		ID:        m.ID,
		Title:     m.Title,
		Uploader:  m.Uploader,
		Duration:  m.DurationSeconds(),
		Thumbnail: m.Thumbnail,
	}
}

// DurationSeconds returns the duration truncated to whole seconds, 0 if
// unknown, saturating at math.MaxInt64
func (m *Metadata) DurationSeconds() int64 {
	if m.Duration == nil || math.IsNaN(*m.Duration) || *m.Duration <= 0 {
		return 0
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if *m.Duration >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(*m.Duration)
}

// UploaderName returns the uploader or an empty string
func (m *Metadata) UploaderName() string {
	if m.Uploader == nil {
		return ""
	}
	return *m.Uploader
}

// ProgressStatus is the status tag of a progress event
type ProgressStatus string

const (
	ProgressDownloading ProgressStatus = "downloading"
	ProgressFinished    ProgressStatus = "finished"
)

// ProgressEvent is one progress tick reported during a download
type ProgressEvent struct {
	Status     ProgressStatus
	Downloaded int64
	Total      int64 // 0 when unknown
}

// DownloadResult is the outcome of a successful download
type DownloadResult struct {
	FilePath string
}

var invalidFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// SanitizeTitle makes a title safe to use as a filename component
func SanitizeTitle(title string) string {
	cleaned := strings.TrimSpace(invalidFilenameChars.ReplaceAllString(title, "_"))
	if cleaned == "" {
		return DefaultTitle
	}
	runes := []rune(cleaned)
	if len(runes) > MaxTitleLength {
		cleaned = string(runes[:MaxTitleLength])
	}
	return cleaned
}

// PrepareFilename renders OutputTemplate locally for m under dir
func PrepareFilename(dir string, m *Metadata, ext string) string {
	name := SanitizeTitle(m.Title) + "_" + m.ID + "." + ext
	return filepath.Join(dir, name)
}
