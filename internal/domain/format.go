package domain

import "fmt"

// Quality is the requested video quality ceiling
type Quality string

const (
	QualityBest    Quality = "best"
	QualityUHD2160 Quality = "uhd_2160"
	QualityQHD1440 Quality = "qhd_1440"
	QualityHD1080  Quality = "hd_1080"
	QualityHD720   Quality = "hd_720"
	QualitySD480   Quality = "sd_480"
	QualitySD360   Quality = "sd_360"
)

// OutputFormat is the requested output container or audio-only mode
type OutputFormat string

const (
	FormatMP3  OutputFormat = "mp3"
	FormatMP4  OutputFormat = "mp4"
	FormatWebM OutputFormat = "webm"
)

// Selector strings understood by yt-dlp's -f option
const (
	SelectorBestAudio = "bestaudio/best"
	SelectorBest      = "bestvideo+bestaudio/best"
)

// Audio transcode settings applied to FormatMP3 downloads
const (
	AudioCodec   = "mp3"
	AudioBitrate = "192"
)

var qualityHeights = map[Quality]int{
	QualityUHD2160: 2160,
	QualityQHD1440: 1440,
	QualityHD1080:  1080,
	QualityHD720:   720,
	QualitySD480:   480,
	QualitySD360:   360,
}

// Height returns the height ceiling for q, or 0 when q is unconstrained
func (q Quality) Height() int {
	return qualityHeights[q]
}

// Known reports whether q is one of the recognized quality tags
func (q Quality) Known() bool {
	if q == QualityBest {
		return true
	}
	_, ok := qualityHeights[q]
	return ok
}

// Known reports whether f is one of the recognized format tags
func (f OutputFormat) Known() bool {
	return f == FormatMP3 || f == FormatMP4 || f == FormatWebM
}

// IsAudioOnly reports whether f requests audio extraction
func (f OutputFormat) IsAudioOnly() bool {
	return f == FormatMP3
}

// FormatSelector maps a quality and format onto a yt-dlp format selector.
// Audio-only requests ignore quality; transcoding happens in a post-processor.
// Unrecognized qualities fall back to the unconstrained selector.
func FormatSelector(quality Quality, format OutputFormat) string {
	if format.IsAudioOnly() {
		return SelectorBestAudio
	}
	height := quality.Height()
	if height == 0 {
		return SelectorBest
	}
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", height, height)
}

// MergeFormat returns the container separately fetched streams are merged into
func MergeFormat(format OutputFormat) string {
	if format == FormatMP4 {
		return string(FormatMP4)
	}
	return string(FormatWebM)
}

// FinalExtension returns the extension of the file produced for format, or
// fallback when the container is chosen by the source
func FinalExtension(format OutputFormat, fallback string) string {
	if format.IsAudioOnly() {
		return AudioCodec
	}
	if fallback != "" {
		return fallback
	}
	return MergeFormat(format)
}
