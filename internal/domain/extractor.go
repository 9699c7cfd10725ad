package domain

import "context"

// Post-processor keys understood by extractors
const (
	PostProcessorExtractAudio = "FFmpegExtractAudio"
)

// PostProcessor is a transformation applied after the raw streams are fetched
type PostProcessor struct {
	Key     string
	Codec   string
	Quality string
}

// ProgressFunc receives progress events in the order the extractor reports them
type ProgressFunc func(ProgressEvent)

// Options configures a single extractor call. It is built per call and
// passed by value.
type Options struct {
	NoPlaylist          bool
	Quiet               bool
	NoWarnings          bool
	NoCheckCertificates bool
	SkipDownload        bool
	OutputTemplate      string
	Format              string
	MergeOutputFormat   string
	PostProcessors      []PostProcessor
	Progress            ProgressFunc
}

// Extractor is the external video extraction library
type Extractor interface {
	// Extract returns metadata for url, fetching media only when
	// opts.SkipDownload is false
	Extract(ctx context.Context, url string, opts Options) (*Metadata, error)

	// Download extracts and downloads url, returning the final metadata
	Download(ctx context.Context, url string, opts Options) (*Metadata, error)
}
