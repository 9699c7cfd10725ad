package domain

// DownloadRepository defines the interface for the download journal
type DownloadRepository interface {
	// Create creates a new download
	Create(download *Download) error

	// Update updates an existing download
	Update(download *Download) error

	// Close releases the underlying storage
	Close() error
}

// AudioTagger writes descriptive tags into a finished audio file
type AudioTagger interface {
	Tag(path string, m *Metadata) error
}
