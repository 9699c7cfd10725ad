package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/ytshim/internal/domain"
)

// fakeExtractor implements domain.Extractor for testing
type fakeExtractor struct {
	meta     *domain.Metadata
	err      error
	events   []domain.ProgressEvent
	calls    int
	lastURL  string
	lastOpts domain.Options
}

func (f *fakeExtractor) Extract(ctx context.Context, url string, opts domain.Options) (*domain.Metadata, error) {
	f.calls++
	f.lastURL = url
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

func (f *fakeExtractor) Download(ctx context.Context, url string, opts domain.Options) (*domain.Metadata, error) {
	f.calls++
	f.lastURL = url
	f.lastOpts = opts
	for _, event := range f.events {
		if opts.Progress != nil {
			opts.Progress(event)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

// mockDownloadRepo implements domain.DownloadRepository for testing
type mockDownloadRepo struct {
	downloads map[string]*domain.Download
	statuses  []domain.DownloadStatus
	createErr error
}

func newMockDownloadRepo() *mockDownloadRepo {
	return &mockDownloadRepo{downloads: make(map[string]*domain.Download)}
}

func (m *mockDownloadRepo) Create(download *domain.Download) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *download
	m.downloads[download.ID] = &copied
	m.statuses = append(m.statuses, download.Status)
	return nil
}

func (m *mockDownloadRepo) Update(download *domain.Download) error {
	if _, ok := m.downloads[download.ID]; !ok {
		return fmt.Errorf("download not found: %s", download.ID)
	}
	copied := *download
	m.downloads[download.ID] = &copied
	m.statuses = append(m.statuses, download.Status)
	return nil
}

func (m *mockDownloadRepo) Close() error {
	return nil
}

func (m *mockDownloadRepo) only() *domain.Download {
	for _, d := range m.downloads {
		return d
	}
	return nil
}

// mockTagger implements domain.AudioTagger for testing
type mockTagger struct {
	paths []string
	err   error
}

func (m *mockTagger) Tag(path string, meta *domain.Metadata) error {
	m.paths = append(m.paths, path)
	return m.err
}

// failingWriter fails every write
type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}
