package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the current status of a download
type DownloadStatus string

const (
	StatusProcessing DownloadStatus = "processing"
	StatusCompleted  DownloadStatus = "completed"
	StatusFailed     DownloadStatus = "failed"
)

// Download is the journal entry for one download invocation
type Download struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	URL          string         `json:"url" gorm:"not null;index"`
	Quality      Quality        `json:"quality"`
	Format       OutputFormat   `json:"format"`
	OutputDir    string         `json:"output_dir"`
	Status       DownloadStatus `json:"status" gorm:"not null;index"`
	ErrorMessage string         `json:"error_message,omitempty"`
	FilePath     string         `json:"file_path,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// NewDownload creates a journal entry in the processing state
func NewDownload(url, outputDir string, quality Quality, format OutputFormat) *Download {
	now := time.Now()
	return &Download{
		ID:        uuid.New().String(),
		URL:       url,
		Quality:   quality,
		Format:    format,
		OutputDir: outputDir,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkCompleted marks the download as completed
func (d *Download) MarkCompleted(filePath string) {
	d.Status = StatusCompleted
	d.FilePath = filePath
	now := time.Now()
	d.CompletedAt = &now
	d.UpdatedAt = now
}

// MarkFailed marks the download as failed
func (d *Download) MarkFailed(err error) {
	d.Status = StatusFailed
	d.ErrorMessage = err.Error()
	d.UpdatedAt = time.Now()
}
