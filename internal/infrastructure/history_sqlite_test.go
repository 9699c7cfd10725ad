package infrastructure

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/ytshim/internal/domain"
	"gorm.io/gorm"
)

func setupTestRepo(t *testing.T) *SQLiteHistoryRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	repo, err := NewSQLiteHistoryRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func findByID(t *testing.T, repo *SQLiteHistoryRepository, id string) (*domain.Download, error) {
	t.Helper()
	var download domain.Download
	if err := repo.db.First(&download, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &download, nil
}

func findByStatus(t *testing.T, repo *SQLiteHistoryRepository, status domain.DownloadStatus) []*domain.Download {
	t.Helper()
	var downloads []*domain.Download
	require.NoError(t, repo.db.Where("status = ?", status).Find(&downloads).Error)
	return downloads
}

func TestSQLiteHistoryRepository_CreateAndFind(t *testing.T) {
	repo := setupTestRepo(t)

	dl := domain.NewDownload("https://www.youtube.com/watch?v=abc123", "/tmp/out", domain.QualityHD720, domain.FormatMP4)
	require.NoError(t, repo.Create(dl))

	found, err := findByID(t, repo, dl.ID)
	require.NoError(t, err)
	assert.Equal(t, dl.URL, found.URL)
	assert.Equal(t, domain.QualityHD720, found.Quality)
	assert.Equal(t, domain.FormatMP4, found.Format)
	assert.Equal(t, domain.StatusProcessing, found.Status)
	assert.Nil(t, found.CompletedAt)
}

func TestSQLiteHistoryRepository_UpdateCompleted(t *testing.T) {
	repo := setupTestRepo(t)

	dl := domain.NewDownload("https://www.youtube.com/watch?v=abc123", "/tmp/out", domain.QualityBest, domain.FormatMP3)
	require.NoError(t, repo.Create(dl))

	dl.MarkCompleted("/tmp/out/Example_abc123.mp3")
	require.NoError(t, repo.Update(dl))

	found, err := findByID(t, repo, dl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, found.Status)
	assert.Equal(t, "/tmp/out/Example_abc123.mp3", found.FilePath)
	assert.NotNil(t, found.CompletedAt)
}

func TestSQLiteHistoryRepository_UpdateFailed(t *testing.T) {
	repo := setupTestRepo(t)

	ok := domain.NewDownload("https://example.com/1", "/tmp", domain.QualityBest, domain.FormatWebM)
	ok.MarkCompleted("/tmp/a.webm")
	failed := domain.NewDownload("https://example.com/2", "/tmp", domain.QualityBest, domain.FormatWebM)
	require.NoError(t, repo.Create(ok))
	require.NoError(t, repo.Create(failed))

	failed.MarkFailed(errors.New("HTTP Error 403: Forbidden"))
	require.NoError(t, repo.Update(failed))

	found := findByStatus(t, repo, domain.StatusFailed)
	require.Len(t, found, 1)
	assert.Equal(t, failed.ID, found[0].ID)
	assert.Equal(t, "HTTP Error 403: Forbidden", found[0].ErrorMessage)
	assert.Len(t, findByStatus(t, repo, domain.StatusCompleted), 1)
}

func TestSQLiteHistoryRepository_MissingRecord(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := findByID(t, repo, "does-not-exist")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSQLiteHistoryRepository_ReopenKeepsRecords(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	repo, err := NewSQLiteHistoryRepository(dbPath)
	require.NoError(t, err)

	dl := domain.NewDownload("https://example.com/v", "/tmp", domain.QualitySD360, domain.FormatMP4)
	require.NoError(t, repo.Create(dl))
	require.NoError(t, repo.Close())

	reopened := setupTestRepoAt(t, dbPath)
	found, err := findByID(t, reopened, dl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QualitySD360, found.Quality)
}

func setupTestRepoAt(t *testing.T, dbPath string) *SQLiteHistoryRepository {
	t.Helper()
	repo, err := NewSQLiteHistoryRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}
