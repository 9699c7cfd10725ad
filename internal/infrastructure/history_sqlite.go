package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/ytshim/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteHistoryRepository implements DownloadRepository using SQLite
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository opens (creating if needed) the history database at dbPath
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Download{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// Create creates a new download
func (r *SQLiteHistoryRepository) Create(download *domain.Download) error {
	return r.db.Create(download).Error
}

// Update updates an existing download
func (r *SQLiteHistoryRepository) Update(download *domain.Download) error {
	return r.db.Save(download).Error
}

// Close closes the database connection
func (r *SQLiteHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
