// Package sqlite stores blobs in a single table through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/linkdash/internal/storage"
)

// Blob is one persisted document.
type Blob struct {
	Key       string `gorm:"primaryKey;column:blob_key;size:255"`
	Data      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (Blob) TableName() string { return "linkdash_blobs" }

// Adapter implements storage.Adapter on top of a gorm database.
type Adapter struct {
	db *gorm.DB
}

// Open connects to the sqlite file at dsn and migrates the blobs table.
func Open(dsn string) (*Adapter, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", dsn, err)
	}
	return New(db)
}

// New wraps an existing gorm connection.
func New(db *gorm.DB) (*Adapter, error) {
	if err := db.AutoMigrate(&Blob{}); err != nil {
		return nil, fmt.Errorf("failed to migrate blobs table: %w", err)
	}
	return &Adapter{db: db}, nil
}

func (a *Adapter) Name() string { return "sqlite" }

func (a *Adapter) Read(ctx context.Context, key string) ([]byte, error) {
	var blob Blob
	err := a.db.WithContext(ctx).Where("blob_key = ?", key).First(&blob).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return blob.Data, nil
}

func (a *Adapter) Write(ctx context.Context, key string, data []byte) error {
	blob := Blob{Key: key, Data: data, UpdatedAt: time.Now()}
	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Ping checks that the underlying connection is usable.
func (a *Adapter) Ping(ctx context.Context) error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database handle.
func (a *Adapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
