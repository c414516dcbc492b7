// Package storage persists orders, settings and audit logs to SQLite via
// the pure-Go driver, so no cgo toolchain is needed on any platform.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voice_trader/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the SQLite-backed persistence layer. Implements
// domain.OrderStore and domain.SettingsStore.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the database at path and migrates the schema.
func NewStorage(path string) (*Storage, error) {
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.OrderRecord{}, &domain.SystemLog{}, &domain.AppSetting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Order Operations
// ======================================================================================

// InsertOrder records an executed or failed order and returns its row id.
func (s *Storage) InsertOrder(rec *domain.OrderRecord) (uint, error) {
	if err := s.db.Create(rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// RecentOrders returns the latest orders, newest first.
func (s *Storage) RecentOrders(limit int) ([]domain.OrderRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var orders []domain.OrderRecord
	err := s.db.Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

// OrdersBySymbol returns the latest orders for one symbol, newest first.
func (s *Storage) OrdersBySymbol(symbol string, limit int) ([]domain.OrderRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var orders []domain.OrderRecord
	err := s.db.Where("symbol = ?", symbol).
		Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

// ======================================================================================
// System Log Operations
// ======================================================================================

// InsertSystemLog appends an audit line. A missing system_logs table is
// silently tolerated (fresh or partially migrated databases); every other
// storage error is returned.
func (s *Storage) InsertSystemLog(level, message string, context map[string]any) error {
	var blob string
	if context != nil {
		b, err := json.Marshal(context)
		if err != nil {
			return fmt.Errorf("failed to encode log context: %w", err)
		}
		blob = string(b)
	}

	err := s.db.Create(&domain.SystemLog{
		Level:   level,
		Message: message,
		Context: blob,
	}).Error
	if err != nil && strings.Contains(err.Error(), "no such table: system_logs") {
		return nil
	}
	return err
}

// RecentLogs returns the latest audit lines, newest first.
func (s *Storage) RecentLogs(limit int) ([]domain.SystemLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []domain.SystemLog
	err := s.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// ======================================================================================
// Settings Operations
// ======================================================================================

// GetSetting returns the stored value for a dot-delimited key. An absent
// key is an empty value, not an error.
func (s *Storage) GetSetting(key string) (string, error) {
	var setting domain.AppSetting
	err := s.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// SetSetting creates or updates a setting.
func (s *Storage) SetSetting(key, value string) error {
	return s.db.Save(&domain.AppSetting{Key: key, Value: value}).Error
}

// SettingsMap loads all settings as a map.
func (s *Storage) SettingsMap() (map[string]string, error) {
	var settings []domain.AppSetting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, st := range settings {
		result[st.Key] = st.Value
	}
	return result, nil
}
