// File: internal/prefs/store.go
package prefs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Theme is the persisted display preference. Not security-relevant.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const themeKey = "theme"

// Preference is one persisted key/value pair in the local store.
type Preference struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Value     string `gorm:"type:varchar(255);not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for the Preference model.
func (Preference) TableName() string {
	return "preferences"
}

// Store persists client preferences across runs.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore migrates the preferences table and returns the store.
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger.Named("PrefsStore")}, nil
}

// Theme returns the persisted theme, defaulting to light.
func (s *Store) Theme(ctx context.Context) Theme {
	var pref Preference
	err := s.db.WithContext(ctx).Where("key = ?", themeKey).First(&pref).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Failed to read theme preference", zap.Error(err))
		}
		return ThemeLight
	}
	if Theme(pref.Value) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// SetTheme persists the theme preference.
func (s *Store) SetTheme(ctx context.Context, theme Theme) error {
	if theme != ThemeLight && theme != ThemeDark {
		theme = ThemeLight
	}
	pref := Preference{Key: themeKey, Value: string(theme)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&pref).Error
}
