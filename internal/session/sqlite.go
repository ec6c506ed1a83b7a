package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// entry is one persisted field. The table doubles as a small local key/value
// store shared by every profile on the machine.
type entry struct {
	Profile   string `gorm:"primaryKey;type:varchar(64)"`
	Name      string `gorm:"primaryKey;type:varchar(16)"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string {
	return "session_entries"
}

// SQLiteStore persists session fields in a local SQLite file
type SQLiteStore struct {
	db      *gorm.DB
	profile string
}

// OpenSQLite opens (creating if needed) the SQLite file at path
func OpenSQLite(path, profile string) (*SQLiteStore, error) {
	if profile == "" {
		profile = "default"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session database: %w", err)
	}

	return &SQLiteStore{db: db, profile: profile}, nil
}

func (s *SQLiteStore) Get(field Field) (string, error) {
	var e entry
	err := s.db.Where("profile = ? AND name = ?", s.profile, string(field)).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load %s: %w", field, err)
	}
	return e.Value, nil
}

func (s *SQLiteStore) Set(field Field, value string) error {
	return set(s.db, s.profile, field, value)
}

func (s *SQLiteStore) SetAll(token string, role Role, userID, email string) error {
	values := map[Field]string{
		FieldToken:  token,
		FieldRole:   string(role),
		FieldUserID: userID,
		FieldEmail:  email,
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, f := range Fields {
			if err := set(tx, s.profile, f, values[f]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ClearAll() error {
	if err := s.db.Where("profile = ?", s.profile).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close releases the underlying database handle
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func set(db *gorm.DB, profile string, field Field, value string) error {
	if value == "" {
		err := db.Where("profile = ? AND name = ?", profile, string(field)).Delete(&entry{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", field, err)
		}
		return nil
	}

	e := entry{Profile: profile, Name: string(field), Value: value}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", field, err)
	}
	return nil
}
