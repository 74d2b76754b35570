package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type tabRecord struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Title      string `gorm:"column:title;not null"`
	Artist     string `gorm:"column:artist;not null"`
	KeyName    string `gorm:"column:key_name;not null"`
	Difficulty string `gorm:"column:difficulty;not null"`
	Tags       string `gorm:"column:tags;not null"`
	Content    string `gorm:"column:content;not null"`
	IsFavorite bool   `gorm:"column:is_favorite;type:integer;not null"`
	CreatedAt  int64  `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt  int64  `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (tabRecord) TableName() string { return "tabs" }

type preferenceRecord struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value;not null"`
}

func (preferenceRecord) TableName() string { return "preferences" }

// updatableColumns are written by Update; id is never rewritten
var updatableColumns = []string{
	"title", "artist", "key_name", "difficulty", "tags", "content",
	"is_favorite", "created_at", "updated_at",
}

func toRecord(t model.Tab) tabRecord {
	return tabRecord{
		ID:         t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		KeyName:    t.Key,
		Difficulty: t.Difficulty,
		Tags:       t.Tags,
		Content:    t.Content,
		IsFavorite: t.Favorite,
		CreatedAt:  t.CreatedAt.UnixMilli(),
		UpdatedAt:  t.UpdatedAt.UnixMilli(),
	}
}

func (r tabRecord) toTab() model.Tab {
	return model.Tab{
		ID:         r.ID,
		Title:      r.Title,
		Artist:     r.Artist,
		Key:        r.KeyName,
		Difficulty: r.Difficulty,
		Tags:       r.Tags,
		Content:    r.Content,
		Favorite:   r.IsFavorite,
		CreatedAt:  time.UnixMilli(r.CreatedAt),
		UpdatedAt:  time.UnixMilli(r.UpdatedAt),
	}
}

// SQLiteStore implements Store with gorm on SQLite
type SQLiteStore struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a private in-memory database.
func Open(path string, log logrus.FieldLogger) (*SQLiteStore, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	sqlDB.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate database %s: %w", path, err)
	}
	return s, nil
}

// Close implements Store
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create implements TabStore
func (s *SQLiteStore) Create(ctx context.Context, tab model.Tab) (int64, error) {
	rec := toRecord(tab)
	tx := s.db.WithContext(ctx)
	if rec.ID != 0 {
		tx = tx.Clauses(clause.OnConflict{UpdateAll: true})
	}
	if err := tx.Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("create tab: %w", err)
	}
	return rec.ID, nil
}

// Update implements TabStore
func (s *SQLiteStore) Update(ctx context.Context, tab model.Tab) error {
	if tab.ID == 0 {
		return ErrNotFound
	}
	rec := toRecord(tab)
	res := s.db.WithContext(ctx).
		Model(&tabRecord{ID: rec.ID}).
		Select(updatableColumns).
		Updates(&rec)
	if res.Error != nil {
		return fmt.Errorf("update tab %d: %w", tab.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete implements TabStore
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&tabRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete tab %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Get implements TabStore
func (s *SQLiteStore) Get(ctx context.Context, id int64) (model.Tab, error) {
	var rec tabRecord
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Tab{}, ErrNotFound
	}
	if err != nil {
		return model.Tab{}, fmt.Errorf("get tab %d: %w", id, err)
	}
	return rec.toTab(), nil
}

// SetFavorite implements TabStore
func (s *SQLiteStore) SetFavorite(ctx context.Context, id int64, favorite bool, updatedAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&tabRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_favorite": favorite,
			"updated_at":  updatedAt.UnixMilli(),
		})
	if res.Error != nil {
		return fmt.Errorf("set favorite %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements TabStore
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&tabRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tabs: %w", err)
	}
	return n, nil
}

// List implements TabStore
func (s *SQLiteStore) List(ctx context.Context, q Query) ([]model.Tab, error) {
	tx := s.db.WithContext(ctx).Model(&tabRecord{})
	if q.Text != "" {
		like := "%" + q.Text + "%"
		tx = tx.Where("(title LIKE ? OR artist LIKE ?)", like, like)
	}
	if q.Key != nil {
		tx = tx.Where("key_name = ?", *q.Key)
	}
	if q.Difficulty != nil {
		tx = tx.Where("difficulty = ?", *q.Difficulty)
	}
	if q.FavoritesOnly {
		tx = tx.Where("is_favorite = ?", true)
	}

	var records []tabRecord
	if err := tx.Order(orderBy(q.Sort)).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}

	tabs := make([]model.Tab, len(records))
	for i, rec := range records {
		tabs[i] = rec.toTab()
	}
	return tabs, nil
}

func orderBy(sort model.SortOption) string {
	switch sort {
	case model.SortTitle:
		return "title COLLATE NOCASE ASC"
	case model.SortArtist:
		return "artist COLLATE NOCASE ASC"
	case model.SortOldest:
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

// GetPreference implements PreferenceStore
func (s *SQLiteStore) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var rec preferenceRecord
	err := s.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return rec.Value, true, nil
}

// SetPreference implements PreferenceStore
func (s *SQLiteStore) SetPreference(ctx context.Context, key, value string) error {
	rec := preferenceRecord{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}
