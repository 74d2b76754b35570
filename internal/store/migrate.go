package store

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// SchemaVersion is stored in PRAGMA user_version
const SchemaVersion = 2

func (s *SQLiteStore) migrate() error {
	var version int
	if err := s.db.Raw("PRAGMA user_version").Scan(&version).Error; err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if version < SchemaVersion {
			if err := migrateLegacyTabs(tx); err != nil {
				return err
			}
		}
		if err := tx.AutoMigrate(&tabRecord{}, &preferenceRecord{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		if version != SchemaVersion {
			s.log.WithField("from", version).WithField("to", SchemaVersion).Info("database schema migrated")
		}
		return tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)).Error
	})
}

// rebuildTable is the scratch name used while rebuilding tabs
const rebuildTable = "tabs__v2"

// migrateLegacyTabs brings a version 1 tabs table to the current columns:
// "key" becomes key_name and the text is_favorite flag becomes an integer.
// The table is rebuilt from the model and the rows copied across.
func migrateLegacyTabs(tx *gorm.DB) error {
	m := tx.Migrator()
	if !m.HasTable(&tabRecord{}) {
		return nil
	}

	cols, err := columnTypes(tx)
	if err != nil {
		return err
	}

	_, hasKey := cols["key"]
	_, hasKeyName := cols["key_name"]
	fav, hasFav := cols["is_favorite"]
	textFavorite := hasFav && !strings.EqualFold(fav.DatabaseTypeName(), "INTEGER")
	if !(hasKey && !hasKeyName) && !textFavorite {
		return nil
	}

	if m.HasTable(rebuildTable) {
		if err := m.DropTable(rebuildTable); err != nil {
			return fmt.Errorf("drop stale %s: %w", rebuildTable, err)
		}
	}
	if err := tx.Table(rebuildTable).Migrator().CreateTable(&tabRecord{}); err != nil {
		return fmt.Errorf("create %s: %w", rebuildTable, err)
	}

	copyRows := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM tabs",
		rebuildTable, strings.Join(legacyColumns, ", "), strings.Join(legacySelect(cols), ", "))
	if err := tx.Exec(copyRows).Error; err != nil {
		return fmt.Errorf("copy tabs: %w", err)
	}
	if err := m.DropTable("tabs"); err != nil {
		return fmt.Errorf("drop legacy tabs: %w", err)
	}
	if err := m.RenameTable(rebuildTable, "tabs"); err != nil {
		return fmt.Errorf("rename %s: %w", rebuildTable, err)
	}
	return nil
}

var legacyColumns = []string{
	"id", "title", "artist", "key_name", "difficulty", "tags", "content",
	"is_favorite", "created_at", "updated_at",
}

// legacySelect returns the expression reading each of legacyColumns from the
// old table, with an empty value for columns it lacks
func legacySelect(cols map[string]gorm.ColumnType) []string {
	exprs := make([]string, 0, len(legacyColumns))
	for _, name := range legacyColumns {
		_, ok := cols[name]
		switch {
		case name == "id" && !ok:
			exprs = append(exprs, "NULL")
		case name == "key_name" && !ok:
			if _, legacy := cols["key"]; legacy {
				exprs = append(exprs, `COALESCE("key", '')`)
			} else {
				exprs = append(exprs, "''")
			}
		case name == "is_favorite" && ok:
			exprs = append(exprs, `CASE WHEN lower(CAST(is_favorite AS TEXT)) IN ('true', '1') THEN 1 ELSE 0 END`)
		case !ok && (name == "is_favorite" || name == "created_at" || name == "updated_at"):
			exprs = append(exprs, "0")
		case !ok:
			exprs = append(exprs, "''")
		case name == "id" || name == "created_at" || name == "updated_at":
			exprs = append(exprs, name)
		default:
			exprs = append(exprs, fmt.Sprintf("COALESCE(%s, '')", name))
		}
	}
	return exprs
}

// columnTypes returns the current columns of the tabs table by name
func columnTypes(tx *gorm.DB) (map[string]gorm.ColumnType, error) {
	types, err := tx.Migrator().ColumnTypes(&tabRecord{})
	if err != nil {
		return nil, fmt.Errorf("inspect tabs: %w", err)
	}
	cols := make(map[string]gorm.ColumnType, len(types))
	for _, ct := range types {
		cols[ct.Name()] = ct
	}
	return cols, nil
}
