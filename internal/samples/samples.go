// Package samples seeds an empty library with the bundled example tabs.
package samples

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/store"
	"github.com/sirupsen/logrus"
)

//go:embed assets/*.json
var assets embed.FS

// ErrMissingTitle marks a sample file without a title
var ErrMissingTitle = errors.New("sample has no title")

type sampleFile struct {
	Title      string          `json:"title"`
	Artist     string          `json:"artist"`
	Key        string          `json:"key"`
	Difficulty string          `json:"difficulty"`
	Tags       string          `json:"tags"`
	Favorite   bool            `json:"favorite"`
	Notation   json.RawMessage `json:"notation"`
}

// Load parses every bundled sample, skipping files that do not parse
func Load(log logrus.FieldLogger) []model.Tab {
	return loadFS(assets, time.Now(), log)
}

// SeedIfEmpty inserts the bundled samples when the store holds no tabs and
// returns how many were inserted
func SeedIfEmpty(ctx context.Context, s store.TabStore, log logrus.FieldLogger) (int, error) {
	return seedFS(ctx, s, assets, time.Now(), log)
}

func seedFS(ctx context.Context, s store.TabStore, fsys fs.FS, now time.Time, log logrus.FieldLogger) (int, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	n, err := s.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count tabs: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	inserted := 0
	for _, tab := range loadFS(fsys, now, log) {
		if _, err := s.Create(ctx, tab); err != nil {
			return inserted, fmt.Errorf("seed %q: %w", tab.Title, err)
		}
		inserted++
	}
	log.WithField("count", inserted).Info("seeded sample tabs")
	return inserted, nil
}

func loadFS(fsys fs.FS, now time.Time, log logrus.FieldLogger) []model.Tab {
	if log == nil {
		log = logrus.StandardLogger()
	}

	// fs.Glob returns names in lexical order
	names, err := fs.Glob(fsys, "assets/*.json")
	if err != nil {
		log.WithError(err).Warn("list sample assets")
		return nil
	}

	var tabs []model.Tab
	for _, name := range names {
		tab, err := parseSample(fsys, name, now)
		if err != nil {
			log.WithError(err).WithField("file", name).Warn("skipping sample")
			continue
		}
		tabs = append(tabs, tab)
	}
	return tabs
}

func parseSample(fsys fs.FS, name string, now time.Time) (model.Tab, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return model.Tab{}, err
	}

	var f sampleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return model.Tab{}, err
	}
	if strings.TrimSpace(f.Title) == "" {
		return model.Tab{}, ErrMissingTitle
	}

	n, err := notation.Decode(string(f.Notation))
	if err != nil {
		return model.Tab{}, err
	}
	content, err := notation.Encode(*n)
	if err != nil {
		return model.Tab{}, err
	}

	return model.Tab{
		Title:      strings.TrimSpace(f.Title),
		Artist:     strings.TrimSpace(f.Artist),
		Key:        f.Key,
		Difficulty: f.Difficulty,
		Tags:       model.JoinTags(model.ParseTags(f.Tags)),
		Content:    content,
		Favorite:   f.Favorite,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
