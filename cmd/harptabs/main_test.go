package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/0xlemi/harptabs/internal/editor"
	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t   *testing.T
	dir string
	db  string
}

func newCLI(t *testing.T) *cli {
	t.Setenv("HARPTABS_DB", "")
	t.Setenv("HARPTABS_LOG_LEVEL", "")
	dir := t.TempDir()
	return &cli{t: t, dir: dir, db: filepath.Join(dir, "data", "harptabs.db")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(c.dir, "config.yaml"),
		"--db", c.db,
		"--log-level", "error",
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "harptabs %v", args)
	return out
}

func TestTabCommands(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("add", "--title", "Scale", "--artist", "Me", "--difficulty", "Easy",
		"--tags", "Warmup, Scales", "--notes", "4 -4 5 | 6' -6")
	assert.Equal(t, "Saved tab 1\n", out)

	out = c.mustRun("show", "1")
	assert.Contains(t, out, "Scale\nby Me\n")
	assert.Contains(t, out, "Easy")
	assert.Contains(t, out, "Tags: warmup, scales")
	assert.Contains(t, out, "4 -4 5\n6' -6")

	c.mustRun("edit", "1", "--title", "Scale 2")
	out = c.mustRun("show", "1")
	assert.Contains(t, out, "Scale 2")
	assert.Contains(t, out, "4 -4 5\n6' -6", "notes are kept when not given")

	out = c.mustRun("list")
	assert.Contains(t, out, "Scale 2")
	assert.Contains(t, out, "warmup scales")

	out = c.mustRun("list", "--favorites")
	assert.Equal(t, "No tabs found\n", out)

	out = c.mustRun("favorite", "1")
	assert.Equal(t, "Scale 2 is a favorite\n", out)
	out = c.mustRun("list", "--favorites", "--tag", "warmup")
	assert.Contains(t, out, "Scale 2")

	out = c.mustRun("list", "--tag", "blues")
	assert.Equal(t, "No tabs found\n", out)

	_, err := c.run("list", "--sort", "random")
	assert.Error(t, err)

	out = c.mustRun("delete", "1")
	assert.Equal(t, "Deleted tab 1\n", out)
	_, err = c.run("show", "1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = c.run("delete", "1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddValidation(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("add", "--notes", "4")
	assert.ErrorIs(t, err, editor.ErrMissingTitle)

	_, err = c.run("add", "--title", "Empty")
	assert.ErrorIs(t, err, editor.ErrMissingNotes)

	_, err = c.run("add", "--title", "Bad", "--notes", "13")
	assert.Error(t, err)

	_, err = c.run("show", "abc")
	assert.ErrorIs(t, err, errInvalidID)
	_, err = c.run("show", "0")
	assert.ErrorIs(t, err, errInvalidID)
}

func TestAddFromFile(t *testing.T) {
	c := newCLI(t)

	path := filepath.Join(c.dir, "ode.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"version":1,"lines":[[{"hole":5,"blow":true,"slide":false},{"hole":5,"blow":false,"slide":true}]]}`), 0o644))
	c.mustRun("add", "--title", "Ode", "--file", path)
	assert.Contains(t, c.mustRun("show", "1"), "5 -5'")

	text := filepath.Join(c.dir, "ode.txt")
	require.NoError(t, os.WriteFile(text, []byte("4 4\n-4"), 0o644))
	c.mustRun("edit", "1", "--file", text)
	assert.Contains(t, c.mustRun("show", "1"), "4 4\n-4")
}

func TestSeed(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("seed")
	assert.Regexp(t, `^Seeded \d+ sample tabs\n$`, out)

	out = c.mustRun("seed")
	assert.Equal(t, "Library is not empty, nothing seeded\n", out)
}

func TestExportAndRender(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "--title", "Short", "--notes", "4 -4 | 5")

	mid := filepath.Join(c.dir, "short.mid")
	c.mustRun("export", "1", "-o", mid)
	data, err := os.ReadFile(mid)
	require.NoError(t, err)
	assert.Equal(t, "MThd", string(data[:4]))

	wav := filepath.Join(c.dir, "short.wav")
	c.mustRun("render", "1", "-o", wav, "--tempo", "240")
	data, err = os.ReadFile(wav)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))

	out := c.mustRun("export", "1", "-o", "-")
	assert.Equal(t, "MThd", out[:4])

	_, err = c.run("export", "1")
	assert.Error(t, err, "output is required")
	_, err = c.run("render", "1", "-o", wav, "--tempo", "0")
	assert.Error(t, err)
}

func TestLegacyTabCannotBeExported(t *testing.T) {
	c := newCLI(t)
	c.mustRun("seed")

	s, err := store.Open(c.db, nil)
	require.NoError(t, err)
	id, err := s.Create(context.Background(), model.Tab{Title: "Notes", Content: "blow 4, draw 4"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out := c.mustRun("show", strconv.FormatInt(id, 10))
	assert.Contains(t, out, "blow 4, draw 4")

	_, err = c.run("export", strconv.FormatInt(id, 10), "-o", "-")
	assert.ErrorIs(t, err, errNoNotation)
}

func TestSettingsCommands(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("settings", "get")
	assert.Equal(t, "theme_mode: system\nhaptics_enabled: true\nonboarding_completed: false\n", out)

	c.mustRun("settings", "set", "theme_mode", "dark")
	c.mustRun("settings", "set", "haptics_enabled", "false")
	assert.Equal(t, "dark\n", c.mustRun("settings", "get", "theme_mode"))
	assert.Equal(t, "false\n", c.mustRun("settings", "get", "haptics_enabled"))

	_, err := c.run("settings", "set", "theme_mode", "blue")
	assert.ErrorIs(t, err, errInvalidTheme)
	_, err = c.run("settings", "set", "volume", "11")
	assert.ErrorIs(t, err, errUnknownSetting)
	_, err = c.run("settings", "get", "volume")
	assert.ErrorIs(t, err, errUnknownSetting)
	_, err = c.run("settings", "set", "haptics_enabled", "maybe")
	assert.Error(t, err)
}

func TestConfigFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: "+filepath.Join(dir, "file.db")+"\nlog_level: warn\n"), 0o644))

	opts := &options{configPath: path}
	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "file.db"), cfg.Database)
	assert.Equal(t, "warn", cfg.LogLevel)

	opts.dbPath = filepath.Join(dir, "flag.db")
	opts.logLevel = "debug"
	cfg, err = opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flag.db"), cfg.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
}
