package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/settings"
	"github.com/0xlemi/harptabs/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	store  *store.SQLiteStore
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	srv := NewServer(s, settings.NewRepository(s), nil)
	return &fixture{store: s, router: srv.Router()}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seed(t *testing.T, tab model.Tab) int64 {
	t.Helper()
	if tab.Content == "" {
		tab.Content = notation.MustEncode(notation.Notation{Lines: [][]notation.Note{{{Hole: 4, Blow: true}}}})
	}
	id, err := f.store.Create(context.Background(), tab)
	require.NoError(t, err)
	return id
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodOptions, "/api/v1/tabs", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateAndGetTab(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/tabs", map[string]any{
		"title":      "  Blue Bossa ",
		"artist":     "Kenny Dorham",
		"key":        "C",
		"difficulty": "Medium",
		"tags":       []string{"Jazz", "latin", "jazz"},
		"text":       "4 -4 5 | -5'",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Tab](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Blue Bossa", created.Title)
	assert.Equal(t, "jazz latin", created.Tags)
	assert.False(t, created.Favorite)

	n := notation.Parse(created.Content)
	require.NotNil(t, n)
	assert.Equal(t, "4 -4 5\n-5'", notation.FormatText(*n))

	rec = f.do(t, http.MethodGet, "/api/v1/tabs/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.Title, decode[model.Tab](t, rec).Title)
}

func TestCreateWithNotationJSON(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/tabs", map[string]any{
		"title":    "Scale",
		"favorite": true,
		"notation": map[string]any{"lines": []any{[]any{map[string]any{"hole": 1}, map[string]any{"hole": 1, "blow": false}}}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tab := decode[model.Tab](t, rec)
	assert.True(t, tab.Favorite)

	n := notation.Parse(tab.Content)
	require.NotNil(t, n)
	assert.Equal(t, [][]notation.Note{{{Hole: 1, Blow: true}, {Hole: 1, Blow: false}}}, n.Lines)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"text": "4"}},
		{"missing notes", map[string]any{"title": "x"}},
		{"bad text", map[string]any{"title": "x", "text": "4 x"}},
		{"hole out of range", map[string]any{"title": "x", "notation": map[string]any{"lines": []any{[]any{map[string]any{"hole": 13}}}}}},
		{"empty notation", map[string]any{"title": "x", "notation": map[string]any{"lines": []any{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/tabs", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}

	count, err := f.store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateTab(t *testing.T) {
	f := newFixture(t)
	created := time.UnixMilli(1_000)
	id := f.seed(t, model.Tab{Title: "Old", Tags: "a b", Favorite: true, CreatedAt: created, UpdatedAt: created})

	rec := f.do(t, http.MethodPut, "/api/v1/tabs/"+itoa(id), map[string]any{
		"title": "New",
		"tags":  []string{"c"},
		"text":  "-3",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tab := decode[model.Tab](t, rec)
	assert.Equal(t, id, tab.ID)
	assert.Equal(t, "New", tab.Title)
	assert.Equal(t, "c", tab.Tags)
	assert.True(t, tab.Favorite)
	assert.Equal(t, created.UnixMilli(), tab.CreatedAt.UnixMilli())
	assert.True(t, tab.UpdatedAt.After(created))

	rec = f.do(t, http.MethodPut, "/api/v1/tabs/999", map[string]any{"title": "x", "text": "4"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTab(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, model.Tab{Title: "Gone"})

	rec := f.do(t, http.MethodDelete, "/api/v1/tabs/"+itoa(id), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/tabs/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/v1/tabs/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidID(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/v1/tabs/abc", "/api/v1/tabs/0", "/api/v1/tabs/-2/notation"} {
		rec := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, model.Tab{Title: "Fav"})

	rec := f.do(t, http.MethodPost, "/api/v1/tabs/"+itoa(id)+"/favorite", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[model.Tab](t, rec).Favorite)

	rec = f.do(t, http.MethodPost, "/api/v1/tabs/"+itoa(id)+"/favorite", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[model.Tab](t, rec).Favorite)

	rec = f.do(t, http.MethodPost, "/api/v1/tabs/404/favorite", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetNotation(t *testing.T) {
	f := newFixture(t)
	structured := f.seed(t, model.Tab{Title: "Notes"})
	legacy := f.seed(t, model.Tab{Title: "Legacy", Content: "4 4 5 6"})

	rec := f.do(t, http.MethodGet, "/api/v1/tabs/"+itoa(structured)+"/notation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":1,"lines":[[{"hole":4,"blow":true,"slide":false}]]}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/tabs/"+itoa(legacy)+"/notation", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "4 4 5 6", decode[map[string]string](t, rec)["content"])
}

type listResponse struct {
	Tabs          []model.Tab `json:"tabs"`
	AvailableTags []string    `json:"available_tags"`
}

func titles(tabs []model.Tab) []string {
	out := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		out = append(out, tab.Title)
	}
	return out
}

func TestListTabs(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.Tab{Title: "Misty", Artist: "Erroll Garner", Key: "E", Difficulty: "Hard", Tags: "jazz ballad", CreatedAt: time.UnixMilli(1)})
	f.seed(t, model.Tab{Title: "Amazing Grace", Key: "D", Difficulty: "Easy", Tags: "hymn", CreatedAt: time.UnixMilli(2)})
	f.seed(t, model.Tab{Title: "All Blues", Artist: "Miles Davis", Key: "G", Difficulty: "Hard", Tags: "jazz blues", Favorite: true, CreatedAt: time.UnixMilli(3)})

	tests := []struct {
		name  string
		query string
		want  []string
		tags  []string
	}{
		{"default newest", "", []string{"All Blues", "Amazing Grace", "Misty"}, []string{"ballad", "blues", "hymn", "jazz"}},
		{"title sort", "?sort=title", []string{"All Blues", "Amazing Grace", "Misty"}, nil},
		{"oldest", "?sort=oldest", []string{"Misty", "Amazing Grace", "All Blues"}, nil},
		{"search artist", "?q=miles", []string{"All Blues"}, []string{"blues", "jazz"}},
		{"difficulty", "?difficulty=Hard&sort=title", []string{"All Blues", "Misty"}, nil},
		{"key", "?key=D", []string{"Amazing Grace"}, nil},
		{"favorites", "?favorites=true", []string{"All Blues"}, nil},
		{"tags any", "?tags=ballad,hymn&sort=title", []string{"Amazing Grace", "Misty"}, []string{"ballad", "blues", "hymn", "jazz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/api/v1/tabs"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			resp := decode[listResponse](t, rec)
			assert.Equal(t, tt.want, titles(resp.Tabs))
			if tt.tags != nil {
				assert.Equal(t, tt.tags, resp.AvailableTags)
			}
		})
	}
}

func TestListTabsRejectsBadParams(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/tabs?sort=loudest", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/tabs?favorites=maybe", nil).Code)
}

func TestSettings(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, settings.Defaults(), decode[settings.Settings](t, rec))

	rec = f.do(t, http.MethodPut, "/api/v1/settings", map[string]any{"theme_mode": "dark", "haptics_enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, settings.Settings{ThemeMode: model.ThemeDark, HapticsEnabled: false}, decode[settings.Settings](t, rec))

	rec = f.do(t, http.MethodPut, "/api/v1/settings", map[string]any{"theme_mode": "neon", "haptics_enabled": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/settings", nil)
	assert.Equal(t, model.ThemeDark, decode[settings.Settings](t, rec).ThemeMode)
	assert.False(t, decode[settings.Settings](t, rec).HapticsEnabled)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(s, settings.NewRepository(s), nil).Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
