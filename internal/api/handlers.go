package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/0xlemi/harptabs/internal/detail"
	"github.com/0xlemi/harptabs/internal/editor"
	"github.com/0xlemi/harptabs/internal/library"
	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/store"
	"github.com/gin-gonic/gin"
)

var (
	errInvalidID    = errors.New("invalid tab id")
	errInvalidTheme = errors.New("theme_mode must be system, light or dark")
)

// tabRequest is the body of create and update. Notation takes the stored
// JSON form; Text takes the "4 -4 5'" form and is used when Notation is absent.
type tabRequest struct {
	Title      string          `json:"title"`
	Artist     string          `json:"artist"`
	Key        string          `json:"key"`
	Difficulty string          `json:"difficulty"`
	Tags       []string        `json:"tags"`
	Favorite   *bool           `json:"favorite"`
	Notation   json.RawMessage `json:"notation"`
	Text       string          `json:"text"`
}

func (r tabRequest) lines() ([][]notation.Note, error) {
	if len(r.Notation) > 0 && string(r.Notation) != "null" {
		n, err := notation.Decode(string(r.Notation))
		if err != nil {
			return nil, err
		}
		return n.Lines, nil
	}
	if strings.TrimSpace(r.Text) == "" {
		return nil, nil
	}
	n, err := notation.ParseText(r.Text)
	if err != nil {
		return nil, err
	}
	return n.Lines, nil
}

type settingsRequest struct {
	ThemeMode           *string `json:"theme_mode"`
	OnboardingCompleted *bool   `json:"onboarding_completed"`
	HapticsEnabled      *bool   `json:"haptics_enabled"`
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		errorJSON(c, http.StatusNotFound, err)
	case errors.Is(err, errInvalidID),
		errors.Is(err, errInvalidTheme),
		errors.Is(err, editor.ErrMissingTitle),
		errors.Is(err, editor.ErrMissingNotes),
		errors.Is(err, editor.ErrInvalidHole),
		errors.Is(err, notation.ErrNoNotation),
		errors.Is(err, notation.ErrMalformed):
		errorJSON(c, http.StatusBadRequest, err)
	default:
		s.log.WithError(err).WithField("path", c.Request.URL.Path).Error("request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func tabID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func (s *Server) listTabs(c *gin.Context) {
	sortOpt, err := model.ParseSortOption(c.Query("sort"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	f := library.DefaultFilters()
	f.Query = c.Query("q")
	f.Key = store.StringPtr(c.Query("key"))
	f.Difficulty = store.StringPtr(c.Query("difficulty"))
	f.Sort = sortOpt
	if v := c.Query("favorites"); v != "" {
		if f.FavoritesOnly, err = strconv.ParseBool(v); err != nil {
			errorJSON(c, http.StatusBadRequest, errors.New("favorites must be a boolean"))
			return
		}
	}
	for _, tag := range model.ParseTags(c.Query("tags")) {
		f.Tags[tag] = struct{}{}
	}

	state, err := library.New(s.store).Load(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tabs":           state.Tabs,
		"available_tags": state.AvailableTags,
	})
}

func (s *Server) getTab(c *gin.Context) {
	id, err := tabID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	tab, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tab)
}

func (s *Server) createTab(c *gin.Context) {
	s.saveTab(c, 0, http.StatusCreated)
}

func (s *Server) updateTab(c *gin.Context) {
	id, err := tabID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.saveTab(c, id, http.StatusOK)
}

// saveTab runs the request through the editor so the API applies the same
// validation as the screens
func (s *Server) saveTab(c *gin.Context, id int64, status int) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	lines, err := req.lines()
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	ed := editor.New(s.store)
	if err := ed.Load(ctx, id); err != nil {
		s.fail(c, err)
		return
	}
	ed.SetTitle(req.Title)
	ed.SetArtist(req.Artist)
	ed.SetKey(req.Key)
	ed.SetDifficulty(req.Difficulty)
	ed.SetTags(req.Tags)
	if req.Favorite != nil {
		ed.SetFavorite(*req.Favorite)
	}
	if err := ed.SetLines(lines); err != nil {
		s.fail(c, err)
		return
	}

	saved, err := ed.Save(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	tab, err := s.store.Get(ctx, saved)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, tab)
}

func (s *Server) deleteTab(c *gin.Context) {
	id, err := tabID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleFavorite(c *gin.Context) {
	id, err := tabID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	d := detail.New(s.store, s.frequency)
	if err := d.Load(ctx, id); err != nil {
		s.fail(c, err)
		return
	}
	if err := d.ToggleFavorite(ctx); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Tab())
}

func (s *Server) getNotation(c *gin.Context) {
	id, err := tabID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	d := detail.New(s.store, s.frequency)
	if err := d.Load(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	n := d.Notation()
	if n == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   notation.ErrNoNotation.Error(),
			"content": d.Tab().Content,
		})
		return
	}
	content, err := notation.Encode(*n)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(content))
}

func (s *Server) getSettings(c *gin.Context) {
	current, err := s.settings.Load(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, current)
}

func (s *Server) updateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()

	if req.ThemeMode != nil {
		mode := model.ThemeModeFromStorage(*req.ThemeMode)
		if string(mode) != *req.ThemeMode {
			s.fail(c, errInvalidTheme)
			return
		}
		if err := s.settings.SetThemeMode(ctx, mode); err != nil {
			s.fail(c, err)
			return
		}
	}
	if req.OnboardingCompleted != nil {
		if err := s.settings.SetOnboardingCompleted(ctx, *req.OnboardingCompleted); err != nil {
			s.fail(c, err)
			return
		}
	}
	if req.HapticsEnabled != nil {
		if err := s.settings.SetHapticsEnabled(ctx, *req.HapticsEnabled); err != nil {
			s.fail(c, err)
			return
		}
	}
	s.getSettings(c)
}
