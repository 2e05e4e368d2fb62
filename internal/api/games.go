package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/events"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/service"
)

// ListGames returns every game with its asset and NPC counts.
func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.repo.ListGames()
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchGames)
		return
	}
	c.JSON(http.StatusOK, games)
}

// CreateGame creates a game from {title, description}.
func (h *GameHandler) CreateGame(c *gin.Context) {
	o, err := readObject(c)
	if err != nil {
		badRequest(c, constants.ErrInvalidRequest)
		return
	}
	g, err := service.CreateGame(h.repo, o.String("title", "name"), o.String("description"))
	if err != nil {
		respondError(c, err, constants.ErrFailedCreateGame)
		return
	}
	logging.Info("game created", logging.Fields{constants.LogFieldGameID: g.ID, constants.LogFieldGameSlug: g.Slug})
	if h.exporter != nil {
		if _, err := h.exporter.Scaffold(g.Slug); err != nil {
			logging.Warn("failed to scaffold game project", logging.Fields{constants.LogFieldGameSlug: g.Slug, "error": err.Error()})
		}
	}
	h.changed(g, events.KindGame, events.ActionCreated, g.Slug)
	c.JSON(http.StatusCreated, gin.H{"id": g.ID, "slug": g.Slug, "title": g.Title, constants.JSONKeyMessage: "Game created"})
}

// GetGame returns one game by id or slug.
func (h *GameHandler) GetGame(c *gin.Context) {
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, g)
}

// UpdateGame changes title and/or description. Omitted fields are kept.
func (h *GameHandler) UpdateGame(c *gin.Context) {
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	o, err := readObject(c)
	if err != nil {
		badRequest(c, constants.ErrInvalidRequest)
		return
	}
	title, desc := g.Title, g.Description
	if o.Has("title", "name") {
		title = o.String("title", "name")
	}
	if o.Has("description") {
		desc = o.String("description")
	}
	if err := service.UpdateGame(h.repo, g, title, desc); err != nil {
		respondError(c, err, constants.ErrFailedUpdateGame)
		return
	}
	h.changed(g, events.KindGame, events.ActionUpdated, g.Slug)
	c.JSON(http.StatusOK, g)
}

// DeleteGame removes a game with its assets, NPCs and exported files.
func (h *GameHandler) DeleteGame(c *gin.Context) {
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	if err := service.DeleteGame(h.repo, g); err != nil {
		respondError(c, err, constants.ErrFailedDeleteGame)
		return
	}
	if h.exporter != nil {
		if err := h.exporter.Remove(g.Slug); err != nil {
			logging.Warn("failed to remove exported files", logging.Fields{constants.LogFieldGameSlug: g.Slug, "error": err.Error()})
		}
	}
	logging.Info("game deleted", logging.Fields{constants.LogFieldGameID: g.ID, constants.LogFieldGameSlug: g.Slug})
	h.changed(g, events.KindGame, events.ActionDeleted, g.Slug)
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Game deleted"})
}

// ExportGame writes the game data files now and returns the result.
func (h *GameHandler) ExportGame(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{constants.JSONKeyError: constants.ErrExportDisabled})
		return
	}
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	res, err := h.exporter.Export(c.Request.Context(), g.Slug)
	if err != nil {
		respondError(c, err, constants.ErrFailedExport)
		return
	}
	h.hub.Publish(events.Event{Kind: events.KindExport, Action: events.ActionExported, Game: g.Slug})
	c.JSON(http.StatusOK, res)
}

// LookupNPC finds an NPC of the game by display name.
func (h *GameHandler) LookupNPC(c *gin.Context) {
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Query(constants.QueryName))
	if name == "" {
		badRequest(c, constants.ErrNameRequired)
		return
	}
	e, err := h.npcs.Lookup(g.ID, name)
	if err != nil {
		respondError(c, err, constants.ErrNPCLookupFailed)
		return
	}
	c.JSON(http.StatusOK, e)
}
