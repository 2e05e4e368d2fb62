package api

import (
	"context"

	"github.com/ericogr/gamedash/internal/describe"
	"github.com/ericogr/gamedash/internal/events"
	"github.com/ericogr/gamedash/internal/export"
	"github.com/ericogr/gamedash/internal/filestore"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/npccache"
	"github.com/ericogr/gamedash/internal/storage"
	"github.com/ericogr/gamedash/internal/thumbnail"
)

// Deps are the collaborators of a Handler. Only Repo is required.
type Deps struct {
	Repo      storage.Repository
	Exporter  *export.Exporter
	NPCCache  *npccache.Cache
	Hub       *events.Hub
	Thumbs    thumbnail.Fetcher
	Describer *describe.Describer
	Files     *filestore.Store
}

// GameHandler groups all HTTP handlers of the dashboard API.
type GameHandler struct {
	repo      storage.Repository
	exporter  *export.Exporter
	npcs      *npccache.Cache
	hub       *events.Hub
	thumbs    thumbnail.Fetcher
	describer *describe.Describer
	files     *filestore.Store
}

// NewGameHandler creates a GameHandler. A nil NPCCache gets a default one.
func NewGameHandler(d Deps) *GameHandler {
	if d.NPCCache == nil {
		d.NPCCache = npccache.New(d.Repo, 0)
	}
	return &GameHandler{
		repo:      d.Repo,
		exporter:  d.Exporter,
		npcs:      d.NPCCache,
		hub:       d.Hub,
		thumbs:    d.Thumbs,
		describer: d.Describer,
		files:     d.Files,
	}
}

// changed runs the follow-up work of a successful mutation: drop cached
// lookups, queue an export of the game and notify listeners.
func (h *GameHandler) changed(g *game.Game, kind, action, id string) {
	ev := events.Event{Kind: kind, Action: action, ID: id}
	if g != nil {
		ev.Game = g.Slug
		h.npcs.Invalidate(g.ID)
		if h.exporter != nil && !(kind == events.KindGame && action == events.ActionDeleted) {
			h.exporter.Schedule(g.Slug)
		}
	}
	h.hub.Publish(ev)
}

// gameOf loads the game an NPC or asset belongs to, for notifications.
func (h *GameHandler) gameOf(id uint) *game.Game {
	g, err := h.repo.GetGameByID(id)
	if err != nil {
		return nil
	}
	return g
}

// thumbnailFunc adapts thumbnail.Ensure for bulk description runs. List
// results carry no thumbnail, so the full row is loaded first.
func (h *GameHandler) thumbnailFunc() describe.ThumbnailFunc {
	if h.thumbs == nil {
		return nil
	}
	return func(ctx context.Context, a *game.Asset) ([]byte, error) {
		full, err := h.repo.GetAsset(a.GameID, a.AssetID)
		if err != nil {
			return nil, err
		}
		return thumbnail.Ensure(ctx, h.repo, h.thumbs, full)
	}
}
