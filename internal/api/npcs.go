package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/events"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/service"
)

// ListNPCs returns {"npcs": [...]}, optionally limited to ?game_id.
func (h *GameHandler) ListNPCs(c *gin.Context) {
	g, ok := h.optionalGame(c)
	if !ok {
		return
	}
	var gameID uint
	if g != nil {
		gameID = g.ID
	}
	npcs, err := h.repo.ListNPCs(gameID)
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchNPCs)
		return
	}
	if npcs == nil {
		npcs = []game.NPC{}
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyNPCs: npcs})
}

// CreateNPC creates an NPC from a JSON or form body; game_id is required.
func (h *GameHandler) CreateNPC(c *gin.Context) {
	o, err := readObject(c)
	if err != nil {
		badRequest(c, constants.ErrInvalidRequest)
		return
	}
	ref := gameRef(c, o)
	if ref == "" {
		badRequest(c, constants.ErrGameIDRequired)
		return
	}
	g, err := service.ResolveGame(h.repo, ref)
	if err != nil {
		respondError(c, err, constants.ErrGameNotFound)
		return
	}
	n, err := service.CreateNPC(h.repo, g.ID, o)
	if err != nil {
		respondError(c, err, constants.ErrFailedSaveNPC)
		return
	}
	logging.Info("npc created", logging.Fields{constants.LogFieldGameSlug: g.Slug, constants.LogFieldNPCID: n.NPCID})
	h.changed(g, events.KindNPC, events.ActionCreated, n.NPCID)
	c.JSON(http.StatusCreated, n)
}

// scopeID returns the id of ?game_id, or 0 when absent.
func (h *GameHandler) scopeID(c *gin.Context) (uint, bool) {
	g, ok := h.optionalGame(c)
	if !ok || g == nil {
		return 0, ok
	}
	return g.ID, true
}

func (h *GameHandler) GetNPC(c *gin.Context) {
	gameID, ok := h.scopeID(c)
	if !ok {
		return
	}
	n, err := service.GetNPC(h.repo, c.Param(constants.ParamNPCID), gameID)
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchNPCs)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *GameHandler) UpdateNPC(c *gin.Context) {
	gameID, ok := h.scopeID(c)
	if !ok {
		return
	}
	o, err := readObject(c)
	if err != nil {
		badRequest(c, constants.ErrInvalidRequest)
		return
	}
	n, err := service.UpdateNPC(h.repo, c.Param(constants.ParamNPCID), gameID, o)
	if err != nil {
		respondError(c, err, constants.ErrFailedSaveNPC)
		return
	}
	h.changed(h.gameOf(n.GameID), events.KindNPC, events.ActionUpdated, n.NPCID)
	c.JSON(http.StatusOK, n)
}

func (h *GameHandler) DeleteNPC(c *gin.Context) {
	gameID, ok := h.scopeID(c)
	if !ok {
		return
	}
	n, err := service.DeleteNPC(h.repo, c.Param(constants.ParamNPCID), gameID)
	if err != nil {
		respondError(c, err, constants.ErrFailedDeleteNPC)
		return
	}
	logging.Info("npc deleted", logging.Fields{constants.LogFieldNPCID: n.NPCID})
	h.changed(h.gameOf(n.GameID), events.KindNPC, events.ActionDeleted, n.NPCID)
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "NPC deleted"})
}
