package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/events"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/service"
)

func (h *GameHandler) ListPlayers(c *gin.Context) {
	players, err := h.repo.ListPlayers()
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchPlayers)
		return
	}
	if players == nil {
		players = []game.Player{}
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyPlayers: players})
}

func (h *GameHandler) GetPlayer(c *gin.Context) {
	p, err := service.GetPlayer(h.repo, c.Param(constants.ParamPlayerID))
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchPlayers)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpsertPlayer creates or replaces a player description.
func (h *GameHandler) UpsertPlayer(c *gin.Context) {
	o, err := readObject(c)
	if err != nil {
		badRequest(c, constants.ErrInvalidRequest)
		return
	}
	id := c.Param(constants.ParamPlayerID)
	_, getErr := h.repo.GetPlayer(id)
	p, err := service.UpsertPlayer(h.repo, id, o)
	if err != nil {
		respondError(c, err, constants.ErrFailedSavePlayer)
		return
	}
	action := events.ActionUpdated
	if getErr != nil {
		action = events.ActionCreated
	}
	h.changed(nil, events.KindPlayer, action, p.PlayerID)
	c.JSON(http.StatusOK, p)
}

func (h *GameHandler) DeletePlayer(c *gin.Context) {
	id := c.Param(constants.ParamPlayerID)
	if err := service.DeletePlayer(h.repo, id); err != nil {
		respondError(c, err, constants.ErrFailedDeletePlayer)
		return
	}
	h.changed(nil, events.KindPlayer, events.ActionDeleted, id)
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Player deleted"})
}
