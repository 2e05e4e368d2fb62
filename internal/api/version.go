package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/version"
)

// Version returns build and VCS metadata injected at build time.
func Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// Health reports whether the database answers.
func (h *GameHandler) Health(c *gin.Context) {
	if _, err := h.repo.Stats(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{constants.JSONKeyStatus: "unavailable", constants.JSONKeyError: constants.ErrStorageUnavailable})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "ok"})
}
