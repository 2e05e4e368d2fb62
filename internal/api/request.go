package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/lenient"
	"github.com/ericogr/gamedash/internal/service"
)

const (
	maxBodyBytes      = 10 << 20
	maxMultipartBytes = 64 << 20
)

var keyGameID = []string{"game_id", "gameId", "game"}

// readObject parses a JSON, urlencoded or multipart body into a loose
// object. An empty body yields an empty object.
func readObject(c *gin.Context) (lenient.Object, error) {
	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxMultipartBytes); err != nil {
			return nil, err
		}
		return lenient.FromForm(c.Request.MultipartForm.Value), nil
	case gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		return lenient.FromForm(c.Request.PostForm), nil
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return lenient.Object{}, nil
	}
	return lenient.ParseObject(body)
}

// uploadedFile returns the model file of a multipart request, if any.
func uploadedFile(c *gin.Context) (*multipart.FileHeader, bool) {
	if c.Request.MultipartForm == nil {
		return nil, false
	}
	files := c.Request.MultipartForm.File[constants.FormFieldFile]
	if len(files) == 0 || files[0].Filename == "" {
		return nil, false
	}
	return files[0], true
}

// gameRef returns the game reference of a request: the query parameter
// wins over the body.
func gameRef(c *gin.Context, o lenient.Object) string {
	if ref := strings.TrimSpace(c.Query(constants.QueryGameID)); ref != "" {
		return ref
	}
	if o != nil {
		return o.String(keyGameID...)
	}
	return ""
}

// optionalGame resolves ?game_id when present. A nil game means "all".
func (h *GameHandler) optionalGame(c *gin.Context) (*game.Game, bool) {
	ref := gameRef(c, nil)
	if ref == "" {
		return nil, true
	}
	g, err := service.ResolveGame(h.repo, ref)
	if err != nil {
		respondError(c, err, constants.ErrGameNotFound)
		return nil, false
	}
	return g, true
}

// pathGame resolves the :game route parameter.
func (h *GameHandler) pathGame(c *gin.Context) (*game.Game, bool) {
	g, err := service.ResolveGame(h.repo, c.Param(constants.ParamGame))
	if err != nil {
		respondError(c, err, constants.ErrGameNotFound)
		return nil, false
	}
	return g, true
}

func queryBool(c *gin.Context, key string) bool {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
	}
	return b
}
