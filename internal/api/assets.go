package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/describe"
	"github.com/ericogr/gamedash/internal/events"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/lenient"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/service"
	"github.com/ericogr/gamedash/internal/storage"
	"github.com/ericogr/gamedash/internal/thumbnail"
)

// ListAssets returns {"assets": [...]} filtered by ?game_id and ?type.
// Without game_id the assets of every game are returned.
func (h *GameHandler) ListAssets(c *gin.Context) {
	g, ok := h.optionalGame(c)
	if !ok {
		return
	}
	f := storage.AssetFilter{Type: strings.TrimSpace(c.Query(constants.QueryType))}
	if g != nil {
		f.GameID = g.ID
	}
	assets, err := h.repo.ListAssets(f)
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchAssets)
		return
	}
	if assets == nil {
		assets = []game.Asset{}
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyAssets: assets})
}

// storeUpload saves the multipart model file, if any, and records its path
// on o. The returned path must be removed when the save fails later.
func (h *GameHandler) storeUpload(c *gin.Context, o lenient.Object) (string, error) {
	fh, ok := uploadedFile(c)
	if !ok || h.files == nil {
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	typ := o.String("type")
	if typ == "" {
		typ = constants.DefaultAssetType
	}
	rel, err := h.files.Save(typ, fh.Filename, f)
	if err != nil {
		return "", err
	}
	o.Set("model_file", rel)
	return rel, nil
}

func (h *GameHandler) discardUpload(rel string) {
	if rel == "" || h.files == nil {
		return
	}
	if err := h.files.Remove(rel); err != nil {
		logging.Warn("failed to remove model file", logging.Fields{constants.LogFieldPath: rel, "error": err.Error()})
	}
}

// CreateAsset accepts JSON, urlencoded or multipart bodies. The game comes
// from ?game_id or the game_id field.
func (h *GameHandler) CreateAsset(c *gin.Context) {
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
	rel, err := h.storeUpload(c, o)
	if err != nil {
		respondError(c, err, constants.ErrFailedSaveAsset)
		return
	}
	a, err := service.CreateAsset(h.repo, g.ID, o)
	if err != nil {
		h.discardUpload(rel)
		respondError(c, err, constants.ErrFailedSaveAsset)
		return
	}
	logging.Info("asset created", logging.Fields{constants.LogFieldGameSlug: g.Slug, constants.LogFieldAssetID: a.AssetID})
	h.changed(g, events.KindAsset, events.ActionCreated, a.AssetID)
	c.JSON(http.StatusCreated, a)
}

// GetAsset returns one asset of a game.
func (h *GameHandler) GetAsset(c *gin.Context) {
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	a, err := service.GetAsset(h.repo, g.ID, c.Param(constants.ParamAssetID))
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchAssets)
		return
	}
	c.JSON(http.StatusOK, a)
}

// UpdateAsset applies a partial update. A new model file replaces the old
// one.
func (h *GameHandler) UpdateAsset(c *gin.Context) {
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	o, err := readObject(c)
	if err != nil {
		badRequest(c, constants.ErrInvalidRequest)
		return
	}
	prev, err := service.GetAsset(h.repo, g.ID, c.Param(constants.ParamAssetID))
	if err != nil {
		respondError(c, err, constants.ErrFailedSaveAsset)
		return
	}
	rel, err := h.storeUpload(c, o)
	if err != nil {
		respondError(c, err, constants.ErrFailedSaveAsset)
		return
	}
	a, err := service.UpdateAsset(h.repo, g.ID, prev.AssetID, o)
	if err != nil {
		h.discardUpload(rel)
		respondError(c, err, constants.ErrFailedSaveAsset)
		return
	}
	if rel != "" && prev.ModelFile != "" && prev.ModelFile != rel {
		h.discardUpload(prev.ModelFile)
	}
	h.changed(g, events.KindAsset, events.ActionUpdated, a.AssetID)
	c.JSON(http.StatusOK, a)
}

// DeleteAsset removes an asset. Assets referenced by NPCs need ?force=1.
func (h *GameHandler) DeleteAsset(c *gin.Context) {
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	a, err := service.DeleteAsset(h.repo, g.ID, c.Param(constants.ParamAssetID), queryBool(c, constants.QueryForce))
	if err != nil {
		respondError(c, err, constants.ErrFailedDeleteAsset)
		return
	}
	h.discardUpload(a.ModelFile)
	logging.Info("asset deleted", logging.Fields{constants.LogFieldGameSlug: g.Slug, constants.LogFieldAssetID: a.AssetID})
	h.changed(g, events.KindAsset, events.ActionDeleted, a.AssetID)
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Asset deleted"})
}

// AssetThumbnail serves the 256x256 PNG of an asset, fetching it on first
// use.
func (h *GameHandler) AssetThumbnail(c *gin.Context) {
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	a, err := service.GetAsset(h.repo, g.ID, c.Param(constants.ParamAssetID))
	if err != nil {
		respondError(c, err, constants.ErrThumbnailFailed)
		return
	}
	if !a.HasThumbnail() && h.thumbs == nil {
		c.Status(http.StatusNotFound)
		return
	}
	png, err := thumbnail.Ensure(c.Request.Context(), h.repo, h.thumbs, a)
	if err != nil {
		status, msg := statusFor(err, constants.ErrThumbnailFailed)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		logging.Warn("thumbnail unavailable", logging.Fields{constants.LogFieldAssetID: a.AssetID, "error": err.Error()})
		c.JSON(status, gin.H{constants.JSONKeyError: msg, constants.JSONKeyDetail: err.Error()})
		return
	}
	c.Header(constants.CacheControlHeader, constants.CacheControlNoCache)
	c.Data(http.StatusOK, constants.ContentTypePNG, png)
}

// DescribeAssets generates descriptions for the assets of a game.
func (h *GameHandler) DescribeAssets(c *gin.Context) {
	g, ok := h.pathGame(c)
	if !ok {
		return
	}
	if !h.describer.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{constants.JSONKeyError: constants.ErrDescribeDisabled})
		return
	}
	o, err := readObject(c)
	if err != nil {
		badRequest(c, constants.ErrInvalidRequest)
		return
	}
	opts := describe.Options{
		Overwrite:   o.Bool("overwrite"),
		OnlyEmpty:   o.Bool("only_empty", "onlyEmpty"),
		SingleAsset: o.String("single_asset", "singleAsset"),
	}
	rep, err := describe.UpdateDescriptions(c.Request.Context(), h.repo, h.describer, h.thumbnailFunc(), g.ID, opts)
	if err != nil {
		respondError(c, err, constants.ErrDescribeFailed)
		return
	}
	if len(rep.Updated) > 0 {
		h.changed(g, events.KindAsset, events.ActionUpdated, "")
	}
	c.JSON(http.StatusOK, rep)
}
