package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/describe"
	"github.com/ericogr/gamedash/internal/filestore"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/npccache"
	"github.com/ericogr/gamedash/internal/service"
	"github.com/ericogr/gamedash/internal/thumbnail"
)

type errMapping struct {
	err    error
	status int
	msg    string
}

var errTable = []errMapping{
	{service.ErrInvalidGameRef, http.StatusBadRequest, constants.ErrInvalidGameID},
	{service.ErrGameNotFound, http.StatusNotFound, constants.ErrGameNotFound},
	{service.ErrTitleRequired, http.StatusBadRequest, constants.ErrTitleRequired},
	{service.ErrTitleTooLong, http.StatusBadRequest, constants.ErrTitleExceeds},
	{service.ErrDescriptionTooLong, http.StatusBadRequest, constants.ErrDescriptionExceeds},
	{service.ErrSlugTaken, http.StatusConflict, constants.ErrSlugTaken},
	{service.ErrAssetNotFound, http.StatusNotFound, constants.ErrAssetNotFound},
	{service.ErrAssetFieldsMissing, http.StatusBadRequest, constants.ErrAssetFieldsMissing},
	{service.ErrAssetExists, http.StatusConflict, constants.ErrAssetExists},
	{service.ErrAssetInUse, http.StatusConflict, constants.ErrAssetInUse},
	{service.ErrNPCNotFound, http.StatusNotFound, constants.ErrNPCNotFound},
	{service.ErrNPCFieldsMissing, http.StatusBadRequest, constants.ErrNPCFieldsMissing},
	{service.ErrUnknownAsset, http.StatusBadRequest, constants.ErrUnknownAsset},
	{service.ErrNPCExists, http.StatusConflict, constants.ErrNPCExists},
	{service.ErrPlayerNotFound, http.StatusNotFound, constants.ErrPlayerNotFound},
	{service.ErrPlayerIDRequired, http.StatusBadRequest, constants.ErrPlayerIDRequired},
	{service.ErrDescriptionRequired, http.StatusBadRequest, constants.ErrDescriptionRequired},
	{npccache.ErrNotFound, http.StatusNotFound, constants.ErrNPCNotFound},
	{filestore.ErrUnsupportedType, http.StatusBadRequest, constants.ErrInvalidModelFile},
	{filestore.ErrTooLarge, http.StatusRequestEntityTooLarge, constants.ErrModelFileTooLarge},
	{describe.ErrDisabled, http.StatusServiceUnavailable, constants.ErrDescribeDisabled},
	{thumbnail.ErrTimeout, http.StatusGatewayTimeout, constants.ErrThumbnailFailed},
}

// statusFor maps a service error to a status code and a client message.
// Unknown errors become 500 with fallback as message.
func statusFor(err error, fallback string) (int, string) {
	for _, m := range errTable {
		if errors.Is(err, m.err) {
			return m.status, m.msg
		}
	}
	return http.StatusInternalServerError, fallback
}

// respondError writes {"error": msg, "detail": err} and logs server-side
// failures.
func respondError(c *gin.Context, err error, fallback string) {
	status, msg := statusFor(err, fallback)
	if status >= http.StatusInternalServerError {
		logging.Error(fallback, err, logging.Fields{constants.LogFieldPath: c.FullPath(), constants.LogFieldMethod: c.Request.Method})
	}
	c.JSON(status, gin.H{constants.JSONKeyError: msg, constants.JSONKeyDetail: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: msg})
}
