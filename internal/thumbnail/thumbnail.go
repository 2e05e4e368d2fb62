package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/dedupe"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/imageutil"
	"github.com/ericogr/gamedash/internal/logging"
)

// Timeout bounds a single fetch-and-resize job.
const Timeout = 90 * time.Second

var ErrTimeout = errors.New("timed out waiting for thumbnail")

// Fetcher downloads source images.
type Fetcher interface {
	Download(ctx context.Context, imageURL string) ([]byte, error)
	FetchAssetThumbnail(ctx context.Context, assetID string) ([]byte, string, error)
}

// Store is the persistence a thumbnail job needs.
type Store interface {
	GetAsset(gameID uint, assetID string) (*game.Asset, error)
	SaveAssetThumbnail(id uint, png []byte) error
}

// Ensure returns the stored thumbnail of a, fetching, resizing and saving
// it when missing. The asset's image_url is used when set, otherwise the
// Roblox thumbnail API is asked. Concurrent requests for the same asset
// share one job.
func Ensure(ctx context.Context, repo Store, f Fetcher, a *game.Asset) ([]byte, error) {
	if a.HasThumbnail() {
		return a.Thumbnail, nil
	}

	key := fmt.Sprintf("asset:%d", a.ID)
	ch := dedupe.ThumbnailGroup.DoChan(key, func() (interface{}, error) {
		// Re-check the store in case another caller saved it while queued.
		if cur, err := repo.GetAsset(a.GameID, a.AssetID); err == nil && cur != nil && cur.HasThumbnail() {
			return cur.Thumbnail, nil
		}
		jobCtx, cancel := context.WithTimeout(context.Background(), Timeout)
		defer cancel()

		var (
			raw    []byte
			source string
			err    error
		)
		if a.ImageURL != "" {
			source = a.ImageURL
			raw, err = f.Download(jobCtx, a.ImageURL)
		} else {
			raw, source, err = f.FetchAssetThumbnail(jobCtx, a.AssetID)
		}
		if err != nil {
			return nil, err
		}
		out, err := imageutil.Thumbnail(raw, constants.ThumbnailSize)
		if err != nil {
			return nil, err
		}
		if err := repo.SaveAssetThumbnail(a.ID, out); err != nil {
			logging.Error("failed to save asset thumbnail", err, logging.Fields{constants.LogFieldAssetID: a.AssetID})
		} else {
			logging.Info("asset thumbnail stored", logging.Fields{constants.LogFieldAssetID: a.AssetID, constants.LogFieldSource: source, "size_bytes": len(out)})
		}
		return out, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		out, ok := r.Val.([]byte)
		if !ok {
			return nil, fmt.Errorf("unexpected thumbnail result type %T", r.Val)
		}
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(Timeout):
		return nil, ErrTimeout
	}
}
