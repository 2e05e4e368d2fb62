package describe

import (
	"context"
	"fmt"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/dedupe"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/storage"
)

type (
	Options = game.DescribeOptions
	Report  = game.DescribeReport
)

// AssetStore is the persistence a bulk run needs.
type AssetStore interface {
	ListAssets(f storage.AssetFilter) ([]game.Asset, error)
	UpdateAsset(a *game.Asset) error
}

// ThumbnailFunc returns the PNG thumbnail of an asset. Errors are logged
// and the description is generated from the name alone.
type ThumbnailFunc func(ctx context.Context, a *game.Asset) ([]byte, error)

func skip(o Options, a *game.Asset) bool {
	if o.SingleAsset != "" && a.AssetID != o.SingleAsset {
		return true
	}
	if a.Description == "" {
		return false
	}
	return o.OnlyEmpty || !o.Overwrite
}

// UpdateDescriptions generates descriptions for the assets of a game.
func UpdateDescriptions(ctx context.Context, store AssetStore, d *Describer, thumbs ThumbnailFunc, gameID uint, opts Options) (Report, error) {
	rep := Report{Updated: []string{}, Failed: map[string]string{}}
	if !d.Enabled() {
		return rep, ErrDisabled
	}
	assets, err := store.ListAssets(storage.AssetFilter{GameID: gameID})
	if err != nil {
		return rep, err
	}
	for i := range assets {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		a := &assets[i]
		if skip(opts, a) {
			rep.Skipped++
			continue
		}
		desc, err := describeOne(ctx, d, thumbs, a)
		if err != nil {
			logging.Error("asset description failed", err, logging.Fields{constants.LogFieldAssetID: a.AssetID})
			rep.Failed[a.AssetID] = err.Error()
			continue
		}
		a.Description = desc
		if err := store.UpdateAsset(a); err != nil {
			rep.Failed[a.AssetID] = err.Error()
			continue
		}
		rep.Updated = append(rep.Updated, a.AssetID)
	}
	logging.Info("asset descriptions updated", logging.Fields{constants.LogFieldGameID: gameID, "updated": len(rep.Updated), "skipped": rep.Skipped, "failed": len(rep.Failed)})
	return rep, nil
}

func describeOne(ctx context.Context, d *Describer, thumbs ThumbnailFunc, a *game.Asset) (string, error) {
	ch := dedupe.DescribeGroup.DoChan(fmt.Sprintf("describe:%d", a.ID), func() (interface{}, error) {
		var png []byte
		if thumbs != nil {
			b, err := thumbs(ctx, a)
			if err != nil {
				logging.Warn("thumbnail unavailable; describing by name", logging.Fields{constants.LogFieldAssetID: a.AssetID, "error": err.Error()})
			} else {
				png = b
			}
		}
		return d.Describe(ctx, a.Name, png)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
