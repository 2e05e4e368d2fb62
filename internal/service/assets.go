package service

import (
	"errors"
	"strings"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/keys"
	"github.com/ericogr/gamedash/internal/lenient"
	"github.com/ericogr/gamedash/internal/storage"
)

// AssetRepo is the minimal repository interface required by the asset
// operations.
type AssetRepo interface {
	GetAsset(gameID uint, assetID string) (*game.Asset, error)
	CreateAsset(a *game.Asset) error
	UpdateAsset(a *game.Asset) error
	DeleteAsset(gameID uint, assetID string) error
	CountNPCsForAsset(gameID uint, assetID string) (int64, error)
}

var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrAssetFieldsMissing = errors.New("name and asset_id are required")
	ErrAssetExists        = errors.New("asset already exists in this game")
	ErrAssetInUse         = errors.New("asset is referenced by NPCs")
)

// Key aliases accepted in asset payloads.
var (
	keyAssetID      = []string{"asset_id", "assetId", "assetID"}
	keyName         = []string{"name"}
	keyDescription  = []string{"description"}
	keyType         = []string{"type"}
	keyImageURL     = []string{"image_url", "imageUrl"}
	keyTags         = []string{"tags"}
	keyIsLocation   = []string{"is_location", "isLocation"}
	keyPosX         = []string{"position_x", "positionX"}
	keyPosY         = []string{"position_y", "positionY"}
	keyPosZ         = []string{"position_z", "positionZ"}
	keyLocationData = []string{"location_data", "locationData"}
	keyAliases      = []string{"aliases"}
	keyModelFile    = []string{"model_file", "modelFile"}
)

// AssetIDFrom reads the asset id under any accepted alias.
func AssetIDFrom(o lenient.Object) string {
	return o.String(keyAssetID...)
}

// applyAsset copies the fields present in o onto a. Absent fields keep
// their current values.
func applyAsset(a *game.Asset, o lenient.Object) {
	if o.Has(keyName...) {
		a.Name = o.String(keyName...)
		a.Slug = keys.AssetSlug(a.Name)
	}
	if o.Has(keyDescription...) {
		a.Description = o.String(keyDescription...)
	}
	if o.Has(keyType...) {
		a.Type = o.String(keyType...)
	}
	if o.Has(keyImageURL...) {
		a.ImageURL = o.String(keyImageURL...)
	}
	if o.Has(keyTags...) {
		a.Tags = o.StringList(keyTags...)
	}
	if o.Has(keyAliases...) {
		a.Aliases = o.StringList(keyAliases...)
	}
	if o.Has(keyIsLocation...) {
		a.IsLocation = o.Bool(keyIsLocation...)
	}
	if o.Has(keyPosX...) {
		a.PositionX = o.OptFloat(keyPosX...)
	}
	if o.Has(keyPosY...) {
		a.PositionY = o.OptFloat(keyPosY...)
	}
	if o.Has(keyPosZ...) {
		a.PositionZ = o.OptFloat(keyPosZ...)
	}
	if o.Has(keyLocationData...) {
		a.LocationData = o.LocationData(keyLocationData...)
	}
	if o.Has(keyModelFile...) {
		a.ModelFile = o.String(keyModelFile...)
	}
	normalizeAsset(a)
}

func normalizeAsset(a *game.Asset) {
	if strings.TrimSpace(a.Type) == "" {
		a.Type = constants.DefaultAssetType
	}
	if a.Tags == nil {
		a.Tags = lenient.StringList{}
	}
	if a.Aliases == nil {
		a.Aliases = lenient.StringList{}
	}
	if !a.IsLocation {
		a.PositionX, a.PositionY, a.PositionZ = nil, nil, nil
		a.LocationData = lenient.LocationData{}
	}
}

// CreateAsset builds a new asset for gameID from a loose payload.
func CreateAsset(repo AssetRepo, gameID uint, o lenient.Object) (*game.Asset, error) {
	a := &game.Asset{GameID: gameID, AssetID: AssetIDFrom(o)}
	applyAsset(a, o)
	if a.AssetID == "" || a.Name == "" {
		return nil, ErrAssetFieldsMissing
	}
	existing, err := repo.GetAsset(gameID, a.AssetID)
	if err == nil && existing != nil {
		return nil, ErrAssetExists
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if err := repo.CreateAsset(a); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrAssetExists
		}
		return nil, err
	}
	return a, nil
}

// GetAsset loads one asset of a game.
func GetAsset(repo AssetRepo, gameID uint, assetID string) (*game.Asset, error) {
	a, err := repo.GetAsset(gameID, strings.TrimSpace(assetID))
	return found(a, err, ErrAssetNotFound)
}

// UpdateAsset applies a partial update. The asset id itself is immutable.
func UpdateAsset(repo AssetRepo, gameID uint, assetID string, o lenient.Object) (*game.Asset, error) {
	a, err := GetAsset(repo, gameID, assetID)
	if err != nil {
		return nil, err
	}
	applyAsset(a, o)
	if a.Name == "" {
		return nil, ErrAssetFieldsMissing
	}
	if err := repo.UpdateAsset(a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAsset refuses to remove an asset still referenced by NPCs unless
// force is set.
func DeleteAsset(repo AssetRepo, gameID uint, assetID string, force bool) (*game.Asset, error) {
	a, err := GetAsset(repo, gameID, assetID)
	if err != nil {
		return nil, err
	}
	if !force {
		n, err := repo.CountNPCsForAsset(gameID, a.AssetID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrAssetInUse
		}
	}
	if err := repo.DeleteAsset(gameID, a.AssetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return a, nil
}
