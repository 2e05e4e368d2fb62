package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/lenient"
	"github.com/ericogr/gamedash/internal/storage"
)

const maxResponseRadius = 100

// NPCRepo is the minimal repository interface required by the NPC
// operations.
type NPCRepo interface {
	GetAsset(gameID uint, assetID string) (*game.Asset, error)
	GetNPC(npcID string) (*game.NPC, error)
	CreateNPC(n *game.NPC) error
	UpdateNPC(n *game.NPC) error
	DeleteNPC(npcID string) error
}

var (
	ErrNPCNotFound      = errors.New("npc not found")
	ErrNPCFieldsMissing = errors.New("display_name and asset_id are required")
	ErrUnknownAsset     = errors.New("asset_id does not reference an asset of this game")
	ErrNPCExists        = errors.New("npc already exists")
)

var (
	keyNPCID          = []string{"npc_id", "npcId", "id"}
	keyDisplayName    = []string{"display_name", "displayName"}
	keyModel          = []string{"model"}
	keySystemPrompt   = []string{"system_prompt", "systemPrompt"}
	keyResponseRadius = []string{"response_radius", "responseRadius"}
	keySpawnPosition  = []string{"spawn_position", "spawnPosition"}
	keyAbilities      = []string{"abilities"}
)

// NPCIDFrom reads the npc id under any accepted alias.
func NPCIDFrom(o lenient.Object) string {
	return o.String(keyNPCID...)
}

// ClampRadius bounds a response radius, mapping non-positive values to the
// default.
func ClampRadius(r int) int {
	switch {
	case r <= 0:
		return constants.DefaultResponseRange
	case r > maxResponseRadius:
		return maxResponseRadius
	}
	return r
}

func applyNPC(n *game.NPC, o lenient.Object) {
	if o.Has(keyDisplayName...) {
		n.DisplayName = o.String(keyDisplayName...)
	}
	if o.Has(keyAssetID...) {
		n.AssetID = o.String(keyAssetID...)
	}
	if o.Has(keyModel...) {
		n.Model3D = o.String(keyModel...)
	}
	if o.Has(keySystemPrompt...) {
		n.SystemPrompt = o.String(keySystemPrompt...)
	}
	if o.Has(keyResponseRadius...) {
		n.ResponseRadius = o.Int(constants.DefaultResponseRange, keyResponseRadius...)
	}
	if o.Has(keySpawnPosition...) {
		n.SpawnPosition = o.Vector3(keySpawnPosition...)
	}
	if o.Has(keyAbilities...) {
		n.Abilities = o.StringList(keyAbilities...)
	}
	n.ResponseRadius = ClampRadius(n.ResponseRadius)
	if n.Abilities == nil {
		n.Abilities = lenient.StringList{}
	}
}

func requireAsset(repo NPCRepo, gameID uint, assetID string) (*game.Asset, error) {
	a, err := repo.GetAsset(gameID, assetID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && a == nil) {
		return nil, ErrUnknownAsset
	}
	return a, err
}

// CreateNPC validates the payload, checks that the referenced asset
// belongs to the same game and stores the NPC. A missing npc_id gets a
// random UUID.
func CreateNPC(repo NPCRepo, gameID uint, o lenient.Object) (*game.NPC, error) {
	n := &game.NPC{
		GameID:        gameID,
		NPCID:         o.String(keyNPCID...),
		SpawnPosition: lenient.DefaultSpawn,
	}
	applyNPC(n, o)
	if n.DisplayName == "" || n.AssetID == "" {
		return nil, ErrNPCFieldsMissing
	}
	a, err := requireAsset(repo, gameID, n.AssetID)
	if err != nil {
		return nil, err
	}
	if n.Model3D == "" {
		n.Model3D = a.Name
	}
	if n.NPCID == "" {
		n.NPCID = uuid.NewString()
	} else if existing, err := repo.GetNPC(n.NPCID); err == nil && existing != nil {
		return nil, ErrNPCExists
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	n.ImageURL = a.ImageURL
	if err := repo.CreateNPC(n); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrNPCExists
		}
		return nil, err
	}
	return n, nil
}

// GetNPC loads an NPC. A non-zero gameID must match the NPC's game.
func GetNPC(repo NPCRepo, npcID string, gameID uint) (*game.NPC, error) {
	n, err := repo.GetNPC(strings.TrimSpace(npcID))
	n, err = found(n, err, ErrNPCNotFound)
	if err != nil {
		return nil, err
	}
	if gameID != 0 && n.GameID != gameID {
		return nil, ErrNPCNotFound
	}
	return n, nil
}

// UpdateNPC applies a partial update.
func UpdateNPC(repo NPCRepo, npcID string, gameID uint, o lenient.Object) (*game.NPC, error) {
	n, err := GetNPC(repo, npcID, gameID)
	if err != nil {
		return nil, err
	}
	prevAsset := n.AssetID
	applyNPC(n, o)
	if n.DisplayName == "" || n.AssetID == "" {
		return nil, ErrNPCFieldsMissing
	}
	if n.AssetID != prevAsset {
		a, err := requireAsset(repo, n.GameID, n.AssetID)
		if err != nil {
			return nil, err
		}
		n.ImageURL = a.ImageURL
	}
	if err := repo.UpdateNPC(n); err != nil {
		return nil, err
	}
	return n, nil
}

// DeleteNPC removes an NPC and returns the deleted record.
func DeleteNPC(repo NPCRepo, npcID string, gameID uint) (*game.NPC, error) {
	n, err := GetNPC(repo, npcID, gameID)
	if err != nil {
		return nil, err
	}
	if err := repo.DeleteNPC(n.NPCID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNPCNotFound
		}
		return nil, err
	}
	return n, nil
}
