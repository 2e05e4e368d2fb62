package storage

import (
	"errors"

	"github.com/ericogr/gamedash/internal/game"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert collides with a unique key.
var ErrDuplicate = errors.New("record already exists")

// AssetFilter narrows ListAssets. Zero values mean "any".
type AssetFilter struct {
	GameID uint
	Type   string
}

type Repository interface {
	// Games are returned with AssetCount/NPCCount populated.
	ListGames() ([]game.Game, error)
	GetGameByID(id uint) (*game.Game, error)
	GetGameBySlug(slug string) (*game.Game, error)
	CreateGame(g *game.Game) error
	UpdateGame(g *game.Game) error
	// DeleteGame removes the game with all of its assets and NPCs.
	DeleteGame(id uint) error

	// ListAssets omits thumbnails and fills NPCCount.
	ListAssets(f AssetFilter) ([]game.Asset, error)
	GetAsset(gameID uint, assetID string) (*game.Asset, error)
	CreateAsset(a *game.Asset) error
	UpdateAsset(a *game.Asset) error
	DeleteAsset(gameID uint, assetID string) error
	CountNPCsForAsset(gameID uint, assetID string) (int64, error)
	SaveAssetThumbnail(id uint, png []byte) error

	// NPCs are returned with ImageURL taken from the referenced asset.
	ListNPCs(gameID uint) ([]game.NPC, error)
	GetNPC(npcID string) (*game.NPC, error)
	CreateNPC(n *game.NPC) error
	UpdateNPC(n *game.NPC) error
	DeleteNPC(npcID string) error

	ListPlayers() ([]game.Player, error)
	GetPlayer(playerID string) (*game.Player, error)
	UpsertPlayer(p *game.Player) error
	DeletePlayer(playerID string) error

	Stats() (game.Stats, error)
}
