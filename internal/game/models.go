package game

import (
	"time"

	"github.com/ericogr/gamedash/internal/lenient"
)

// Model carries the common columns. Deletes are hard deletes, so there is
// no DeletedAt column.
type Model struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Game groups assets and NPCs. The slug is derived from the title and is
// the public identifier used in URLs and export paths.
type Game struct {
	Model
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	AssetCount  int    `json:"asset_count" gorm:"-"`
	NPCCount    int    `json:"npc_count" gorm:"-"`
}

func (Game) TableName() string { return "games" }

// Asset is a game object identified by its external (Roblox) asset id.
// (game_id, asset_id) is unique.
type Asset struct {
	Model
	GameID       uint                 `json:"game_id" gorm:"not null;index"`
	AssetID      string               `json:"asset_id" gorm:"not null"`
	Name         string               `json:"name" gorm:"not null"`
	Slug         string               `json:"slug"`
	Description  string               `json:"description"`
	Type         string               `json:"type"`
	ImageURL     string               `json:"image_url"`
	Tags         lenient.StringList   `json:"tags"`
	IsLocation   bool                 `json:"is_location"`
	PositionX    *float64             `json:"position_x"`
	PositionY    *float64             `json:"position_y"`
	PositionZ    *float64             `json:"position_z"`
	LocationData lenient.LocationData `json:"location_data"`
	Aliases      lenient.StringList   `json:"aliases"`
	ModelFile    string               `json:"model_file,omitempty"`
	// Thumbnail holds the 256x256 PNG. It is served by its own route and
	// never included in JSON.
	Thumbnail []byte `json:"-" gorm:"column:thumbnail_png;type:blob"`
	NPCCount  int    `json:"npc_count" gorm:"-"`
}

func (Asset) TableName() string { return "assets" }

// HasThumbnail reports whether a stored thumbnail exists.
func (a *Asset) HasThumbnail() bool { return len(a.Thumbnail) > 0 }

// NPC is a non-player character placed in a game. AssetID references an
// Asset of the same game.
type NPC struct {
	Model
	NPCID          string             `json:"npc_id" gorm:"uniqueIndex;not null"`
	GameID         uint               `json:"game_id" gorm:"not null;index"`
	DisplayName    string             `json:"display_name" gorm:"not null"`
	AssetID        string             `json:"asset_id" gorm:"not null"`
	Model3D        string             `json:"model" gorm:"column:model"`
	SystemPrompt   string             `json:"system_prompt"`
	ResponseRadius int                `json:"response_radius" gorm:"default:20"`
	SpawnPosition  lenient.Vector3    `json:"spawn_position"`
	Abilities      lenient.StringList `json:"abilities"`
	ImageURL       string             `json:"image_url" gorm:"-"`
}

func (NPC) TableName() string { return "npcs" }

// Player stores the description a game uses for a connected player.
type Player struct {
	PlayerID    string    `json:"player_id" gorm:"primaryKey"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Player) TableName() string { return "player_descriptions" }

// Stats holds entity totals.
type Stats struct {
	Games   int64
	Assets  int64
	NPCs    int64
	Players int64
}
