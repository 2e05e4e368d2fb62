package game

import "time"

// ExportResult describes a finished export of a game's data files.
type ExportResult struct {
	Slug     string    `json:"slug"`
	Dir      string    `json:"dir"`
	Assets   int       `json:"assets"`
	NPCs     int       `json:"npcs"`
	Exported time.Time `json:"exported_at"`
}

// NPCLookup is an NPC found by display name, joined with the description
// of its asset.
type NPCLookup struct {
	NPCID        string `json:"npc_id"`
	DisplayName  string `json:"display_name"`
	AssetID      string `json:"asset_id"`
	SystemPrompt string `json:"system_prompt"`
	Description  string `json:"description"`
}

// DescribeOptions select which assets get new descriptions.
type DescribeOptions struct {
	// Overwrite replaces existing descriptions.
	Overwrite bool `json:"overwrite"`
	// OnlyEmpty restricts the run to assets without a description; it
	// wins over Overwrite.
	OnlyEmpty bool `json:"only_empty"`
	// SingleAsset limits the run to one asset id.
	SingleAsset string `json:"single_asset"`
}

// DescribeReport summarizes a bulk describe run.
type DescribeReport struct {
	Updated []string          `json:"updated"`
	Skipped int               `json:"skipped"`
	Failed  map[string]string `json:"failed"`
}
