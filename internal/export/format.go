package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/lenient"
)

// File names written under <dir>/<slug>/src/data.
const (
	AssetJSONFile = "AssetDatabase.json"
	AssetLuaFile  = "AssetDatabase.lua"
	NPCJSONFile   = "NPCDatabase.json"
	NPCLuaFile    = "NPCDatabase.lua"
)

// AssetRecord is the game-client view of an asset.
type AssetRecord struct {
	AssetID     string             `json:"assetId"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ImageURL    string             `json:"imageUrl"`
	Type        string             `json:"type"`
	Tags        lenient.StringList `json:"tags"`
}

// NPCRecord is the game-client view of an NPC.
type NPCRecord struct {
	ID             string             `json:"id"`
	DisplayName    string             `json:"displayName"`
	Model          string             `json:"model"`
	ResponseRadius int                `json:"responseRadius"`
	AssetID        string             `json:"assetId"`
	SpawnPosition  lenient.Vector3    `json:"spawnPosition"`
	SystemPrompt   string             `json:"system_prompt"`
	Abilities      lenient.StringList `json:"abilities"`
}

// AssetDatabase is the root object of AssetDatabase.json.
type AssetDatabase struct {
	Assets []AssetRecord `json:"assets"`
}

// NPCDatabase is the root object of NPCDatabase.json.
type NPCDatabase struct {
	NPCs []NPCRecord `json:"npcs"`
}

func assetRecords(assets []game.Asset) []AssetRecord {
	out := make([]AssetRecord, 0, len(assets))
	for _, a := range assets {
		out = append(out, AssetRecord{
			AssetID:     a.AssetID,
			Name:        a.Name,
			Description: a.Description,
			ImageURL:    a.ImageURL,
			Type:        a.Type,
			Tags:        a.Tags,
		})
	}
	return out
}

func npcRecords(npcs []game.NPC) []NPCRecord {
	out := make([]NPCRecord, 0, len(npcs))
	for _, n := range npcs {
		out = append(out, NPCRecord{
			ID:             n.NPCID,
			DisplayName:    n.DisplayName,
			Model:          n.Model3D,
			ResponseRadius: n.ResponseRadius,
			AssetID:        n.AssetID,
			SpawnPosition:  n.SpawnPosition,
			SystemPrompt:   n.SystemPrompt,
			Abilities:      n.Abilities,
		})
	}
	return out
}

// luaString quotes s as a Lua string literal.
func luaString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// luaLongString wraps s in a long bracket whose closing sequence occurs
// neither in s nor across its end. Lua skips a newline right after the
// opening bracket, so a leading one is doubled.
func luaLongString(s string) string {
	eq := ""
	for strings.Contains(s+"]", "]"+eq+"]") {
		eq += "="
	}
	if strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\r") {
		s = "\n" + s
	}
	return "[" + eq + "[" + s + "]" + eq + "]"
}

func luaNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteAssetLua renders the asset table as a Lua module.
func WriteAssetLua(w io.Writer, assets []AssetRecord) error {
	ew := &errWriter{w: w}
	ew.printf("return {\n    assets = {\n")
	for _, a := range assets {
		ew.printf("        {\n")
		ew.printf("            assetId = %s,\n", luaString(a.AssetID))
		ew.printf("            name = %s,\n", luaString(a.Name))
		ew.printf("            description = %s,\n", luaString(a.Description))
		ew.printf("            type = %s,\n", luaString(a.Type))
		ew.printf("        },\n")
	}
	ew.printf("    },\n}\n")
	return ew.err
}

// WriteNPCLua renders the NPC table as a Lua module. Spawn positions use
// Vector3.new and prompts use long bracket strings.
func WriteNPCLua(w io.Writer, npcs []NPCRecord) error {
	ew := &errWriter{w: w}
	ew.printf("return {\n    npcs = {\n")
	for _, n := range npcs {
		ew.printf("        {\n")
		ew.printf("            id = %s,\n", luaString(n.ID))
		ew.printf("            displayName = %s,\n", luaString(n.DisplayName))
		ew.printf("            model = %s,\n", luaString(n.Model))
		ew.printf("            responseRadius = %d,\n", n.ResponseRadius)
		ew.printf("            assetId = %s,\n", luaString(n.AssetID))
		ew.printf("            spawnPosition = Vector3.new(%s, %s, %s),\n",
			luaNumber(n.SpawnPosition.X), luaNumber(n.SpawnPosition.Y), luaNumber(n.SpawnPosition.Z))
		ew.printf("            system_prompt = %s,\n", luaLongString(n.SystemPrompt))
		ew.printf("            abilities = {\n")
		for _, ab := range n.Abilities {
			ew.printf("                %s,\n", luaString(ab))
		}
		ew.printf("            },\n")
		ew.printf("            shortTermMemory = {},\n")
		ew.printf("        },\n")
	}
	ew.printf("    },\n}\n")
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
