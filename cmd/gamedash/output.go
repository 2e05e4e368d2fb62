package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rodaine/table"

	"github.com/ericogr/gamedash/internal/dashstate"
	"github.com/ericogr/gamedash/internal/describe"
	"github.com/ericogr/gamedash/internal/export"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/legacy"
	"github.com/ericogr/gamedash/internal/npccache"
)

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// clip shortens s to n runes for table cells.
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printGames(w io.Writer, games []game.Game, current string) {
	if len(games) == 0 {
		fmt.Fprintln(w, "No games found.")
		return
	}
	t := table.New("", "ID", "Slug", "Title", "Assets", "NPCs", "Updated").WithWriter(w)
	for _, g := range games {
		mark := ""
		if g.Slug == current {
			mark = "*"
		}
		t.AddRow(mark, g.ID, g.Slug, clip(g.Title, 40), humanize.Comma(int64(g.AssetCount)), humanize.Comma(int64(g.NPCCount)), ago(g.UpdatedAt))
	}
	t.Print()
}

func printGame(w io.Writer, g *game.Game) {
	fmt.Fprintf(w, "%s (%s, id %d)\n", g.Title, g.Slug, g.ID)
	if g.Description != "" {
		fmt.Fprintln(w, g.Description)
	}
	fmt.Fprintf(w, "%s assets, %s NPCs, created %s\n",
		humanize.Comma(int64(g.AssetCount)), humanize.Comma(int64(g.NPCCount)), ago(g.CreatedAt))
}

func printAssets(w io.Writer, assets []game.Asset) {
	if len(assets) == 0 {
		fmt.Fprintln(w, "No assets found.")
		return
	}
	t := table.New("Asset ID", "Name", "Type", "NPCs", "Location", "Description", "Updated").WithWriter(w)
	for _, a := range assets {
		loc := ""
		if a.IsLocation {
			loc = "yes"
		}
		t.AddRow(a.AssetID, clip(a.Name, 32), a.Type, a.NPCCount, loc, clip(a.Description, 48), ago(a.UpdatedAt))
	}
	t.Print()
}

func printNPCs(w io.Writer, npcs []game.NPC) {
	if len(npcs) == 0 {
		fmt.Fprintln(w, "No NPCs found.")
		return
	}
	t := table.New("NPC ID", "Name", "Asset", "Radius", "Spawn", "Abilities").WithWriter(w)
	for _, n := range npcs {
		t.AddRow(n.NPCID, clip(n.DisplayName, 32), n.AssetID, n.ResponseRadius, n.SpawnPosition.String(), strings.Join(n.Abilities, ","))
	}
	t.Print()
}

func printPlayers(w io.Writer, players []game.Player) {
	if len(players) == 0 {
		fmt.Fprintln(w, "No player descriptions found.")
		return
	}
	t := table.New("Player ID", "Name", "Description", "Updated").WithWriter(w)
	for _, p := range players {
		t.AddRow(p.PlayerID, p.DisplayName, clip(p.Description, 60), ago(p.UpdatedAt))
	}
	t.Print()
}

func printLookup(w io.Writer, e *npccache.Entry) {
	t := table.New("Field", "Value").WithWriter(w)
	t.AddRow("npc_id", e.NPCID)
	t.AddRow("display_name", e.DisplayName)
	t.AddRow("asset_id", e.AssetID)
	t.AddRow("description", clip(e.Description, 80))
	t.AddRow("system_prompt", clip(e.SystemPrompt, 80))
	t.Print()
}

func printExport(w io.Writer, r *export.Result) {
	fmt.Fprintf(w, "exported %s: %s assets, %s NPCs to %s\n",
		r.Slug, humanize.Comma(int64(r.Assets)), humanize.Comma(int64(r.NPCs)), r.Dir)
}

func printImport(w io.Writer, r legacy.Report) {
	fmt.Fprintf(w, "assets: %d created, %d updated; npcs: %d created, %d updated\n",
		r.AssetsCreated, r.AssetsUpdated, r.NPCsCreated, r.NPCsUpdated)
	printFailures(w, r.Failed)
}

func printDescribe(w io.Writer, r *describe.Report) {
	fmt.Fprintf(w, "%d updated, %d skipped\n", len(r.Updated), r.Skipped)
	printFailures(w, r.Failed)
}

func printFailures(w io.Writer, failed map[string]string) {
	if len(failed) == 0 {
		return
	}
	ids := make([]string, 0, len(failed))
	for id := range failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	t := table.New("Failed", "Reason").WithWriter(w)
	for _, id := range ids {
		t.AddRow(id, failed[id])
	}
	t.Print()
}

// printSnapshot renders the current tab of a session.
func printSnapshot(w io.Writer, s dashstate.Snapshot) {
	current := ""
	if s.CurrentGame != nil {
		current = s.CurrentGame.Slug
		fmt.Fprintf(w, "game: %s (%s)\n", s.CurrentGame.Title, current)
	} else {
		fmt.Fprintln(w, "game: none selected")
	}
	fmt.Fprintf(w, "tab:  %s\n\n", s.CurrentTab)
	switch s.CurrentTab {
	case dashstate.TabGames:
		printGames(w, s.Games, current)
	case dashstate.TabAssets:
		if s.CurrentGame != nil {
			printAssets(w, s.Assets)
		}
	case dashstate.TabNPCs:
		if s.CurrentGame != nil {
			printNPCs(w, s.NPCs)
			if len(s.AssetChoices) > 0 {
				names := make([]string, 0, len(s.AssetChoices))
				for _, a := range s.AssetChoices {
					names = append(names, a.AssetID+" "+a.Name)
				}
				fmt.Fprintf(w, "\nNPC assets: %s\n", strings.Join(names, ", "))
			}
		}
	case dashstate.TabPlayers:
		printPlayers(w, s.Players)
	}
}
