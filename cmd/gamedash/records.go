package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/dashclient"
	"github.com/ericogr/gamedash/internal/describe"
	"github.com/ericogr/gamedash/internal/game"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List and manage assets of the selected game",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ref, err := gameRef(cmd)
		if err != nil {
			return err
		}
		typ, _ := cmd.Flags().GetString("type")
		c, err := newClient()
		if err != nil {
			return err
		}
		assets, err := c.ListAssets(cmd.Context(), dashclient.AssetQuery{Game: ref, Type: typ})
		if err != nil {
			return err
		}
		printAssets(cmd.OutOrStdout(), assets)
		return nil
	},
}

var assetsDeleteCmd = &cobra.Command{
	Use:   "delete <asset-id>",
	Short: "Delete an asset",
	Long:  "Delete an asset. Assets used by NPCs are kept unless --force is given.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := gameRef(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.DeleteAsset(cmd.Context(), ref, args[0], force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted asset %s\n", args[0])
		return nil
	},
}

var assetsDescribeCmd = &cobra.Command{
	Use:   "describe [asset-id]",
	Short: "Generate asset descriptions from their thumbnails",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := gameRef(cmd)
		if err != nil {
			return err
		}
		var opts describe.Options
		opts.Overwrite, _ = cmd.Flags().GetBool("overwrite")
		opts.OnlyEmpty, _ = cmd.Flags().GetBool("only-empty")
		if len(args) == 1 {
			opts.SingleAsset = args[0]
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		rep, err := c.DescribeAssets(cmd.Context(), ref, opts)
		if err != nil {
			return err
		}
		printDescribe(cmd.OutOrStdout(), rep)
		return nil
	},
}

var npcsCmd = &cobra.Command{
	Use:   "npcs",
	Short: "List and manage NPCs of the selected game",
}

var npcsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List NPCs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ref, err := gameRef(cmd)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		npcs, err := c.ListNPCs(cmd.Context(), ref)
		if err != nil {
			return err
		}
		printNPCs(cmd.OutOrStdout(), npcs)
		return nil
	},
}

var npcsCreateCmd = &cobra.Command{
	Use:   "create <display-name> <asset-id>",
	Short: "Create an NPC from an asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := gameRef(cmd)
		if err != nil {
			return err
		}
		f := dashclient.Fields{"display_name": args[0], "asset_id": args[1]}
		flags := cmd.Flags()
		if flags.Changed("prompt") {
			f["system_prompt"], _ = flags.GetString("prompt")
		}
		if flags.Changed("radius") {
			f["response_radius"], _ = flags.GetInt("radius")
		}
		if flags.Changed("spawn") {
			spawn, _ := flags.GetString("spawn")
			f["spawn_position"] = "[" + spawn + "]"
		}
		if flags.Changed("abilities") {
			f["abilities"], _ = flags.GetStringSlice("abilities")
		}
		if flags.Changed("model") {
			f["model"], _ = flags.GetString("model")
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		n, err := c.CreateNPC(cmd.Context(), ref, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created NPC %s (%s)\n", n.DisplayName, n.NPCID)
		return nil
	},
}

var npcsDeleteCmd = &cobra.Command{
	Use:   "delete <npc-id>",
	Short: "Delete an NPC",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.DeleteNPC(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted NPC %s\n", args[0])
		return nil
	},
}

var npcsLookupCmd = &cobra.Command{
	Use:   "lookup <display-name>",
	Short: "Resolve an NPC by display name the way the game does",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := gameRef(cmd)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		e, err := c.LookupNPC(cmd.Context(), ref, args[0])
		if err != nil {
			return err
		}
		printLookup(cmd.OutOrStdout(), e)
		return nil
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List and manage player descriptions",
}

var playersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List player descriptions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		players, err := c.ListPlayers(cmd.Context())
		if err != nil {
			return err
		}
		printPlayers(cmd.OutOrStdout(), players)
		return nil
	},
}

var playersSetCmd = &cobra.Command{
	Use:   "set <player-id> <description>",
	Short: "Create or replace a player description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		c, err := newClient()
		if err != nil {
			return err
		}
		p, err := c.UpsertPlayer(cmd.Context(), args[0], name, args[1])
		if err != nil {
			return err
		}
		printPlayers(cmd.OutOrStdout(), []game.Player{*p})
		return nil
	},
}

var playersDeleteCmd = &cobra.Command{
	Use:   "delete <player-id>",
	Short: "Delete a player description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.DeletePlayer(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted player %s\n", args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{assetsListCmd, assetsDeleteCmd, assetsDescribeCmd, npcsListCmd, npcsCreateCmd, npcsLookupCmd} {
		c.Flags().String("game", "", "game id or slug (default: selected game)")
	}
	assetsListCmd.Flags().String("type", "", "only assets of this type, e.g. "+constants.NPCAssetType)
	assetsDeleteCmd.Flags().Bool("force", false, "delete even when NPCs use the asset")
	assetsDescribeCmd.Flags().Bool("overwrite", false, "replace existing descriptions")
	assetsDescribeCmd.Flags().Bool("only-empty", false, "only describe assets without a description")
	assetsCmd.AddCommand(assetsListCmd, assetsDeleteCmd, assetsDescribeCmd)

	npcsCreateCmd.Flags().String("prompt", "", "system prompt")
	npcsCreateCmd.Flags().Int("radius", constants.DefaultResponseRange, "response radius in studs")
	npcsCreateCmd.Flags().String("spawn", "", "spawn position as x,y,z")
	npcsCreateCmd.Flags().StringSlice("abilities", nil, "abilities")
	npcsCreateCmd.Flags().String("model", "", "model name (default: asset name)")
	npcsCmd.AddCommand(npcsListCmd, npcsCreateCmd, npcsDeleteCmd, npcsLookupCmd)

	playersSetCmd.Flags().String("name", "", "display name")
	playersCmd.AddCommand(playersListCmd, playersSetCmd, playersDeleteCmd)
}
