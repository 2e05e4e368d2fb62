package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericogr/gamedash/internal/dashclient"
	"github.com/ericogr/gamedash/internal/dashstate"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List and manage games",
}

var gamesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List games",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		games, err := c.ListGames(cmd.Context())
		if err != nil {
			return err
		}
		p, _ := stateStore().Load()
		printGames(cmd.OutOrStdout(), games, p.Game)
		return nil
	},
}

var gamesCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetString("description")
		g, err := c.CreateGame(cmd.Context(), args[0], desc)
		if err != nil {
			return err
		}
		printGame(cmd.OutOrStdout(), g)
		return nil
	},
}

var gamesUpdateCmd = &cobra.Command{
	Use:   "update <game>",
	Short: "Change the title or description of a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := dashclient.Fields{}
		if cmd.Flags().Changed("title") {
			f["title"], _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("description") {
			f["description"], _ = cmd.Flags().GetString("description")
		}
		if len(f) == 0 {
			return errors.New("nothing to update: pass --title or --description")
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		g, err := c.UpdateGame(cmd.Context(), args[0], f)
		if err != nil {
			return err
		}
		printGame(cmd.OutOrStdout(), g)
		return nil
	},
}

var gamesDeleteCmd = &cobra.Command{
	Use:   "delete <game>",
	Short: "Delete a game with its assets and NPCs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		g, err := c.GetGame(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := c.DeleteGame(cmd.Context(), args[0]); err != nil {
			return err
		}
		// forget the selection when it pointed at the deleted game
		store := stateStore()
		if p, err := store.Load(); err == nil && p.Game == g.Slug {
			p.Game = ""
			if err := store.Save(p); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", g.Slug)
		return nil
	},
}

var gamesExportCmd = &cobra.Command{
	Use:   "export [game]",
	Short: "Write the game's data files now",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := argOrSelected(cmd, args)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.ExportGame(cmd.Context(), ref)
		if err != nil {
			return err
		}
		printExport(cmd.OutOrStdout(), res)
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use <game>",
	Short: "Select the game later commands act on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := session(cmd.Context())
		if err != nil {
			return err
		}
		if err := s.SelectGame(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := stateStore().Save(s.Persisted()); err != nil {
			return err
		}
		printGame(cmd.OutOrStdout(), s.Snapshot().CurrentGame)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [tab]",
	Short: "Show the selected game and a tab (games, assets, npcs, players)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, _, err := session(ctx)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			tab, err := dashstate.ParseTab(args[0])
			if err != nil {
				return err
			}
			if err := s.ShowTab(ctx, tab); err != nil && !errors.Is(err, dashstate.ErrNoGameSelected) {
				return err
			}
			if err := stateStore().Save(s.Persisted()); err != nil {
				return err
			}
		}
		printSnapshot(cmd.OutOrStdout(), s.Snapshot())
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow server changes and reprint the current tab",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		s, _, err := session(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printSnapshot(out, s.Snapshot())
		err = s.Watch(ctx, func(snap dashstate.Snapshot) {
			fmt.Fprintln(out)
			printSnapshot(out, snap)
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

// argOrSelected returns args[0] or the selected game.
func argOrSelected(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return gameRef(cmd)
}

func init() {
	gamesCreateCmd.Flags().String("description", "", "game description")
	gamesUpdateCmd.Flags().String("title", "", "new title")
	gamesUpdateCmd.Flags().String("description", "", "new description")
	gamesCmd.AddCommand(gamesListCmd, gamesCreateCmd, gamesUpdateCmd, gamesDeleteCmd, gamesExportCmd)
}
