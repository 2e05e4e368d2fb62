package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericogr/gamedash/internal/api"
	"github.com/ericogr/gamedash/internal/legacy"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/version"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import AssetDatabase.json and NPCDatabase.json into a game",
	Long: `Import the legacy JSON databases from --dir into the game --game,
writing directly to the configured database. Records are upserted by
asset id and NPC id. With --watch the import reruns whenever either file
changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		watch, _ := cmd.Flags().GetBool("watch")
		ref, err := gameRef(cmd)
		if err != nil {
			return err
		}
		cfg := loadConfigOrExit(configPath)
		defer logging.Sync()
		db, repo := openDatabaseOrExit(cfg)
		defer closeDatabase(db)

		im := &legacy.Importer{Repo: repo}
		run := func() error {
			rep, err := im.ImportDir(dir, ref)
			if err != nil {
				return err
			}
			printImport(cmd.OutOrStdout(), rep)
			return nil
		}
		if err := run(); err != nil {
			return err
		}
		if !watch {
			return nil
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", dir)
		err = legacy.Watch(ctx, dir, func() {
			if err := run(); err != nil {
				logging.Error("legacy import failed", err, logging.Fields{"dir": dir})
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue an API token signed with the configured secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfigOrExit(configPath)
		if cfg.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is not configured")
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			ttl = cfg.TokenTTL
		}
		tok, err := api.IssueToken([]byte(cfg.JWTSecret), args[0], ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print client and server versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "client:", version.Get().String())
		if local, _ := cmd.Flags().GetBool("client"); local {
			return nil
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		info, err := c.Version(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "server:", info.String())
		return nil
	},
}

func init() {
	importCmd.Flags().String("game", "", "game id or slug (default: selected game)")
	importCmd.Flags().String("dir", ".", "directory holding the JSON databases")
	importCmd.Flags().Bool("watch", false, "re-import when the files change")

	tokenCmd.Flags().Duration("ttl", 0, "token lifetime (default: auth.token_ttl)")

	versionCmd.Flags().Bool("client", false, "print the client version only")
}
