package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/version"
)

// Flags shared by every command.
var (
	configPath string
	serverURL  string
	apiToken   string
	statePath  string
)

var rootCmd = &cobra.Command{
	Use:   "gamedash",
	Short: "Game dashboard server and client",
	Long: `gamedash manages the games, assets, NPCs and player descriptions of
Roblox experiences.

Run "gamedash serve" to start the dashboard API. The other commands talk
to a running server at --server (or GAMEDASH_URL).`,
	Version:       version.Get().String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", envOr(constants.EnvConfigPath, constants.DefaultConfigPath), "server configuration file")
	pf.StringVar(&serverURL, "server", envOr(constants.EnvServerURL, constants.DefaultServerURL), "dashboard server URL")
	pf.StringVar(&apiToken, "token", os.Getenv(constants.EnvToken), "API token")
	pf.StringVar(&statePath, "state", "", "client state file (default: user config dir)")

	rootCmd.AddCommand(serveCmd, importCmd, tokenCmd, versionCmd)
	rootCmd.AddCommand(gamesCmd, useCmd, statusCmd, assetsCmd, npcsCmd, playersCmd, watchCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
