package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/gamedash/internal/api"
	"github.com/ericogr/gamedash/internal/dashclient"
	"github.com/ericogr/gamedash/internal/dashstate"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/storage"
)

type cli struct {
	url   string
	state string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := storage.OpenAndMigrate(":memory:", &game.Game{Title: "Default Game"})
	require.NoError(t, err)
	h := api.NewGameHandler(api.Deps{Repo: storage.NewSQLiteRepository(db)})
	srv := httptest.NewServer(api.NewRouter(h, api.RouterOptions{}))
	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &cli{url: srv.URL, state: filepath.Join(t.TempDir(), "state.yaml")}
}

func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--server", c.url, "--state", c.state, "--token", ""}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestGameSelectionFlow(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "games", "create", "Harbor Town", "--description", "docks")
	assert.Contains(t, out, "harbor-town")

	_, err := c.run(t, "npcs", "list")
	assert.ErrorIs(t, err, dashstate.ErrNoGameSelected)

	c.mustRun(t, "use", "harbor-town")
	p, err := dashstate.FileStore{Path: c.state}.Load()
	require.NoError(t, err)
	assert.Equal(t, "harbor-town", p.Game)

	client, err := dashclient.New(c.url, "")
	require.NoError(t, err)
	_, err = client.CreateAsset(context.Background(), "harbor-town", dashclient.Fields{"asset_id": "100", "name": "Captain", "type": "NPC"})
	require.NoError(t, err)

	out = c.mustRun(t, "npcs", "create", "Hook", "100", "--spawn", "1,2,3", "--abilities", "chat,trade")
	assert.Contains(t, out, "created NPC Hook")

	out = c.mustRun(t, "status", "npcs")
	assert.Contains(t, out, "tab:  npcs")
	assert.Contains(t, out, "Hook")
	assert.Contains(t, out, "(1, 2, 3)")
	assert.Contains(t, out, "chat,trade")
	assert.Contains(t, out, "100 Captain")

	out = c.mustRun(t, "games", "list")
	assert.Contains(t, out, "*")
	assert.Contains(t, out, "harbor-town")

	_, err = c.run(t, "assets", "delete", "100")
	var apiErr *dashclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)

	c.mustRun(t, "games", "delete", "harbor-town")
	p, err = dashstate.FileStore{Path: c.state}.Load()
	require.NoError(t, err)
	assert.Empty(t, p.Game)
}

func TestPlayersCommands(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "players", "set", "42", "a tall sailor", "--name", "Bob")
	out := c.mustRun(t, "players", "list")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "a tall sailor")

	c.mustRun(t, "players", "delete", "42")
	out = c.mustRun(t, "players", "list")
	assert.Contains(t, out, "No player descriptions found.")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "a b", clip("a\n  b", 10))
	assert.Equal(t, "abcd…", clip("abcdefgh", 5))
}
