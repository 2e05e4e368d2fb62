package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		ProjectFile:                 `{"name":"template","tree":{"$className":"DataModel"}}`,
		"src/init.lua":              "return {}\n",
		"src/config/GameConfig.lua": "return { debug = false }\n",
		"src/data/NPCDatabase.lua":  "return { npcs = {} }\n",
		".git/HEAD":                 "ref: refs/heads/main\n",
		"__pycache__/x.pyc":         "junk",
		"src/.DS_Store":             "junk",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestScaffoldCopiesTemplate(t *testing.T) {
	dir := t.TempDir()
	e := New(newSource(), dir)
	e.Template = writeTemplate(t)

	made, err := e.Scaffold("harbor")
	require.NoError(t, err)
	assert.True(t, made)

	root := filepath.Join(dir, "harbor")
	for _, name := range []string{"src/init.lua", "src/config/GameConfig.lua"} {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
		assert.NoError(t, err, name)
	}
	for _, name := range []string{".git", "__pycache__", "src/.DS_Store"} {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
		assert.True(t, os.IsNotExist(err), name)
	}
	raw, err := os.ReadFile(filepath.Join(root, ProjectFile))
	require.NoError(t, err)
	var project map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &project))
	assert.Equal(t, "harbor", project["name"])
	assert.Contains(t, project, "tree")

	// the export fills src/data of the scaffolded project
	_, err = e.Export(context.Background(), "harbor")
	require.NoError(t, err)
	lua, err := os.ReadFile(filepath.Join(root, "src", "data", NPCLuaFile))
	require.NoError(t, err)
	assert.Contains(t, string(lua), "Hook")
	_, err = os.Stat(filepath.Join(root, "src", "init.lua"))
	assert.NoError(t, err)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".scaffold-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestScaffoldKeepsExistingProject(t *testing.T) {
	dir := t.TempDir()
	e := New(newSource(), dir)
	e.Template = writeTemplate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "harbor"), 0o755))

	made, err := e.Scaffold("harbor")
	require.NoError(t, err)
	assert.False(t, made)
	_, err = os.Stat(filepath.Join(dir, "harbor", ProjectFile))
	assert.True(t, os.IsNotExist(err))
}

func TestScaffoldWithoutTemplate(t *testing.T) {
	dir := t.TempDir()
	e := New(newSource(), dir)
	made, err := e.Scaffold("harbor")
	require.NoError(t, err)
	assert.False(t, made)

	e.Template = t.TempDir()
	_, err = e.Scaffold("harbor")
	assert.ErrorIs(t, err, ErrBadTemplate)
	_, err = os.Stat(filepath.Join(dir, "harbor"))
	assert.True(t, os.IsNotExist(err))
}
