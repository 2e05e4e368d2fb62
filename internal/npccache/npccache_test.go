package npccache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/storage"
)

type fakeLoader struct {
	npcs   []game.NPC
	assets []game.Asset
	builds int
}

func (f *fakeLoader) ListNPCs(uint) ([]game.NPC, error) {
	f.builds++
	return f.npcs, nil
}

func (f *fakeLoader) ListAssets(storage.AssetFilter) ([]game.Asset, error) { return f.assets, nil }

func TestLookupCaseInsensitive(t *testing.T) {
	src := &fakeLoader{
		npcs:   []game.NPC{{NPCID: "a", DisplayName: "Old  Pete", AssetID: "10", SystemPrompt: "grumpy"}},
		assets: []game.Asset{{AssetID: "10", Description: "a fisherman"}},
	}
	c := New(src, time.Minute)

	e, err := c.Lookup(1, "  old pete ")
	require.NoError(t, err)
	assert.Equal(t, Entry{NPCID: "a", DisplayName: "Old  Pete", AssetID: "10", SystemPrompt: "grumpy", Description: "a fisherman"}, e)

	_, err = c.Lookup(1, "OLD PETE")
	require.NoError(t, err)
	assert.Equal(t, 1, src.builds)

	_, err = c.Lookup(1, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidateRebuilds(t *testing.T) {
	src := &fakeLoader{npcs: []game.NPC{{NPCID: "a", DisplayName: "Pete"}}}
	c := New(src, time.Minute)
	_, err := c.Lookup(1, "pete")
	require.NoError(t, err)

	src.npcs = append(src.npcs, game.NPC{NPCID: "b", DisplayName: "Mary"})
	_, err = c.Lookup(1, "mary")
	assert.ErrorIs(t, err, ErrNotFound)

	c.Invalidate(1)
	e, err := c.Lookup(1, "mary")
	require.NoError(t, err)
	assert.Equal(t, "b", e.NPCID)
	assert.Equal(t, 2, src.builds)
}

func TestFirstNameWins(t *testing.T) {
	src := &fakeLoader{npcs: []game.NPC{{NPCID: "a", DisplayName: "Guard"}, {NPCID: "b", DisplayName: "guard"}}}
	e, err := New(src, time.Minute).Lookup(7, "GUARD")
	require.NoError(t, err)
	assert.Equal(t, "a", e.NPCID)
}

type gatedLoader struct {
	mu      sync.Mutex
	npcs    []game.NPC
	entered chan struct{}
	release chan struct{}
}

func (g *gatedLoader) ListNPCs(uint) ([]game.NPC, error) {
	g.mu.Lock()
	npcs := append([]game.NPC(nil), g.npcs...)
	entered, release := g.entered, g.release
	g.entered, g.release = nil, nil
	g.mu.Unlock()
	if entered != nil {
		close(entered)
		<-release
	}
	return npcs, nil
}

func (g *gatedLoader) ListAssets(storage.AssetFilter) ([]game.Asset, error) { return nil, nil }

func TestInvalidateDuringBuildIsNotLost(t *testing.T) {
	src := &gatedLoader{
		npcs:    []game.NPC{{NPCID: "a", DisplayName: "Pete"}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	entered, release := src.entered, src.release
	c := New(src, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := c.Lookup(1, "pete")
		done <- err
	}()
	<-entered

	// rename lands while the build holds the old rows
	src.mu.Lock()
	src.npcs = []game.NPC{{NPCID: "a", DisplayName: "Peter"}}
	src.mu.Unlock()
	c.Invalidate(1)
	close(release)
	require.NoError(t, <-done)

	e, err := c.Lookup(1, "peter")
	require.NoError(t, err)
	assert.Equal(t, "a", e.NPCID)
	_, err = c.Lookup(1, "pete")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurgeDuringBuildIsNotLost(t *testing.T) {
	src := &gatedLoader{
		npcs:    []game.NPC{{NPCID: "a", DisplayName: "Pete"}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	entered, release := src.entered, src.release
	c := New(src, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := c.Lookup(1, "pete")
		done <- err
	}()
	<-entered
	src.mu.Lock()
	src.npcs = nil
	src.mu.Unlock()
	c.Purge()
	close(release)
	require.NoError(t, <-done)

	_, err := c.Lookup(1, "pete")
	assert.ErrorIs(t, err, ErrNotFound)
}
