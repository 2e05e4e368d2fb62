package dashstate

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ericogr/gamedash/internal/dashclient"
	"github.com/ericogr/gamedash/internal/events"
	"github.com/ericogr/gamedash/internal/game"
)

type fakeAPI struct {
	mu      sync.Mutex
	games   map[string]game.Game
	assets  map[string][]game.Asset
	npcs    map[string][]game.NPC
	players []game.Player
	calls   []string
	// gate, when set, blocks ListAssets until closed or ctx ends.
	gate   chan struct{}
	events chan events.Event
}

func newFakeAPI() *fakeAPI {
	harbor := game.Game{Title: "Harbor", Slug: "harbor"}
	harbor.ID = 1
	forest := game.Game{Title: "Forest", Slug: "forest"}
	forest.ID = 2
	return &fakeAPI{
		games: map[string]game.Game{"harbor": harbor, "forest": forest},
		assets: map[string][]game.Asset{
			"harbor": {{AssetID: "1", Name: "Dock", Type: "Model"}, {AssetID: "2", Name: "Captain", Type: "NPC"}},
			"forest": {{AssetID: "9", Name: "Tree", Type: "Model"}},
		},
		npcs: map[string][]game.NPC{
			"harbor": {{NPCID: "n1", DisplayName: "Hook", AssetID: "2"}},
		},
		players: []game.Player{{PlayerID: "7", Description: "a sailor"}},
	}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) ListGames(context.Context) ([]game.Game, error) {
	f.record("games")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]game.Game, 0, len(f.games))
	for _, g := range f.games {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeAPI) GetGame(_ context.Context, ref string) (*game.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[ref]
	if !ok {
		return nil, &dashclient.APIError{Status: 404, Message: "game not found"}
	}
	return &g, nil
}

func (f *fakeAPI) ListAssets(ctx context.Context, q dashclient.AssetQuery) ([]game.Asset, error) {
	f.record("assets:" + q.Game + ":" + q.Type)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []game.Asset
	for _, a := range f.assets[q.Game] {
		if q.Type == "" || a.Type == q.Type {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListNPCs(_ context.Context, ref string) ([]game.NPC, error) {
	f.record("npcs:" + ref)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.npcs[ref], nil
}

func (f *fakeAPI) ListPlayers(context.Context) ([]game.Player, error) {
	f.record("players")
	return f.players, nil
}

func (f *fakeAPI) CreateAsset(_ context.Context, ref string, fl dashclient.Fields) (*game.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := game.Asset{AssetID: fl["asset_id"].(string), Name: fl["name"].(string)}
	f.assets[ref] = append(f.assets[ref], a)
	return &a, nil
}

func (f *fakeAPI) UpdateAsset(_ context.Context, ref, assetID string, _ dashclient.Fields) (*game.Asset, error) {
	return &game.Asset{AssetID: assetID}, nil
}

func (f *fakeAPI) DeleteAsset(_ context.Context, ref, assetID string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !force {
		for _, n := range f.npcs[ref] {
			if n.AssetID == assetID {
				return &dashclient.APIError{Status: 409, Message: "asset in use"}
			}
		}
	}
	kept := f.assets[ref][:0]
	for _, a := range f.assets[ref] {
		if a.AssetID != assetID {
			kept = append(kept, a)
		}
	}
	f.assets[ref] = kept
	return nil
}

func (f *fakeAPI) CreateNPC(_ context.Context, ref string, fl dashclient.Fields) (*game.NPC, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := game.NPC{NPCID: "new", DisplayName: fl["display_name"].(string)}
	f.npcs[ref] = append(f.npcs[ref], n)
	return &n, nil
}

func (f *fakeAPI) UpdateNPC(_ context.Context, npcID string, _ dashclient.Fields) (*game.NPC, error) {
	return &game.NPC{NPCID: npcID}, nil
}

func (f *fakeAPI) DeleteNPC(context.Context, string) error { return nil }

func (f *fakeAPI) UpsertPlayer(_ context.Context, id, name, desc string) (*game.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := game.Player{PlayerID: id, DisplayName: name, Description: desc}
	f.players = append(f.players, p)
	return &p, nil
}

func (f *fakeAPI) DeletePlayer(context.Context, string) error { return nil }

func (f *fakeAPI) WatchEvents(ctx context.Context, fn func(events.Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-f.events:
			fn(ev)
		}
	}
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab(" NPCs ")
	require.NoError(t, err)
	assert.Equal(t, TabNPCs, tab)
	_, err = ParseTab("battles")
	assert.Error(t, err)
}

func TestShowTabWithoutGame(t *testing.T) {
	api := newFakeAPI()
	s := New(api)

	require.NoError(t, s.ShowTab(context.Background(), TabGames))
	assert.Len(t, s.Snapshot().Games, 2)

	err := s.ShowTab(context.Background(), TabAssets)
	assert.ErrorIs(t, err, ErrNoGameSelected)
	snap := s.Snapshot()
	assert.Equal(t, TabAssets, snap.CurrentTab)
	assert.Empty(t, snap.Assets)
	assert.NotContains(t, api.calls, "assets::")
}

func TestSelectGameLoadsCurrentTab(t *testing.T) {
	s := New(newFakeAPI())
	ctx := context.Background()
	s.UpdateCurrentTab(TabNPCs)

	require.NoError(t, s.SelectGame(ctx, "harbor"))
	snap := s.Snapshot()
	require.NotNil(t, snap.CurrentGame)
	assert.Equal(t, "harbor", snap.CurrentGame.Slug)
	require.Len(t, snap.NPCs, 1)
	require.Len(t, snap.AssetChoices, 1)
	assert.Equal(t, "Captain", snap.AssetChoices[0].Name)

	require.NoError(t, s.ShowTab(ctx, TabAssets))
	assert.Len(t, s.Snapshot().Assets, 2)

	// switching game drops the lists of the previous one
	require.NoError(t, s.SelectGame(ctx, "forest"))
	snap = s.Snapshot()
	assert.Equal(t, "forest", snap.CurrentGame.Slug)
	require.Len(t, snap.Assets, 1)
	assert.Empty(t, snap.NPCs)
	assert.Empty(t, snap.AssetChoices)
}

func TestSelectUnknownGameKeepsState(t *testing.T) {
	s := New(newFakeAPI())
	require.NoError(t, s.SelectGame(context.Background(), "harbor"))
	err := s.SelectGame(context.Background(), "missing")
	var apiErr *dashclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "harbor", s.Snapshot().CurrentGame.Slug)
}

func TestResetKeepsTab(t *testing.T) {
	s := New(newFakeAPI())
	ctx := context.Background()
	require.NoError(t, s.SelectGame(ctx, "harbor"))
	require.NoError(t, s.ShowTab(ctx, TabAssets))

	s.Reset()
	snap := s.Snapshot()
	assert.Nil(t, snap.CurrentGame)
	assert.Empty(t, snap.Assets)
	assert.Equal(t, TabAssets, snap.CurrentTab)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(newFakeAPI())
	s.UpdateCurrentAssets([]game.Asset{{AssetID: "1", Tags: []string{"a"}}})
	snap := s.Snapshot()
	snap.Assets[0].Tags[0] = "changed"
	assert.Equal(t, "a", s.Snapshot().Assets[0].Tags[0])
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()
	require.NoError(t, s.SelectGame(ctx, "harbor"))
	s.UpdateCurrentTab(TabAssets)

	api.gate = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- s.Refresh(ctx) }()

	// wait until the first load is blocked in ListAssets
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.calls) > 0 && api.calls[len(api.calls)-1] == "assets:harbor:"
	}, time.Second, 5*time.Millisecond)

	// a newer load supersedes and cancels the blocked one
	s.UpdateCurrentGame(&game.Game{Model: game.Model{ID: 2}, Slug: "forest"})
	assert.ErrorIs(t, <-done, ErrStale)

	close(api.gate)
	require.NoError(t, s.Refresh(ctx))
	snap := s.Snapshot()
	assert.Equal(t, "forest", snap.CurrentGame.Slug)
	require.Len(t, snap.Assets, 1)
	assert.Equal(t, "Tree", snap.Assets[0].Name)
}

func TestMutationsReload(t *testing.T) {
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()

	_, err := s.CreateNPC(ctx, dashclient.Fields{"display_name": "Smee"})
	assert.ErrorIs(t, err, ErrNoGameSelected)

	require.NoError(t, s.SelectGame(ctx, "harbor"))
	require.NoError(t, s.ShowTab(ctx, TabNPCs))
	_, err = s.CreateNPC(ctx, dashclient.Fields{"display_name": "Smee", "asset_id": "2"})
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().NPCs, 2)

	require.NoError(t, s.ShowTab(ctx, TabAssets))
	var apiErr *dashclient.APIError
	require.ErrorAs(t, s.DeleteAsset(ctx, "2", false), &apiErr)
	assert.Equal(t, 409, apiErr.Status)
	require.NoError(t, s.DeleteAsset(ctx, "2", true))
	assert.Len(t, s.Snapshot().Assets, 1)

	_, err = s.CreateAsset(ctx, dashclient.Fields{"asset_id": "3", "name": "Crate"})
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Assets, 2)

	require.NoError(t, s.ShowTab(ctx, TabPlayers))
	_, err = s.SetPlayer(ctx, "8", "Bob", "a pirate")
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Players, 2)
}

func TestAffects(t *testing.T) {
	s := New(newFakeAPI())
	ctx := context.Background()
	require.NoError(t, s.SelectGame(ctx, "harbor"))

	s.UpdateCurrentTab(TabAssets)
	assert.True(t, s.Affects(events.Event{Kind: events.KindAsset, Game: "harbor"}))
	assert.False(t, s.Affects(events.Event{Kind: events.KindAsset, Game: "forest"}))
	assert.False(t, s.Affects(events.Event{Kind: events.KindPlayer}))

	s.UpdateCurrentTab(TabPlayers)
	assert.True(t, s.Affects(events.Event{Kind: events.KindPlayer}))
	assert.False(t, s.Affects(events.Event{Kind: events.KindExport, Game: "harbor"}))
}

func TestWatchRefreshesAndResets(t *testing.T) {
	defer goleak.VerifyNone(t)
	api := newFakeAPI()
	api.events = make(chan events.Event)
	s := New(api)
	require.NoError(t, s.SelectGame(context.Background(), "harbor"))
	require.NoError(t, s.ShowTab(context.Background(), TabAssets))

	ctx, cancel := context.WithCancel(context.Background())
	refreshed := make(chan Snapshot, 4)
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, func(snap Snapshot) { refreshed <- snap }) }()

	api.mu.Lock()
	api.assets["harbor"] = append(api.assets["harbor"], game.Asset{AssetID: "5", Name: "Barrel"})
	api.mu.Unlock()
	api.events <- events.Event{Kind: events.KindAsset, Action: events.ActionCreated, Game: "harbor"}

	select {
	case snap := <-refreshed:
		assert.Len(t, snap.Assets, 3)
	case <-time.After(time.Second):
		t.Fatalf("no refresh after event")
	}

	api.events <- events.Event{Kind: events.KindGame, Action: events.ActionDeleted, Game: "harbor"}
	require.Eventually(t, func() bool { return s.Snapshot().CurrentGame == nil }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := FileStore{Path: filepath.Join(t.TempDir(), "nested", "state.yaml")}
	p, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, Persisted{}, p)

	s := New(newFakeAPI())
	ctx := context.Background()
	require.NoError(t, s.SelectGame(ctx, "harbor"))
	s.UpdateCurrentTab(TabNPCs)
	require.NoError(t, fs.Save(s.Persisted()))

	p, err = fs.Load()
	require.NoError(t, err)
	assert.Equal(t, Persisted{Game: "harbor", Tab: TabNPCs}, p)

	restored := New(newFakeAPI())
	require.NoError(t, restored.Restore(ctx, p))
	snap := restored.Snapshot()
	assert.Equal(t, "harbor", snap.CurrentGame.Slug)
	assert.Len(t, snap.NPCs, 1)
}

func TestRestoreForgetsMissingGame(t *testing.T) {
	s := New(newFakeAPI())
	require.NoError(t, s.Restore(context.Background(), Persisted{Game: "gone", Tab: TabGames}))
	snap := s.Snapshot()
	assert.Nil(t, snap.CurrentGame)
	assert.Len(t, snap.Games, 2)
}
