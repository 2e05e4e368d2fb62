// Package dashstate tracks the dashboard selection: the current game, the
// current tab and the lists loaded for them.
package dashstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/dashclient"
	"github.com/ericogr/gamedash/internal/events"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/logging"
)

var (
	// ErrNoGameSelected is returned by operations that need a current game.
	ErrNoGameSelected = errors.New("no game selected")
	// ErrStale is returned by a load that was superseded by a later one.
	// Its results were discarded.
	ErrStale = errors.New("superseded by a newer load")
)

type Tab string

const (
	TabGames   Tab = "games"
	TabAssets  Tab = "assets"
	TabNPCs    Tab = "npcs"
	TabPlayers Tab = "players"
)

// ParseTab accepts a tab name in any case.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabGames, TabAssets, TabNPCs, TabPlayers:
		return t, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// needsGame reports whether the tab shows data of the current game.
func (t Tab) needsGame() bool { return t == TabAssets || t == TabNPCs }

// API is the part of dashclient.Client a session uses.
type API interface {
	ListGames(ctx context.Context) ([]game.Game, error)
	GetGame(ctx context.Context, ref string) (*game.Game, error)
	ListAssets(ctx context.Context, q dashclient.AssetQuery) ([]game.Asset, error)
	ListNPCs(ctx context.Context, ref string) ([]game.NPC, error)
	ListPlayers(ctx context.Context) ([]game.Player, error)

	CreateAsset(ctx context.Context, ref string, f dashclient.Fields) (*game.Asset, error)
	UpdateAsset(ctx context.Context, ref, assetID string, f dashclient.Fields) (*game.Asset, error)
	DeleteAsset(ctx context.Context, ref, assetID string, force bool) error
	CreateNPC(ctx context.Context, ref string, f dashclient.Fields) (*game.NPC, error)
	UpdateNPC(ctx context.Context, npcID string, f dashclient.Fields) (*game.NPC, error)
	DeleteNPC(ctx context.Context, npcID string) error
	UpsertPlayer(ctx context.Context, playerID, displayName, description string) (*game.Player, error)
	DeletePlayer(ctx context.Context, playerID string) error

	WatchEvents(ctx context.Context, fn func(events.Event)) error
}

var _ API = (*dashclient.Client)(nil)

// Snapshot is a copy of the session state.
type Snapshot struct {
	CurrentGame *game.Game    `json:"current_game"`
	CurrentTab  Tab           `json:"current_tab"`
	Games       []game.Game   `json:"games"`
	Assets      []game.Asset  `json:"assets"`
	NPCs        []game.NPC    `json:"npcs"`
	Players     []game.Player `json:"players"`
	// AssetChoices are the NPC-type assets offered when creating an NPC.
	AssetChoices []game.Asset `json:"asset_choices"`
	Generation   uint64       `json:"generation"`
}

// Session is safe for concurrent use. Every load takes a new generation
// and cancels the load before it; only the latest generation may commit.
type Session struct {
	api API

	mu     sync.Mutex
	st     Snapshot
	gen    uint64
	cancel context.CancelFunc
}

// New returns a session showing the games tab.
func New(api API) *Session {
	return &Session{api: api, st: Snapshot{CurrentTab: TabGames}}
}

// Snapshot returns a deep copy of the state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.st
	out.Generation = s.gen
	if s.st.CurrentGame != nil {
		g := *s.st.CurrentGame
		out.CurrentGame = &g
	}
	out.Games = append([]game.Game(nil), s.st.Games...)
	out.Assets = cloneAssets(s.st.Assets)
	out.NPCs = cloneNPCs(s.st.NPCs)
	out.Players = append([]game.Player(nil), s.st.Players...)
	out.AssetChoices = cloneAssets(s.st.AssetChoices)
	return out
}

func cloneAssets(in []game.Asset) []game.Asset {
	if in == nil {
		return nil
	}
	out := make([]game.Asset, len(in))
	for i, a := range in {
		a.Tags = append(a.Tags[:0:0], a.Tags...)
		a.Aliases = append(a.Aliases[:0:0], a.Aliases...)
		a.LocationData.Tags = append(a.LocationData.Tags[:0:0], a.LocationData.Tags...)
		a.PositionX, a.PositionY, a.PositionZ = copyFloat(a.PositionX), copyFloat(a.PositionY), copyFloat(a.PositionZ)
		a.Thumbnail = nil
		out[i] = a
	}
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneNPCs(in []game.NPC) []game.NPC {
	if in == nil {
		return nil
	}
	out := make([]game.NPC, len(in))
	for i, n := range in {
		n.Abilities = append(n.Abilities[:0:0], n.Abilities...)
		out[i] = n
	}
	return out
}

// invalidateLocked cancels the in-flight load and starts a new generation.
func (s *Session) invalidateLocked() uint64 {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	return s.gen
}

// UpdateCurrentGame makes g current. Switching to another game drops the
// lists of the previous one and supersedes in-flight loads.
func (s *Session) UpdateCurrentGame(g *game.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g != nil {
		cp := *g
		g = &cp
	}
	if !sameGame(s.st.CurrentGame, g) {
		s.invalidateLocked()
		s.st.Assets, s.st.NPCs, s.st.AssetChoices = nil, nil, nil
	}
	s.st.CurrentGame = g
}

func sameGame(a, b *game.Game) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func (s *Session) UpdateCurrentTab(t Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.CurrentTab = t
}

func (s *Session) UpdateCurrentAssets(assets []game.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Assets = cloneAssets(assets)
}

func (s *Session) UpdateCurrentNPCs(npcs []game.NPC) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.NPCs = cloneNPCs(npcs)
}

// Reset clears the current game and cached lists; the tab is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
	tab := s.st.CurrentTab
	s.st = Snapshot{CurrentTab: tab}
}

// begin starts a load generation.
func (s *Session) begin(ctx context.Context) (context.Context, uint64, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.invalidateLocked()
	lctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	cur := s.st
	if cur.CurrentGame != nil {
		g := *cur.CurrentGame
		cur.CurrentGame = &g
	}
	return lctx, gen, cur
}

// commit applies a load result when gen is still the latest generation.
func (s *Session) commit(gen uint64, apply func(*Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrStale
	}
	apply(&s.st)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}

// fail turns errors of a superseded load into ErrStale.
func (s *Session) fail(gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrStale
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return err
}

// tabData is the result of loading one tab.
type tabData struct {
	games   []game.Game
	assets  []game.Asset
	npcs    []game.NPC
	choices []game.Asset
	players []game.Player
}

func (s *Session) fetchTab(ctx context.Context, tab Tab, g *game.Game) (tabData, error) {
	var d tabData
	if tab.needsGame() && g == nil {
		return d, ErrNoGameSelected
	}
	var err error
	switch tab {
	case TabGames:
		d.games, err = s.api.ListGames(ctx)
	case TabAssets:
		d.assets, err = s.api.ListAssets(ctx, dashclient.AssetQuery{Game: g.Slug})
	case TabNPCs:
		eg, ectx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			var e error
			d.npcs, e = s.api.ListNPCs(ectx, g.Slug)
			return e
		})
		eg.Go(func() error {
			var e error
			d.choices, e = s.api.ListAssets(ectx, dashclient.AssetQuery{Game: g.Slug, Type: constants.NPCAssetType})
			return e
		})
		err = eg.Wait()
	case TabPlayers:
		d.players, err = s.api.ListPlayers(ctx)
	}
	return d, err
}

func (d tabData) apply(tab Tab, st *Snapshot) {
	switch tab {
	case TabGames:
		st.Games = d.games
		// keep the current game in sync with the list
		if st.CurrentGame != nil {
			for i := range d.games {
				if d.games[i].ID == st.CurrentGame.ID {
					g := d.games[i]
					st.CurrentGame = &g
				}
			}
		}
	case TabAssets:
		st.Assets = d.assets
	case TabNPCs:
		st.NPCs = d.npcs
		st.AssetChoices = d.choices
	case TabPlayers:
		st.Players = d.players
	}
}

// Refresh reloads the data of the current tab.
func (s *Session) Refresh(ctx context.Context) error {
	lctx, gen, cur := s.begin(ctx)
	d, err := s.fetchTab(lctx, cur.CurrentTab, cur.CurrentGame)
	if err != nil {
		return s.fail(gen, err)
	}
	return s.commit(gen, func(st *Snapshot) { d.apply(cur.CurrentTab, st) })
}

// ShowTab switches tab and loads its data. Game tabs without a current
// game load nothing and return ErrNoGameSelected.
func (s *Session) ShowTab(ctx context.Context, t Tab) error {
	s.UpdateCurrentTab(t)
	logging.Debug("tab change", logging.Fields{"tab": string(t)})
	return s.Refresh(ctx)
}

// SelectGame fetches a game by id or slug, makes it current and reloads
// the current tab for it.
func (s *Session) SelectGame(ctx context.Context, ref string) error {
	lctx, gen, cur := s.begin(ctx)
	g, err := s.api.GetGame(lctx, ref)
	if err != nil {
		return s.fail(gen, err)
	}
	d, err := s.fetchTab(lctx, cur.CurrentTab, g)
	if err != nil {
		return s.fail(gen, err)
	}
	return s.commit(gen, func(st *Snapshot) {
		if !sameGame(st.CurrentGame, g) {
			st.Assets, st.NPCs, st.AssetChoices = nil, nil, nil
		}
		st.CurrentGame = g
		d.apply(cur.CurrentTab, st)
	})
}

func (s *Session) currentSlug() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.CurrentGame == nil {
		return "", ErrNoGameSelected
	}
	return s.st.CurrentGame.Slug, nil
}

// afterMutation reloads the current tab. A stale refresh is fine: a newer
// load is already under way.
func (s *Session) afterMutation(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, ErrNoGameSelected) {
		return err
	}
	return nil
}
