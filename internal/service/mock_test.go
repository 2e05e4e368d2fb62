package service

import (
	"fmt"

	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/storage"
)

type mockRepo struct {
	games   map[uint]*game.Game
	assets  map[string]*game.Asset
	npcs    map[string]*game.NPC
	players map[string]*game.Player
	nextID  uint
	updated int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		games:   map[uint]*game.Game{},
		assets:  map[string]*game.Asset{},
		npcs:    map[string]*game.NPC{},
		players: map[string]*game.Player{},
		nextID:  1,
	}
}

func assetKey(gameID uint, assetID string) string {
	return fmt.Sprintf("%d:%s", gameID, assetID)
}

func (m *mockRepo) GetGameByID(id uint) (*game.Game, error) {
	if g, ok := m.games[id]; ok {
		c := *g
		return &c, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mockRepo) GetGameBySlug(slug string) (*game.Game, error) {
	for _, g := range m.games {
		if g.Slug == slug {
			c := *g
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *mockRepo) CreateGame(g *game.Game) error {
	g.ID = m.nextID
	m.nextID++
	c := *g
	m.games[g.ID] = &c
	return nil
}

func (m *mockRepo) UpdateGame(g *game.Game) error {
	if _, ok := m.games[g.ID]; !ok {
		return storage.ErrNotFound
	}
	c := *g
	m.games[g.ID] = &c
	m.updated++
	return nil
}

func (m *mockRepo) DeleteGame(id uint) error {
	if _, ok := m.games[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.games, id)
	return nil
}

func (m *mockRepo) GetAsset(gameID uint, assetID string) (*game.Asset, error) {
	if a, ok := m.assets[assetKey(gameID, assetID)]; ok {
		c := *a
		return &c, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mockRepo) CreateAsset(a *game.Asset) error {
	a.ID = m.nextID
	m.nextID++
	c := *a
	m.assets[assetKey(a.GameID, a.AssetID)] = &c
	return nil
}

func (m *mockRepo) UpdateAsset(a *game.Asset) error {
	c := *a
	m.assets[assetKey(a.GameID, a.AssetID)] = &c
	m.updated++
	return nil
}

func (m *mockRepo) DeleteAsset(gameID uint, assetID string) error {
	k := assetKey(gameID, assetID)
	if _, ok := m.assets[k]; !ok {
		return storage.ErrNotFound
	}
	delete(m.assets, k)
	return nil
}

func (m *mockRepo) CountNPCsForAsset(gameID uint, assetID string) (int64, error) {
	var n int64
	for _, npc := range m.npcs {
		if npc.GameID == gameID && npc.AssetID == assetID {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) GetNPC(npcID string) (*game.NPC, error) {
	if n, ok := m.npcs[npcID]; ok {
		c := *n
		return &c, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mockRepo) CreateNPC(n *game.NPC) error {
	c := *n
	m.npcs[n.NPCID] = &c
	return nil
}

func (m *mockRepo) UpdateNPC(n *game.NPC) error {
	c := *n
	m.npcs[n.NPCID] = &c
	m.updated++
	return nil
}

func (m *mockRepo) DeleteNPC(npcID string) error {
	if _, ok := m.npcs[npcID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.npcs, npcID)
	return nil
}

func (m *mockRepo) GetPlayer(playerID string) (*game.Player, error) {
	if p, ok := m.players[playerID]; ok {
		c := *p
		return &c, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mockRepo) UpsertPlayer(p *game.Player) error {
	c := *p
	m.players[p.PlayerID] = &c
	return nil
}

func (m *mockRepo) DeletePlayer(playerID string) error {
	if _, ok := m.players[playerID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.players, playerID)
	return nil
}

// racingRepo reports a unique key collision on insert, as when another
// request inserted the same row after the existence check.
type racingRepo struct {
	*mockRepo
}

func (r racingRepo) CreateAsset(a *game.Asset) error {
	return fmt.Errorf("create asset %s: %w", a.AssetID, storage.ErrDuplicate)
}

func (r racingRepo) CreateNPC(n *game.NPC) error {
	return fmt.Errorf("create npc %s: %w", n.NPCID, storage.ErrDuplicate)
}
