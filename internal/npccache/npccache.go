// Package npccache keeps a per-game index of NPCs by display name for
// quick lookups by the game client.
package npccache

import (
	"errors"
	"sync"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"

	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/keys"
	"github.com/ericogr/gamedash/internal/storage"
)

var ErrNotFound = errors.New("npc not found")

type Entry = game.NPCLookup

// Loader reads the rows an index is built from.
type Loader interface {
	ListNPCs(gameID uint) ([]game.NPC, error)
	ListAssets(f storage.AssetFilter) ([]game.Asset, error)
}

type index map[string]Entry

type Cache struct {
	src   Loader
	// mu serializes builds; genMu guards gens and every Set.
	mu    sync.Mutex
	genMu sync.Mutex
	gens  map[uint]uint64
	purge uint64
	games cache.Cache[uint, index]
}

// New returns a cache whose per-game indexes expire after ttl.
func New(src Loader, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		src:   src,
		gens:  make(map[uint]uint64),
		games: cache.NewCache[uint, index]().WithTTL(ttl).WithMaxKeys(256).WithLRU(),
	}
}

// Lookup finds an NPC of a game by display name, ignoring case and
// surrounding whitespace.
func (c *Cache) Lookup(gameID uint, name string) (Entry, error) {
	idx, err := c.index(gameID)
	if err != nil {
		return Entry{}, err
	}
	e, ok := idx[keys.NameKey(name)]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Invalidate drops the index of a game. A build running concurrently
// still answers its own lookup but is not cached.
func (c *Cache) Invalidate(gameID uint) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.gens[gameID]++
	c.games.Invalidate(gameID)
}

// Purge drops every index.
func (c *Cache) Purge() {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.purge++
	c.games.Purge()
}

type generation struct{ game, purge uint64 }

func (c *Cache) generation(gameID uint) generation {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return generation{game: c.gens[gameID], purge: c.purge}
}

func (c *Cache) index(gameID uint) (index, error) {
	if idx, ok := c.games.Get(gameID); ok {
		return idx, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx, ok := c.games.Get(gameID); ok {
		return idx, nil
	}
	gen := c.generation(gameID)
	idx, err := c.build(gameID)
	if err != nil {
		return nil, err
	}
	c.genMu.Lock()
	if c.gens[gameID] == gen.game && c.purge == gen.purge {
		c.games.Set(gameID, idx, 0)
	}
	c.genMu.Unlock()
	return idx, nil
}

func (c *Cache) build(gameID uint) (index, error) {
	npcs, err := c.src.ListNPCs(gameID)
	if err != nil {
		return nil, err
	}
	assets, err := c.src.ListAssets(storage.AssetFilter{GameID: gameID})
	if err != nil {
		return nil, err
	}
	desc := make(map[string]string, len(assets))
	for _, a := range assets {
		desc[a.AssetID] = a.Description
	}
	idx := make(index, len(npcs))
	for _, n := range npcs {
		k := keys.NameKey(n.DisplayName)
		if k == "" {
			continue
		}
		// first NPC with a given name wins
		if _, dup := idx[k]; dup {
			continue
		}
		idx[k] = Entry{
			NPCID:        n.NPCID,
			DisplayName:  n.DisplayName,
			AssetID:      n.AssetID,
			SystemPrompt: n.SystemPrompt,
			Description:  desc[n.AssetID],
		}
	}
	return idx, nil
}
