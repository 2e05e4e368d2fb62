package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/dedupe"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/storage"
)

// ErrRemoved is returned by a run whose game directory was removed while
// it was loading.
var ErrRemoved = errors.New("export directory removed during export")

// Source is the read access an export needs.
type Source interface {
	GetGameBySlug(slug string) (*game.Game, error)
	ListAssets(f storage.AssetFilter) ([]game.Asset, error)
	ListNPCs(gameID uint) ([]game.NPC, error)
}

type Result = game.ExportResult

// Exporter writes the per-game data files consumed by the game client.
type Exporter struct {
	src Source
	dir string

	mu      sync.Mutex
	running map[string]bool
	pending map[string]bool
	epochs  map[string]uint64
	wg      sync.WaitGroup

	// fsMu orders the write phase of runs against Remove.
	fsMu sync.Mutex

	// OnExport, when set, is called after every scheduled run.
	OnExport func(slug string, res Result, err error)
	// Template is the project directory Scaffold copies for new games.
	Template string
}

func New(src Source, dir string) *Exporter {
	return &Exporter{
		src:     src,
		dir:     dir,
		running: make(map[string]bool),
		pending: make(map[string]bool),
		epochs:  make(map[string]uint64),
	}
}

// GameDir returns <dir>/<slug>.
func (e *Exporter) GameDir(slug string) string {
	return filepath.Join(e.dir, filepath.Base(slug))
}

// Export runs an export for slug now. Concurrent calls for the same slug
// share one run.
func (e *Exporter) Export(ctx context.Context, slug string) (Result, error) {
	ch := dedupe.ExportGroup.DoChan(e.dir+"|"+slug, func() (interface{}, error) {
		return e.run(slug)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Schedule queues an export in the background. While a run for slug is in
// flight further calls collapse into a single rerun.
func (e *Exporter) Schedule(slug string) {
	if strings.TrimSpace(slug) == "" {
		return
	}
	e.mu.Lock()
	if e.running[slug] {
		e.pending[slug] = true
		e.mu.Unlock()
		return
	}
	e.running[slug] = true
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		for {
			res, err := e.Export(context.Background(), slug)
			if errors.Is(err, ErrRemoved) {
				logging.Debug("game export dropped", logging.Fields{constants.LogFieldGameSlug: slug})
			} else if err != nil {
				logging.Error("game export failed", err, logging.Fields{constants.LogFieldGameSlug: slug})
			} else {
				logging.Debug("game exported", logging.Fields{constants.LogFieldGameSlug: slug, "assets": res.Assets, "npcs": res.NPCs})
			}
			if e.OnExport != nil {
				e.OnExport(slug, res, err)
			}
			e.mu.Lock()
			if !e.pending[slug] {
				delete(e.running, slug)
				e.mu.Unlock()
				return
			}
			delete(e.pending, slug)
			e.mu.Unlock()
		}
	}()
}

// Wait blocks until all scheduled runs have finished.
func (e *Exporter) Wait() {
	e.wg.Wait()
}

// Remove deletes the exported directory of a game. Runs already loading
// the game are cancelled before they write and a queued rerun is dropped.
func (e *Exporter) Remove(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return nil
	}
	e.mu.Lock()
	e.epochs[slug]++
	delete(e.pending, slug)
	e.mu.Unlock()

	e.fsMu.Lock()
	defer e.fsMu.Unlock()
	return errors.Wrapf(os.RemoveAll(e.GameDir(slug)), "remove export dir for %s", slug)
}

func (e *Exporter) epoch(slug string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.epochs[slug]
}

func (e *Exporter) run(slug string) (Result, error) {
	start := e.epoch(slug)
	g, err := e.src.GetGameBySlug(slug)
	if err != nil {
		return Result{}, errors.Wrapf(err, "load game %s", slug)
	}
	assets, err := e.src.ListAssets(storage.AssetFilter{GameID: g.ID})
	if err != nil {
		return Result{}, err
	}
	npcs, err := e.src.ListNPCs(g.ID)
	if err != nil {
		return Result{}, err
	}

	e.fsMu.Lock()
	defer e.fsMu.Unlock()
	if e.epoch(slug) != start {
		return Result{}, errors.Wrapf(ErrRemoved, "export %s", slug)
	}
	dataDir := filepath.Join(e.GameDir(slug), filepath.FromSlash(constants.ExportDataSubdir))
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Result{}, errors.Wrapf(err, "create %s", dataDir)
	}

	ar := assetRecords(assets)
	nr := npcRecords(npcs)
	files := map[string]func(*bytes.Buffer) error{
		AssetJSONFile: func(b *bytes.Buffer) error { return writeJSON(b, AssetDatabase{Assets: ar}) },
		AssetLuaFile:  func(b *bytes.Buffer) error { return WriteAssetLua(b, ar) },
		NPCJSONFile:   func(b *bytes.Buffer) error { return writeJSON(b, NPCDatabase{NPCs: nr}) },
		NPCLuaFile:    func(b *bytes.Buffer) error { return WriteNPCLua(b, nr) },
	}
	for name, render := range files {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			return Result{}, errors.Wrapf(err, "render %s", name)
		}
		if err := writeAtomic(filepath.Join(dataDir, name), buf.Bytes()); err != nil {
			return Result{}, err
		}
	}
	return Result{
		Slug:     g.Slug,
		Dir:      dataDir,
		Assets:   len(ar),
		NPCs:     len(nr),
		Exported: time.Now().UTC(),
	}, nil
}

func writeJSON(b *bytes.Buffer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b.Write(out)
	b.WriteByte('\n')
	return nil
}

// writeAtomic replaces path so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "chmod %s", path)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "rename into %s", path)
}
