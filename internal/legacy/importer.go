// Package legacy imports the JSON databases written by older tooling
// (AssetDatabase.json and NPCDatabase.json) into a game.
package legacy

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	pkgerrors "github.com/pkg/errors"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/export"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/lenient"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/service"
	"github.com/ericogr/gamedash/internal/storage"
)

// Report counts what an import changed. Failed maps a record id to the
// reason it was skipped.
type Report struct {
	AssetsCreated int               `json:"assets_created"`
	AssetsUpdated int               `json:"assets_updated"`
	NPCsCreated   int               `json:"npcs_created"`
	NPCsUpdated   int               `json:"npcs_updated"`
	Failed        map[string]string `json:"failed,omitempty"`
}

func (r *Report) fail(id string, err error) {
	if r.Failed == nil {
		r.Failed = make(map[string]string)
	}
	r.Failed[id] = err.Error()
}

// Changed reports whether anything was written.
func (r Report) Changed() bool {
	return r.AssetsCreated+r.AssetsUpdated+r.NPCsCreated+r.NPCsUpdated > 0
}

// Importer upserts legacy records through the service layer, so imported
// data passes the same validation as API requests.
type Importer struct {
	Repo storage.Repository
}

// ImportDir imports both files found in dir into the game identified by
// ref (id or slug). Assets go first so NPCs can reference them. A missing
// file is skipped; at least one must exist.
func (im *Importer) ImportDir(dir, ref string) (Report, error) {
	var rep Report
	g, err := service.ResolveGame(im.Repo, ref)
	if err != nil {
		return rep, err
	}
	assets, errA := readRecords(filepath.Join(dir, export.AssetJSONFile), "assets")
	npcs, errN := readRecords(filepath.Join(dir, export.NPCJSONFile), "npcs")
	if os.IsNotExist(pkgerrors.Cause(errA)) && os.IsNotExist(pkgerrors.Cause(errN)) {
		return rep, fmt.Errorf("no %s or %s in %s", export.AssetJSONFile, export.NPCJSONFile, dir)
	}
	for _, err := range []error{errA, errN} {
		if err != nil && !os.IsNotExist(pkgerrors.Cause(err)) {
			return rep, err
		}
	}

	for i, o := range assets {
		im.upsertAsset(&rep, g, i, o)
	}
	for i, o := range npcs {
		im.upsertNPC(&rep, g, i, o)
	}
	logging.Info("legacy import finished", logging.Fields{
		constants.LogFieldGameSlug: g.Slug,
		"assets_created":           rep.AssetsCreated,
		"assets_updated":           rep.AssetsUpdated,
		"npcs_created":             rep.NPCsCreated,
		"npcs_updated":             rep.NPCsUpdated,
		"failed":                   len(rep.Failed),
	})
	return rep, nil
}

func (im *Importer) upsertAsset(rep *Report, g *game.Game, idx int, o lenient.Object) {
	id := service.AssetIDFrom(o)
	if id == "" {
		rep.fail(fmt.Sprintf("asset #%d", idx), service.ErrAssetFieldsMissing)
		return
	}
	_, err := service.UpdateAsset(im.Repo, g.ID, id, o)
	switch {
	case err == nil:
		rep.AssetsUpdated++
		return
	case !errors.Is(err, service.ErrAssetNotFound):
		rep.fail("asset "+id, err)
		return
	}
	if _, err := service.CreateAsset(im.Repo, g.ID, o); err != nil {
		rep.fail("asset "+id, err)
		return
	}
	rep.AssetsCreated++
}

func (im *Importer) upsertNPC(rep *Report, g *game.Game, idx int, o lenient.Object) {
	id := service.NPCIDFrom(o)
	if id == "" {
		rep.fail(fmt.Sprintf("npc #%d", idx), service.ErrNPCFieldsMissing)
		return
	}
	_, err := service.UpdateNPC(im.Repo, id, g.ID, o)
	switch {
	case err == nil:
		rep.NPCsUpdated++
		return
	case !errors.Is(err, service.ErrNPCNotFound):
		rep.fail("npc "+id, err)
		return
	}
	if _, err := service.CreateNPC(im.Repo, g.ID, o); err != nil {
		rep.fail("npc "+id, err)
		return
	}
	rep.NPCsCreated++
}

// readRecords loads a file holding either {"<key>": [...]} or a bare array.
// Entries that are not objects are dropped.
func readRecords(path, key string) ([]lenient.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read %s", path)
	}
	data = bytes.TrimSpace(data)
	var raw []json.RawMessage
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &raw)
	} else {
		var root lenient.Object
		if root, err = lenient.ParseObject(data); err == nil && root[key] != nil {
			err = json.Unmarshal(root[key], &raw)
		}
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "parse %s", path)
	}
	out := make([]lenient.Object, 0, len(raw))
	for _, r := range raw {
		if o, err := lenient.ParseObject(r); err == nil {
			out = append(out, o)
		}
	}
	return out, nil
}
