package legacy

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/ericogr/gamedash/internal/export"
	"github.com/ericogr/gamedash/internal/logging"
)

// settle is how long the files must stay quiet before fn runs; editors
// and exporters often write in several steps.
var settle = 300 * time.Millisecond

func watched(name string) bool {
	switch filepath.Base(name) {
	case export.AssetJSONFile, export.NPCJSONFile:
		return true
	}
	return false
}

// Watch calls fn after either legacy database file in dir is created,
// written or renamed into place. Bursts of events collapse into one call.
// It returns when ctx is cancelled.
func Watch(ctx context.Context, dir string, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()
	// watch the directory, not the files: atomic writes replace the inode
	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}

	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched(ev.Name) || !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			logging.Debug("legacy file changed", logging.Fields{"file": ev.Name, "op": ev.Op.String()})
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("legacy watcher error", logging.Fields{"error": err.Error()})
		case <-timer.C:
			fn()
		}
	}
}
