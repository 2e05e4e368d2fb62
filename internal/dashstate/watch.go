package dashstate

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/ericogr/gamedash/internal/events"
	"github.com/ericogr/gamedash/internal/logging"
)

// ErrStreamClosed is returned by Watch when the server ends the stream.
var ErrStreamClosed = errors.New("event stream closed")

// Affects reports whether ev changes what the session currently shows.
func (s *Session) Affects(ev events.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := ""
	if s.st.CurrentGame != nil {
		cur = s.st.CurrentGame.Slug
	}
	switch s.st.CurrentTab {
	case TabGames:
		return ev.Kind == events.KindGame || ev.Kind == events.KindAsset || ev.Kind == events.KindNPC
	case TabAssets:
		return (ev.Kind == events.KindAsset || ev.Kind == events.KindGame) && cur != "" && ev.Game == cur
	case TabNPCs:
		return (ev.Kind == events.KindNPC || ev.Kind == events.KindAsset || ev.Kind == events.KindGame) && cur != "" && ev.Game == cur
	case TabPlayers:
		return ev.Kind == events.KindPlayer
	}
	return false
}

func (s *Session) isCurrent(slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CurrentGame != nil && s.st.CurrentGame.Slug == slug
}

// Watch follows the server's change events and reloads the current tab
// whenever one affects it. Deleting the current game resets the session.
// onRefresh, when set, receives the state after every reload. Watch
// returns when ctx is cancelled or the event stream fails.
func (s *Session) Watch(ctx context.Context, onRefresh func(Snapshot)) error {
	eg, ectx := errgroup.WithContext(ctx)
	kick := make(chan struct{}, 1)

	eg.Go(func() error {
		err := s.api.WatchEvents(ectx, func(ev events.Event) {
			if ev.Kind == events.KindGame && ev.Action == events.ActionDeleted && s.isCurrent(ev.Game) {
				s.Reset()
			} else if !s.Affects(ev) {
				return
			}
			select {
			case kick <- struct{}{}:
			default:
			}
		})
		if err == nil {
			err = ErrStreamClosed
		}
		return err
	})
	eg.Go(func() error {
		for {
			select {
			case <-ectx.Done():
				return nil
			case <-kick:
			}
			err := s.Refresh(ectx)
			switch {
			case err == nil:
			case errors.Is(err, ErrStale), errors.Is(err, ErrNoGameSelected):
				continue
			case ectx.Err() != nil:
				return nil
			default:
				logging.Warn("refresh after event failed", logging.Fields{"error": err.Error()})
				continue
			}
			if onRefresh != nil {
				onRefresh(s.Snapshot())
			}
		}
	})
	err := eg.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
