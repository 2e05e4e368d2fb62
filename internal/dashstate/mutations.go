package dashstate

import (
	"context"

	"github.com/ericogr/gamedash/internal/dashclient"
	"github.com/ericogr/gamedash/internal/game"
)

// Mutations act on the current game and reload the current tab once the
// server accepted them.

func (s *Session) CreateAsset(ctx context.Context, f dashclient.Fields) (*game.Asset, error) {
	slug, err := s.currentSlug()
	if err != nil {
		return nil, err
	}
	a, err := s.api.CreateAsset(ctx, slug, f)
	if err != nil {
		return nil, err
	}
	return a, s.afterMutation(ctx)
}

func (s *Session) UpdateAsset(ctx context.Context, assetID string, f dashclient.Fields) (*game.Asset, error) {
	slug, err := s.currentSlug()
	if err != nil {
		return nil, err
	}
	a, err := s.api.UpdateAsset(ctx, slug, assetID, f)
	if err != nil {
		return nil, err
	}
	return a, s.afterMutation(ctx)
}

// DeleteAsset removes an asset of the current game. Without force the
// server refuses assets still used by NPCs.
func (s *Session) DeleteAsset(ctx context.Context, assetID string, force bool) error {
	slug, err := s.currentSlug()
	if err != nil {
		return err
	}
	if err := s.api.DeleteAsset(ctx, slug, assetID, force); err != nil {
		return err
	}
	return s.afterMutation(ctx)
}

func (s *Session) CreateNPC(ctx context.Context, f dashclient.Fields) (*game.NPC, error) {
	slug, err := s.currentSlug()
	if err != nil {
		return nil, err
	}
	n, err := s.api.CreateNPC(ctx, slug, f)
	if err != nil {
		return nil, err
	}
	return n, s.afterMutation(ctx)
}

func (s *Session) UpdateNPC(ctx context.Context, npcID string, f dashclient.Fields) (*game.NPC, error) {
	n, err := s.api.UpdateNPC(ctx, npcID, f)
	if err != nil {
		return nil, err
	}
	return n, s.afterMutation(ctx)
}

func (s *Session) DeleteNPC(ctx context.Context, npcID string) error {
	if err := s.api.DeleteNPC(ctx, npcID); err != nil {
		return err
	}
	return s.afterMutation(ctx)
}

func (s *Session) SetPlayer(ctx context.Context, playerID, displayName, description string) (*game.Player, error) {
	p, err := s.api.UpsertPlayer(ctx, playerID, displayName, description)
	if err != nil {
		return nil, err
	}
	return p, s.afterMutation(ctx)
}

func (s *Session) DeletePlayer(ctx context.Context, playerID string) error {
	if err := s.api.DeletePlayer(ctx, playerID); err != nil {
		return err
	}
	return s.afterMutation(ctx)
}
