package service

import (
	"errors"
	"strings"

	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/lenient"
	"github.com/ericogr/gamedash/internal/storage"
)

type PlayerRepo interface {
	GetPlayer(playerID string) (*game.Player, error)
	UpsertPlayer(p *game.Player) error
	DeletePlayer(playerID string) error
}

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerIDRequired    = errors.New("player_id is required")
	ErrDescriptionRequired = errors.New("description is required")
)

// UpsertPlayer creates or replaces the description of a player. The
// display name is kept when the payload omits it.
func UpsertPlayer(repo PlayerRepo, playerID string, o lenient.Object) (*game.Player, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrPlayerIDRequired
	}
	desc := o.String("description")
	if desc == "" {
		return nil, ErrDescriptionRequired
	}
	p := &game.Player{PlayerID: playerID, Description: desc}
	if existing, err := repo.GetPlayer(playerID); err == nil && existing != nil {
		p.DisplayName = existing.DisplayName
		p.CreatedAt = existing.CreatedAt
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if o.Has("display_name", "displayName", "name") {
		p.DisplayName = o.String("display_name", "displayName", "name")
	}
	if err := repo.UpsertPlayer(p); err != nil {
		return nil, err
	}
	return p, nil
}

func GetPlayer(repo PlayerRepo, playerID string) (*game.Player, error) {
	p, err := repo.GetPlayer(strings.TrimSpace(playerID))
	return found(p, err, ErrPlayerNotFound)
}

func DeletePlayer(repo PlayerRepo, playerID string) error {
	if err := repo.DeletePlayer(strings.TrimSpace(playerID)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	return nil
}
