package service

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/keys"
	"github.com/ericogr/gamedash/internal/storage"
)

const (
	maxTitleLen       = 128
	maxDescriptionLen = 2048
)

// GameRepo is the minimal repository interface required by the game
// operations. Using a small interface simplifies testing.
type GameRepo interface {
	GetGameByID(id uint) (*game.Game, error)
	GetGameBySlug(slug string) (*game.Game, error)
	CreateGame(g *game.Game) error
	UpdateGame(g *game.Game) error
	DeleteGame(id uint) error
}

// GameResolver is the read-only half of GameRepo.
type GameResolver interface {
	GetGameByID(id uint) (*game.Game, error)
	GetGameBySlug(slug string) (*game.Game, error)
}

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title exceeds 128 characters")
	ErrDescriptionTooLong  = errors.New("description exceeds 2048 characters")
	ErrSlugTaken           = errors.New("a game with this title already exists")
	ErrInvalidGameRef      = errors.New("invalid game reference")
	errUnexpectedNilResult = errors.New("repository returned no record")
)

// ResolveGame accepts either a numeric id or a slug.
func ResolveGame(repo GameResolver, ref string) (*game.Game, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrInvalidGameRef
	}
	var (
		g   *game.Game
		err error
	)
	if id, convErr := strconv.ParseUint(ref, 10, 64); convErr == nil {
		g, err = repo.GetGameByID(uint(id))
	} else {
		g, err = repo.GetGameBySlug(strings.ToLower(ref))
	}
	return found(g, err, ErrGameNotFound)
}

// found converts storage.ErrNotFound (and nil records) into the caller's
// sentinel.
func found[T any](v *T, err error, sentinel error) (*T, error) {
	if errors.Is(err, storage.ErrNotFound) {
		return nil, sentinel
	}
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errUnexpectedNilResult
	}
	return v, nil
}

func validateGameFields(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// CreateGame validates the title, derives a slug and stores the game.
func CreateGame(repo GameRepo, title, description string) (*game.Game, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := validateGameFields(title, description); err != nil {
		return nil, err
	}
	slug := keys.GameSlug(title)
	if slug == "" {
		return nil, ErrTitleRequired
	}
	existing, err := repo.GetGameBySlug(slug)
	if err == nil && existing != nil {
		return nil, ErrSlugTaken
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	g := &game.Game{Title: title, Slug: slug, Description: description}
	if err := repo.CreateGame(g); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGame changes title and description. The slug is kept so export
// paths and client references stay valid.
func UpdateGame(repo GameRepo, g *game.Game, title, description string) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		title = g.Title
	}
	if err := validateGameFields(title, description); err != nil {
		return err
	}
	g.Title = title
	g.Description = description
	if err := repo.UpdateGame(g); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrGameNotFound
		}
		return err
	}
	return nil
}

// DeleteGame removes the game together with its assets and NPCs.
func DeleteGame(repo GameRepo, g *game.Game) error {
	if err := repo.DeleteGame(g.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrGameNotFound
		}
		return err
	}
	return nil
}
