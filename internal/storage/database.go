package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/keys"
	"github.com/ericogr/gamedash/internal/logging"
)

// OpenAndMigrate opens the SQLite database at path, migrates the schema and
// seeds the default game when the games table is empty. A nil seed skips
// seeding.
func OpenAndMigrate(path string, seed *game.Game) (*gorm.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrapf(err, "create database directory %s", dir)
			}
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", path)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; one connection also keeps :memory:
	// databases shared across queries.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&game.Game{}, &game.Asset{}, &game.NPC{}, &game.Player{}); err != nil {
		return nil, errors.Wrap(err, "migrate schema")
	}
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_game_asset ON assets(game_id, asset_id);").Error; err != nil {
		return nil, errors.Wrap(err, "create asset index")
	}
	if seed != nil {
		if err := seedDefaultGame(db, seed); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func seedDefaultGame(db *gorm.DB, seed *game.Game) error {
	var count int64
	if err := db.Model(&game.Game{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count games")
	}
	if count > 0 {
		return nil
	}
	g := *seed
	if g.Slug == "" {
		g.Slug = keys.GameSlug(g.Title)
	}
	if err := db.Create(&g).Error; err != nil {
		return errors.Wrap(err, "seed default game")
	}
	logging.Info("default game seeded", logging.Fields{"slug": g.Slug})
	return nil
}
