package storage

import (
	stderrors "errors"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ericogr/gamedash/internal/game"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

// notFound maps gorm's sentinel to ErrNotFound and wraps anything else.
func notFound(err error, format string, args ...interface{}) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrapf(err, format, args...)
}

// duplicate maps a unique key violation to ErrDuplicate and wraps anything
// else.
func duplicate(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errors.Wrapf(ErrDuplicate, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

type countRow struct {
	GameID  uint
	AssetID string
	N       int
}

func (r *sqliteRepository) countsByGame(table string) (map[uint]int, error) {
	var rows []countRow
	if err := r.db.Table(table).Select("game_id, COUNT(*) AS n").Group("game_id").Scan(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "count %s", table)
	}
	out := make(map[uint]int, len(rows))
	for _, row := range rows {
		out[row.GameID] = row.N
	}
	return out, nil
}

func (r *sqliteRepository) fillGameCounts(games []game.Game) error {
	assets, err := r.countsByGame("assets")
	if err != nil {
		return err
	}
	npcs, err := r.countsByGame("npcs")
	if err != nil {
		return err
	}
	for i := range games {
		games[i].AssetCount = assets[games[i].ID]
		games[i].NPCCount = npcs[games[i].ID]
	}
	return nil
}

func (r *sqliteRepository) ListGames() ([]game.Game, error) {
	var games []game.Game
	if err := r.db.Order("title").Find(&games).Error; err != nil {
		return nil, errors.Wrap(err, "list games")
	}
	if err := r.fillGameCounts(games); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *sqliteRepository) getGame(query string, arg interface{}) (*game.Game, error) {
	var g game.Game
	if err := r.db.Where(query, arg).First(&g).Error; err != nil {
		return nil, notFound(err, "load game %v", arg)
	}
	list := []game.Game{g}
	if err := r.fillGameCounts(list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *sqliteRepository) GetGameByID(id uint) (*game.Game, error) {
	return r.getGame("id = ?", id)
}

func (r *sqliteRepository) GetGameBySlug(slug string) (*game.Game, error) {
	return r.getGame("slug = ?", slug)
}

func (r *sqliteRepository) CreateGame(g *game.Game) error {
	return errors.Wrapf(r.db.Create(g).Error, "create game %s", g.Slug)
}

func (r *sqliteRepository) UpdateGame(g *game.Game) error {
	res := r.db.Model(&game.Game{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
		"title":       g.Title,
		"slug":        g.Slug,
		"description": g.Description,
	})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update game %d", g.ID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) DeleteGame(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&game.NPC{}).Error; err != nil {
			return errors.Wrapf(err, "delete npcs of game %d", id)
		}
		if err := tx.Where("game_id = ?", id).Delete(&game.Asset{}).Error; err != nil {
			return errors.Wrapf(err, "delete assets of game %d", id)
		}
		res := tx.Delete(&game.Game{}, id)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "delete game %d", id)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *sqliteRepository) npcCountsByAsset(gameID uint) (map[uint]map[string]int, error) {
	var rows []countRow
	q := r.db.Table("npcs").Select("game_id, asset_id, COUNT(*) AS n").Group("game_id, asset_id")
	if gameID != 0 {
		q = q.Where("game_id = ?", gameID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "count npcs per asset")
	}
	out := make(map[uint]map[string]int)
	for _, row := range rows {
		if out[row.GameID] == nil {
			out[row.GameID] = make(map[string]int)
		}
		out[row.GameID][row.AssetID] = row.N
	}
	return out, nil
}

func (r *sqliteRepository) ListAssets(f AssetFilter) ([]game.Asset, error) {
	q := r.db.Omit("thumbnail_png").Order("name")
	if f.GameID != 0 {
		q = q.Where("game_id = ?", f.GameID)
	}
	if f.Type != "" {
		q = q.Where("LOWER(type) = LOWER(?)", f.Type)
	}
	var assets []game.Asset
	if err := q.Find(&assets).Error; err != nil {
		return nil, errors.Wrap(err, "list assets")
	}
	counts, err := r.npcCountsByAsset(f.GameID)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		assets[i].NPCCount = counts[assets[i].GameID][assets[i].AssetID]
	}
	return assets, nil
}

func (r *sqliteRepository) GetAsset(gameID uint, assetID string) (*game.Asset, error) {
	var a game.Asset
	if err := r.db.Where("game_id = ? AND asset_id = ?", gameID, assetID).First(&a).Error; err != nil {
		return nil, notFound(err, "load asset %s", assetID)
	}
	n, err := r.CountNPCsForAsset(gameID, assetID)
	if err != nil {
		return nil, err
	}
	a.NPCCount = int(n)
	return &a, nil
}

func (r *sqliteRepository) CreateAsset(a *game.Asset) error {
	return duplicate(r.db.Create(a).Error, "create asset %s", a.AssetID)
}

// UpdateAsset saves every column except the thumbnail, which has its own
// writer.
func (r *sqliteRepository) UpdateAsset(a *game.Asset) error {
	return errors.Wrapf(r.db.Omit("thumbnail_png", "created_at").Save(a).Error, "update asset %s", a.AssetID)
}

func (r *sqliteRepository) DeleteAsset(gameID uint, assetID string) error {
	res := r.db.Where("game_id = ? AND asset_id = ?", gameID, assetID).Delete(&game.Asset{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete asset %s", assetID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) CountNPCsForAsset(gameID uint, assetID string) (int64, error) {
	var n int64
	err := r.db.Model(&game.NPC{}).Where("game_id = ? AND asset_id = ?", gameID, assetID).Count(&n).Error
	return n, errors.Wrapf(err, "count npcs for asset %s", assetID)
}

func (r *sqliteRepository) SaveAssetThumbnail(id uint, png []byte) error {
	return errors.Wrapf(r.db.Model(&game.Asset{}).Where("id = ?", id).Update("thumbnail_png", png).Error, "save thumbnail for asset row %d", id)
}

type imageKey struct {
	gameID  uint
	assetID string
}

func (r *sqliteRepository) imageURLs(gameID uint) (map[imageKey]string, error) {
	var rows []struct {
		GameID   uint
		AssetID  string
		ImageURL string
	}
	q := r.db.Model(&game.Asset{}).Select("game_id, asset_id, image_url")
	if gameID != 0 {
		q = q.Where("game_id = ?", gameID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "load asset images of game %d", gameID)
	}
	out := make(map[imageKey]string, len(rows))
	for _, row := range rows {
		out[imageKey{row.GameID, row.AssetID}] = row.ImageURL
	}
	return out, nil
}

// ListNPCs returns the NPCs of a game, or of every game when gameID is 0.
func (r *sqliteRepository) ListNPCs(gameID uint) ([]game.NPC, error) {
	var npcs []game.NPC
	q := r.db.Order("display_name")
	if gameID != 0 {
		q = q.Where("game_id = ?", gameID)
	}
	if err := q.Find(&npcs).Error; err != nil {
		return nil, errors.Wrapf(err, "list npcs of game %d", gameID)
	}
	images, err := r.imageURLs(gameID)
	if err != nil {
		return nil, err
	}
	for i := range npcs {
		npcs[i].ImageURL = images[imageKey{npcs[i].GameID, npcs[i].AssetID}]
	}
	return npcs, nil
}

func (r *sqliteRepository) GetNPC(npcID string) (*game.NPC, error) {
	var n game.NPC
	if err := r.db.Where("npc_id = ?", npcID).First(&n).Error; err != nil {
		return nil, notFound(err, "load npc %s", npcID)
	}
	var a game.Asset
	err := r.db.Omit("thumbnail_png").Where("game_id = ? AND asset_id = ?", n.GameID, n.AssetID).First(&a).Error
	if err == nil {
		n.ImageURL = a.ImageURL
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(err, "load asset of npc %s", npcID)
	}
	return &n, nil
}

func (r *sqliteRepository) CreateNPC(n *game.NPC) error {
	return duplicate(r.db.Create(n).Error, "create npc %s", n.NPCID)
}

func (r *sqliteRepository) UpdateNPC(n *game.NPC) error {
	return errors.Wrapf(r.db.Omit("created_at").Save(n).Error, "update npc %s", n.NPCID)
}

func (r *sqliteRepository) DeleteNPC(npcID string) error {
	res := r.db.Where("npc_id = ?", npcID).Delete(&game.NPC{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete npc %s", npcID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) ListPlayers() ([]game.Player, error) {
	var players []game.Player
	if err := r.db.Order("display_name, player_id").Find(&players).Error; err != nil {
		return nil, errors.Wrap(err, "list players")
	}
	return players, nil
}

func (r *sqliteRepository) GetPlayer(playerID string) (*game.Player, error) {
	var p game.Player
	if err := r.db.Where("player_id = ?", playerID).First(&p).Error; err != nil {
		return nil, notFound(err, "load player %s", playerID)
	}
	return &p, nil
}

// UpsertPlayer inserts or updates by player_id, keeping created_at.
func (r *sqliteRepository) UpsertPlayer(p *game.Player) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "description", "updated_at"}),
	}).Create(p).Error
	return errors.Wrapf(err, "upsert player %s", p.PlayerID)
}

func (r *sqliteRepository) DeletePlayer(playerID string) error {
	res := r.db.Where("player_id = ?", playerID).Delete(&game.Player{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete player %s", playerID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) Stats() (game.Stats, error) {
	var s game.Stats
	for _, c := range []struct {
		model interface{}
		into  *int64
	}{
		{&game.Game{}, &s.Games},
		{&game.Asset{}, &s.Assets},
		{&game.NPC{}, &s.NPCs},
		{&game.Player{}, &s.Players},
	} {
		if err := r.db.Model(c.model).Count(c.into).Error; err != nil {
			return s, errors.Wrap(err, "stats")
		}
	}
	return s, nil
}
