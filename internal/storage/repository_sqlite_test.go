package storage

import (
	"testing"

	"github.com/bxcodec/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/lenient"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	db, err := OpenAndMigrate(":memory:", &game.Game{Title: "Default Game", Description: "The default game instance"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewSQLiteRepository(db)
}

func randomAsset(gameID uint, assetID string) *game.Asset {
	return &game.Asset{
		GameID:      gameID,
		AssetID:     assetID,
		Name:        faker.Word(),
		Description: faker.Sentence(),
		Type:        "Model",
		Tags:        lenient.StringList{faker.Word()},
	}
}

func TestDefaultGameSeeded(t *testing.T) {
	repo := newTestRepo(t)
	g, err := repo.GetGameBySlug("default-game")
	require.NoError(t, err)
	assert.Equal(t, "Default Game", g.Title)

	games, err := repo.ListGames()
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestAssetAndNPCCounts(t *testing.T) {
	repo := newTestRepo(t)
	g := &game.Game{Title: "Harbor", Slug: "harbor"}
	require.NoError(t, repo.CreateGame(g))

	boat := randomAsset(g.ID, "100")
	boat.Name = "Boat"
	boat.ImageURL = "https://example.test/boat.png"
	require.NoError(t, repo.CreateAsset(boat))
	require.NoError(t, repo.CreateAsset(randomAsset(g.ID, "200")))

	npc := &game.NPC{
		NPCID:          faker.UUIDDigit(),
		GameID:         g.ID,
		DisplayName:    "Captain",
		AssetID:        "100",
		ResponseRadius: 20,
		SpawnPosition:  lenient.Vector3{X: 1, Y: 2, Z: 3},
		Abilities:      lenient.StringList{"chat", "trade"},
	}
	require.NoError(t, repo.CreateNPC(npc))

	got, err := repo.GetGameByID(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AssetCount)
	assert.Equal(t, 1, got.NPCCount)

	assets, err := repo.ListAssets(AssetFilter{GameID: g.ID})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	for _, a := range assets {
		if a.AssetID == "100" {
			assert.Equal(t, 1, a.NPCCount)
		} else {
			assert.Equal(t, 0, a.NPCCount)
		}
	}

	npcs, err := repo.ListNPCs(g.ID)
	require.NoError(t, err)
	require.Len(t, npcs, 1)
	assert.Equal(t, "https://example.test/boat.png", npcs[0].ImageURL)
	assert.Equal(t, lenient.Vector3{X: 1, Y: 2, Z: 3}, npcs[0].SpawnPosition)
	assert.Equal(t, lenient.StringList{"chat", "trade"}, npcs[0].Abilities)
}

func TestAssetUniquePerGame(t *testing.T) {
	repo := newTestRepo(t)
	g, err := repo.GetGameBySlug("default-game")
	require.NoError(t, err)
	require.NoError(t, repo.CreateAsset(randomAsset(g.ID, "42")))
	assert.ErrorIs(t, repo.CreateAsset(randomAsset(g.ID, "42")), ErrDuplicate)

	other := &game.Game{Title: "Other", Slug: "other"}
	require.NoError(t, repo.CreateGame(other))
	assert.NoError(t, repo.CreateAsset(randomAsset(other.ID, "42")))
}

func TestNPCDuplicateID(t *testing.T) {
	repo := newTestRepo(t)
	g, err := repo.GetGameBySlug("default-game")
	require.NoError(t, err)
	require.NoError(t, repo.CreateAsset(randomAsset(g.ID, "7")))
	require.NoError(t, repo.CreateNPC(&game.NPC{GameID: g.ID, NPCID: "n-1", AssetID: "7", DisplayName: faker.Name()}))
	err = repo.CreateNPC(&game.NPC{GameID: g.ID, NPCID: "n-1", AssetID: "7", DisplayName: faker.Name()})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDeleteGameCascades(t *testing.T) {
	repo := newTestRepo(t)
	g := &game.Game{Title: "Doomed", Slug: "doomed"}
	require.NoError(t, repo.CreateGame(g))
	require.NoError(t, repo.CreateAsset(randomAsset(g.ID, "1")))
	require.NoError(t, repo.CreateNPC(&game.NPC{NPCID: "n1", GameID: g.ID, DisplayName: "Ghost", AssetID: "1"}))

	require.NoError(t, repo.DeleteGame(g.ID))
	_, err := repo.GetGameByID(g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetNPC("n1")
	assert.ErrorIs(t, err, ErrNotFound)
	assets, err := repo.ListAssets(AssetFilter{GameID: g.ID})
	require.NoError(t, err)
	assert.Empty(t, assets)

	assert.ErrorIs(t, repo.DeleteGame(g.ID), ErrNotFound)
}

func TestThumbnailStoredSeparately(t *testing.T) {
	repo := newTestRepo(t)
	g, _ := repo.GetGameBySlug("default-game")
	a := randomAsset(g.ID, "7")
	require.NoError(t, repo.CreateAsset(a))
	require.NoError(t, repo.SaveAssetThumbnail(a.ID, []byte{0x89, 'P', 'N', 'G'}))

	a.Description = "updated"
	require.NoError(t, repo.UpdateAsset(a))

	got, err := repo.GetAsset(g.ID, "7")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Description)
	assert.True(t, got.HasThumbnail())

	list, err := repo.ListAssets(AssetFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].HasThumbnail())
}

func TestPlayerUpsert(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.UpsertPlayer(&game.Player{PlayerID: "p1", DisplayName: faker.Name(), Description: "first"}))
	require.NoError(t, repo.UpsertPlayer(&game.Player{PlayerID: "p1", DisplayName: "Ana", Description: "second"}))

	p, err := repo.GetPlayer("p1")
	require.NoError(t, err)
	assert.Equal(t, "second", p.Description)
	assert.Equal(t, "Ana", p.DisplayName)

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Players)
	assert.Equal(t, int64(1), stats.Games)

	require.NoError(t, repo.DeletePlayer("p1"))
	assert.ErrorIs(t, repo.DeletePlayer("p1"), ErrNotFound)
}
