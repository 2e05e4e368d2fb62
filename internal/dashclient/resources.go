package dashclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/version"
)

// Games

func (c *Client) ListGames(ctx context.Context) ([]game.Game, error) {
	return list[game.Game](ctx, c, constants.RouteGames, nil, "games")
}

// GetGame accepts an id or a slug.
func (c *Client) GetGame(ctx context.Context, ref string) (*game.Game, error) {
	var g game.Game
	if err := c.call(ctx, http.MethodGet, "/games/"+seg(ref), nil, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGame returns the new game's id, slug and title.
func (c *Client) CreateGame(ctx context.Context, title, description string) (*game.Game, error) {
	var g game.Game
	body := Fields{"title": title, "description": description}
	if err := c.call(ctx, http.MethodPost, constants.RouteGames, nil, body, &g); err != nil {
		return nil, err
	}
	g.Description = description
	return &g, nil
}

// UpdateGame sends only the given fields (title, description).
func (c *Client) UpdateGame(ctx context.Context, ref string, f Fields) (*game.Game, error) {
	var g game.Game
	if err := c.call(ctx, http.MethodPut, "/games/"+seg(ref), nil, f, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) DeleteGame(ctx context.Context, ref string) error {
	return c.call(ctx, http.MethodDelete, "/games/"+seg(ref), nil, nil, nil)
}

// ExportGame writes the game data files on the server now.
func (c *Client) ExportGame(ctx context.Context, ref string) (*game.ExportResult, error) {
	var res game.ExportResult
	if err := c.call(ctx, http.MethodPost, "/games/"+seg(ref)+"/export", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// LookupNPC finds an NPC of a game by display name.
func (c *Client) LookupNPC(ctx context.Context, ref, name string) (*game.NPCLookup, error) {
	var e game.NPCLookup
	q := url.Values{constants.QueryName: {name}}
	if err := c.call(ctx, http.MethodGet, "/games/"+seg(ref)+"/npcs/lookup", q, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Assets

// AssetQuery filters ListAssets. An empty Game lists every game's assets.
type AssetQuery struct {
	Game string
	Type string
}

func (q AssetQuery) values() url.Values {
	v := url.Values{}
	if q.Game != "" {
		v.Set(constants.QueryGameID, q.Game)
	}
	if q.Type != "" {
		v.Set(constants.QueryType, q.Type)
	}
	return v
}

func (c *Client) ListAssets(ctx context.Context, q AssetQuery) ([]game.Asset, error) {
	return list[game.Asset](ctx, c, constants.RouteAssets, q.values(), constants.JSONKeyAssets)
}

func assetPath(ref, assetID string) string {
	return "/games/" + seg(ref) + "/assets/" + seg(assetID)
}

func (c *Client) GetAsset(ctx context.Context, ref, assetID string) (*game.Asset, error) {
	var a game.Asset
	if err := c.call(ctx, http.MethodGet, assetPath(ref, assetID), nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) CreateAsset(ctx context.Context, ref string, f Fields) (*game.Asset, error) {
	var a game.Asset
	q := url.Values{constants.QueryGameID: {ref}}
	if err := c.call(ctx, http.MethodPost, constants.RouteAssets, q, f, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UploadAsset creates an asset with a model file as multipart form data.
func (c *Client) UploadAsset(ctx context.Context, ref string, f Fields, filename string, r io.Reader) (*game.Asset, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range f {
		if err := mw.WriteField(k, fmt.Sprint(v)); err != nil {
			return nil, err
		}
	}
	fw, err := mw.CreateFormFile(constants.FormFieldFile, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(constants.RouteAssets, url.Values{constants.QueryGameID: {ref}}), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.HeaderContentType, mw.FormDataContentType())
	raw, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var a game.Asset
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateAsset(ctx context.Context, ref, assetID string, f Fields) (*game.Asset, error) {
	var a game.Asset
	if err := c.call(ctx, http.MethodPut, assetPath(ref, assetID), nil, f, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAsset removes an asset; force also removes assets NPCs still use.
func (c *Client) DeleteAsset(ctx context.Context, ref, assetID string, force bool) error {
	var q url.Values
	if force {
		q = url.Values{constants.QueryForce: {"1"}}
	}
	return c.call(ctx, http.MethodDelete, assetPath(ref, assetID), q, nil, nil)
}

// AssetThumbnail returns the PNG thumbnail of an asset.
func (c *Client) AssetThumbnail(ctx context.Context, ref, assetID string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, assetPath(ref, assetID)+"/thumbnail.png", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

// DescribeAssets asks the server to generate asset descriptions.
func (c *Client) DescribeAssets(ctx context.Context, ref string, opts game.DescribeOptions) (*game.DescribeReport, error) {
	var rep game.DescribeReport
	if err := c.call(ctx, http.MethodPost, "/games/"+seg(ref)+"/assets/describe", nil, opts, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// NPCs

// ListNPCs lists the NPCs of a game; an empty ref lists all.
func (c *Client) ListNPCs(ctx context.Context, ref string) ([]game.NPC, error) {
	var q url.Values
	if ref != "" {
		q = url.Values{constants.QueryGameID: {ref}}
	}
	return list[game.NPC](ctx, c, constants.RouteNPCs, q, constants.JSONKeyNPCs)
}

func (c *Client) GetNPC(ctx context.Context, npcID string) (*game.NPC, error) {
	var n game.NPC
	if err := c.call(ctx, http.MethodGet, "/npcs/"+seg(npcID), nil, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) CreateNPC(ctx context.Context, ref string, f Fields) (*game.NPC, error) {
	body := Fields{}
	for k, v := range f {
		body[k] = v
	}
	body["game_id"] = ref
	var n game.NPC
	if err := c.call(ctx, http.MethodPost, constants.RouteNPCs, nil, body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) UpdateNPC(ctx context.Context, npcID string, f Fields) (*game.NPC, error) {
	var n game.NPC
	if err := c.call(ctx, http.MethodPut, "/npcs/"+seg(npcID), nil, f, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) DeleteNPC(ctx context.Context, npcID string) error {
	return c.call(ctx, http.MethodDelete, "/npcs/"+seg(npcID), nil, nil, nil)
}

// Players

func (c *Client) ListPlayers(ctx context.Context) ([]game.Player, error) {
	return list[game.Player](ctx, c, constants.RoutePlayers, nil, constants.JSONKeyPlayers)
}

func (c *Client) GetPlayer(ctx context.Context, playerID string) (*game.Player, error) {
	var p game.Player
	if err := c.call(ctx, http.MethodGet, "/players/"+seg(playerID), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertPlayer sets the description (and optionally display name) of a
// player.
func (c *Client) UpsertPlayer(ctx context.Context, playerID, displayName, description string) (*game.Player, error) {
	body := Fields{"description": description}
	if displayName != "" {
		body["display_name"] = displayName
	}
	var p game.Player
	if err := c.call(ctx, http.MethodPut, "/players/"+seg(playerID), nil, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePlayer(ctx context.Context, playerID string) error {
	return c.call(ctx, http.MethodDelete, "/players/"+seg(playerID), nil, nil, nil)
}

// Server

func (c *Client) Version(ctx context.Context) (version.Info, error) {
	var v version.Info
	err := c.call(ctx, http.MethodGet, constants.RouteVersion, nil, nil, &v)
	return v, err
}

func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, constants.RouteHealth, nil, nil, nil)
}
