package robloxclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ericogr/gamedash/internal/constants"
)

// maxImageBytes bounds thumbnail downloads.
const maxImageBytes = 8 << 20

// Client talks to the public Roblox thumbnails API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a client for the public API.
func New() *Client {
	return &Client{
		BaseURL:    constants.RobloxThumbnailsBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type thumbnailResponse struct {
	Data []struct {
		TargetID int64  `json:"targetId"`
		State    string `json:"state"`
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

// ThumbnailURL asks the API for the PNG thumbnail location of an asset.
func (c *Client) ThumbnailURL(ctx context.Context, assetID string) (string, error) {
	q := url.Values{}
	q.Set("assetIds", assetID)
	q.Set("size", constants.RobloxThumbSize)
	q.Set("format", "Png")
	q.Set("isCircular", "false")
	endpoint := strings.TrimRight(c.BaseURL, "/") + constants.RobloxAssetThumbPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("thumbnail lookup failed: %d %s", resp.StatusCode, string(body))
	}

	var out thumbnailResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode thumbnail response: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].ImageURL == "" {
		return "", fmt.Errorf("%s (asset %s)", constants.ErrInvalidThumbnailResp, assetID)
	}
	if st := out.Data[0].State; st != "" && st != "Completed" {
		return "", fmt.Errorf("thumbnail for asset %s not ready: %s", assetID, st)
	}
	return out.Data[0].ImageURL, nil
}

// Download fetches raw image bytes.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed: %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// FetchAssetThumbnail resolves and downloads the thumbnail of an asset.
// It returns the image bytes and the URL they came from.
func (c *Client) FetchAssetThumbnail(ctx context.Context, assetID string) ([]byte, string, error) {
	u, err := c.ThumbnailURL(ctx, assetID)
	if err != nil {
		return nil, "", err
	}
	b, err := c.Download(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return b, u, nil
}
