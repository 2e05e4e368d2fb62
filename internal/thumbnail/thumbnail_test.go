package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"runtime"
	"testing"

	"github.com/ericogr/gamedash/internal/game"
)

type fakeFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	img     []byte
	err     error
	lastURL string
	mu      sync.Mutex
}

func (f *fakeFetcher) Download(ctx context.Context, u string) ([]byte, error) {
	f.mu.Lock()
	f.lastURL = u
	f.mu.Unlock()
	return f.FetchAssetThumbnailBytes()
}

func (f *fakeFetcher) FetchAssetThumbnail(ctx context.Context, assetID string) ([]byte, string, error) {
	b, err := f.FetchAssetThumbnailBytes()
	return b, "roblox", err
}

func (f *fakeFetcher) FetchAssetThumbnailBytes() ([]byte, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.img, f.err
}

// memStore holds the thumbnail of a single asset.
type memStore struct {
	mu    sync.Mutex
	thumb []byte
}

func (m *memStore) GetAsset(gameID uint, assetID string) (*game.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &game.Asset{GameID: gameID, AssetID: assetID, Thumbnail: m.thumb}, nil
}

func (m *memStore) SaveAssetThumbnail(id uint, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thumb = b
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.SetNRGBA(1, 1, color.NRGBA{R: 9, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEnsureStoredShortCircuits(t *testing.T) {
	f := &fakeFetcher{}
	a := &game.Asset{Thumbnail: []byte("cached")}
	out, err := Ensure(context.Background(), &memStore{}, f, a)
	if err != nil || string(out) != "cached" {
		t.Fatalf("unexpected result %q %v", out, err)
	}
	if f.calls.Load() != 0 {
		t.Fatalf("fetcher must not be called")
	}
}

func TestEnsureDeduplicatesConcurrentRequests(t *testing.T) {
	f := &fakeFetcher{img: pngBytes(t), release: make(chan struct{})}
	store := &memStore{}
	a := &game.Asset{AssetID: "55", GameID: 1}
	a.ID = 77

	var wg sync.WaitGroup
	results := make([][]byte, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := Ensure(context.Background(), store, f, a)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = out
		}(i)
	}
	// Callers arriving after the job finished find the stored thumbnail.
	for f.calls.Load() == 0 {
		runtimeYield()
	}
	close(f.release)
	wg.Wait()

	if n := f.calls.Load(); n != 1 {
		t.Fatalf("expected one fetch, got %d", n)
	}
	if len(store.thumb) == 0 {
		t.Fatalf("thumbnail was not saved")
	}
}

func TestEnsurePrefersImageURL(t *testing.T) {
	f := &fakeFetcher{img: pngBytes(t)}
	a := &game.Asset{AssetID: "9", ImageURL: "http://cdn/9.png"}
	a.ID = 901
	if _, err := Ensure(context.Background(), &memStore{}, f, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.lastURL != "http://cdn/9.png" {
		t.Fatalf("expected download from image_url, got %q", f.lastURL)
	}
}

func TestEnsurePropagatesErrors(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	a := &game.Asset{AssetID: "1"}
	a.ID = 902
	if _, err := Ensure(context.Background(), &memStore{}, f, a); err == nil {
		t.Fatalf("expected error")
	}
}

func runtimeYield() { runtime.Gosched() }
