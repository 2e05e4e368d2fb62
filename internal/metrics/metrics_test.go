package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/gamedash/internal/game"
)

type fixedStats struct {
	st  game.Stats
	err error
}

func (f fixedStats) Stats() (game.Stats, error) { return f.st, f.err }

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(b)
}

func TestEntityGauges(t *testing.T) {
	m := New(fixedStats{st: game.Stats{Games: 2, Assets: 7, NPCs: 3, Players: 1}})
	out := scrape(t, m)
	assert.Contains(t, out, `gamedash_entities{kind="assets"} 7`)
	assert.Contains(t, out, `gamedash_entities{kind="games"} 2`)
}

func TestSubscribersReadOnScrape(t *testing.T) {
	m := New(nil)
	n := 3
	m.Subscribers = func() int { return n }
	assert.Contains(t, scrape(t, m), "gamedash_event_subscribers 3")
	n = 0
	assert.Contains(t, scrape(t, m), "gamedash_event_subscribers 0")
}

func TestStatsErrorKeepsServing(t *testing.T) {
	m := New(fixedStats{err: errors.New("db closed")})
	out := scrape(t, m)
	assert.Contains(t, out, "gamedash_uptime_seconds")
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(nil)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/games/:game", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, p := range []string{"/api/games/1", "/api/games/harbor", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	m.ObserveExport(nil)

	out := scrape(t, m)
	assert.Contains(t, out, `gamedash_http_requests_total{method="GET",route="/api/games/:game",status="204"} 2`)
	assert.Contains(t, out, `route="unmatched",status="404"`)
	assert.True(t, strings.Contains(out, `gamedash_exports_total{result="ok"} 1`))
}
