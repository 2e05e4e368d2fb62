package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ericogr/gamedash/internal/constants"
)

// healthURL is <GAMEDASH_URL>/api/health.
func healthURL() string {
	base := os.Getenv(constants.EnvServerURL)
	if base == "" {
		base = constants.DefaultServerURL
	}
	return strings.TrimRight(base, "/") + constants.RouteAPIPrefix + constants.RouteHealth
}

// healthy treats any status below 500 as alive; /api/health answers 503
// when the database is unreachable.
func healthy(client *http.Client, url string) bool {
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

func main() {
	client := &http.Client{Timeout: 2 * time.Second}
	if !healthy(client, healthURL()) {
		os.Exit(1)
	}
	os.Exit(0)
}
