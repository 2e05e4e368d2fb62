package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ericogr/gamedash/internal/constants"
)

func TestHealthURL(t *testing.T) {
	t.Setenv(constants.EnvServerURL, "http://dash:9000/")
	assert.Equal(t, "http://dash:9000/api/health", healthURL())
	t.Setenv(constants.EnvServerURL, "")
	assert.Equal(t, constants.DefaultServerURL+"/api/health", healthURL())
}

func TestHealthy(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()
	client := &http.Client{Timeout: time.Second}

	assert.True(t, healthy(client, srv.URL))
	status = http.StatusServiceUnavailable
	assert.False(t, healthy(client, srv.URL))
	assert.False(t, healthy(client, "http://127.0.0.1:1/api/health"))
}
