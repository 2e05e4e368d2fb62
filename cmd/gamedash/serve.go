package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericogr/gamedash/internal/api"
	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/describe"
	"github.com/ericogr/gamedash/internal/events"
	"github.com/ericogr/gamedash/internal/export"
	"github.com/ericogr/gamedash/internal/filestore"
	"github.com/ericogr/gamedash/internal/logging"
	"github.com/ericogr/gamedash/internal/metrics"
	"github.com/ericogr/gamedash/internal/npccache"
	"github.com/ericogr/gamedash/internal/robloxclient"
	"github.com/ericogr/gamedash/internal/version"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg := loadConfigOrExit(configPath)
	defer logging.Sync()

	db, repo := openDatabaseOrExit(cfg)
	defer closeDatabase(db)

	hub := events.NewHub()
	m := metrics.New(repo)
	m.Subscribers = hub.Len

	var exporter *export.Exporter
	if cfg.ExportEnabled {
		exporter = export.New(repo, cfg.ExportDir)
		exporter.Template = cfg.ExportTemplateDir
		exporter.OnExport = func(slug string, _ export.Result, err error) {
			m.ObserveExport(err)
			if err == nil {
				hub.Publish(events.Event{Kind: events.KindExport, Action: events.ActionExported, Game: slug})
			}
		}
	}

	describer := describe.New(cfg.OpenAIAPIKey, cfg.DescribePrompt)
	if !describer.Enabled() {
		logging.Warn("asset descriptions disabled", logging.Fields{"reason": constants.EnvOpenAIAPIKey + " not set"})
	}

	handler := api.NewGameHandler(api.Deps{
		Repo:      repo,
		Exporter:  exporter,
		NPCCache:  npccache.New(repo, cfg.NPCCacheTTL),
		Hub:       hub,
		Thumbs:    robloxclient.New(),
		Describer: describer,
		Files:     filestore.New(cfg.StorageDir),
	})
	stream := events.NewStream(hub, cfg.CORSOrigins)
	router := api.NewRouter(handler, api.RouterOptions{
		JWTSecret:   []byte(cfg.JWTSecret),
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     m,
		Events:      stream,
	})
	if cfg.JWTSecret == "" {
		logging.Warn("authentication disabled", logging.Fields{"reason": constants.EnvJWTSecret + " not set"})
	}

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		logging.Info("Server started", logging.Fields{constants.LogFieldAddr: cfg.ServerAddress, "version": version.Version})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		hub.Close()
		return err
	case <-ctx.Done():
	}

	logging.Info("Server shutting down", nil)
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// websocket connections are hijacked; closing the hub ends them
	hub.Close()
	err := srv.Shutdown(sctx)
	stream.Wait()
	if exporter != nil {
		exporter.Wait()
	}
	return err
}
