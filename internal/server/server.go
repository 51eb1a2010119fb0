package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/voyagent/voyagent/config"
	agentcore "github.com/voyagent/voyagent/internal/agent/core"
	agenttele "github.com/voyagent/voyagent/internal/agent/telemetry"
	"github.com/voyagent/voyagent/internal/store"
)

// Run starts the HTTP API. The orchestrator is a single shared instance;
// the Postgres archive and Redis cache are attached only when configured,
// so the server comes up fine on nothing but mock data.
func Run(cfg *appconfig.Config, addr string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()

	tele := agenttele.New(cfg.Telemetry, nil)
	orch, err := agentcore.NewOrchestrator(cfg, tele)
	if err != nil {
		return err
	}
	defer orch.Close()

	var archive *store.Store
	if cfg.Storage.Postgres.Enabled() {
		dsn, err := cfg.Storage.Postgres.DSN()
		if err != nil {
			return err
		}
		if err := store.Migrate("file://migrations", dsn, "up", 0); err != nil {
			baseLogger.Printf("migrations: %v", err)
		}
		archive, err = store.NewWithDSN(ctx, dsn)
		if err != nil {
			return err
		}
		defer archive.Close()
	}

	var cache *ResultCache
	if cfg.Storage.Redis.Enabled() {
		cache, err = NewResultCache(ctx, cfg.Storage.Redis)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	th := &TripsHandler{Orchestrator: orch, Archive: archive, Cache: cache}
	api := e.Group("/api")
	trips := api.Group("/trips")
	if cfg.Server.JWTSecret != "" {
		trips.Use(AuthMiddleware([]byte(cfg.Server.JWTSecret)))
	}
	th.Register(trips)

	if addr == "" {
		addr = cfg.Server.Address
	}
	baseLogger.Printf("listening on %s", addr)
	return e.Start(addr)
}
