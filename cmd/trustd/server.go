package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/countstore"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/engine"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/event"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/rollup"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/router"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/scorestore"
)

type ServerConfig struct {
	Logger         *slog.Logger
	RedisURL       string
	SnapshotDir    string
	RollupInterval time.Duration
	HistoryLimit   int
}

// Server wires the full pipeline behind one router instance and fronts it
// with a small read-only admin API.
type Server struct {
	logger *slog.Logger
	router *router.Router
	casino *engine.Engine
	domain *engine.Engine
	degen  *engine.Engine
	rollup *rollup.Service
	echo   *echo.Echo
}

func NewServer(cfg ServerConfig) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var scores scorestore.ScoreStore
	var counters countstore.CountStore
	if cfg.RedisURL != "" {
		var err error
		scores, err = scorestore.NewRedisScoreStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis score store: %w", err)
		}
		counters, err = countstore.NewRedisCountStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis count store: %w", err)
		}
		logger.Info("scores and counters backed by redis")
	} else {
		scores = scorestore.NewMemScoreStore()
		counters = countstore.NewMemCountStore()
	}

	r := router.New(logger, cfg.HistoryLimit)

	casino, err := engine.NewCasinoEngine(logger, r, scores, counters)
	if err != nil {
		return nil, err
	}
	domain, err := engine.NewDomainEngine(logger, r, scores, counters)
	if err != nil {
		return nil, err
	}
	degen, err := engine.NewDegenEngine(logger, r, scores, counters)
	if err != nil {
		return nil, err
	}

	var snaps *rollup.SnapshotStore
	if cfg.SnapshotDir != "" {
		snaps, err = rollup.NewSnapshotStore(cfg.SnapshotDir)
		if err != nil {
			return nil, fmt.Errorf("initializing snapshot store: %w", err)
		}
	}
	svc, err := rollup.NewService(logger, r, snaps, rollup.Config{
		Interval: cfg.RollupInterval,
	})
	if err != nil {
		return nil, err
	}

	srv := &Server{
		logger: logger,
		router: r,
		casino: casino,
		domain: domain,
		degen:  degen,
		rollup: svc,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.GET("/_health", srv.handleHealth)
	e.GET("/trust/:kind/:entity", srv.handleBreakdown)
	e.GET("/trust/:kind/:entity/explain", srv.handleExplain)
	e.GET("/entities/:kind", srv.handleEntities)
	e.GET("/alerts", srv.handleAlerts)
	e.GET("/events", srv.handleEvents)
	e.GET("/sparklines/:entity", srv.handleSparkline)
	e.GET("/stats", srv.handleStats)
	srv.echo = e

	return srv, nil
}

func (s *Server) RunAPI(bind string) error {
	if err := s.echo.Start(bind); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) engineFor(kind string) *engine.Engine {
	switch scorestore.Kind(kind) {
	case scorestore.KindCasino:
		return s.casino
	case scorestore.KindDomain:
		return s.domain
	case scorestore.KindDegen:
		return s.degen
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBreakdown(c echo.Context) error {
	eng := s.engineFor(c.Param("kind"))
	if eng == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown kind"})
	}
	v, err := eng.GetBreakdown(c.Request().Context(), c.Param("entity"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleExplain(c echo.Context) error {
	eng := s.engineFor(c.Param("kind"))
	if eng == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown kind"})
	}
	exp, err := eng.ExplainScore(c.Request().Context(), c.Param("entity"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exp)
}

func (s *Server) handleEntities(c echo.Context) error {
	eng := s.engineFor(c.Param("kind"))
	if eng == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown kind"})
	}
	entities, err := eng.Entities(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"entities": entities})
}

func (s *Server) handleAlerts(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"alerts": s.rollup.Alerts()})
}

func (s *Server) handleEvents(c echo.Context) error {
	var filter router.HistoryFilter
	if t := c.QueryParam("type"); t != "" {
		filter.Type = event.Type(t)
	}
	if l := c.QueryParam("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad limit"})
		}
		filter.Limit = limit
	}
	return c.JSON(http.StatusOK, map[string]any{"events": s.router.GetHistory(filter)})
}

func (s *Server) handleSparkline(c echo.Context) error {
	entity := c.Param("entity")
	series := s.rollup.Sparkline(entity)
	return c.JSON(http.StatusOK, map[string]any{"entity": entity, "deltas": series})
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.router.Stats())
}
