package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jbuehler23/eryndor-mmo/internal/catalog"
	"github.com/jbuehler23/eryndor-mmo/internal/hub"
	"github.com/jbuehler23/eryndor-mmo/internal/journal"
	"github.com/jbuehler23/eryndor-mmo/internal/persist"
	"github.com/jbuehler23/eryndor-mmo/internal/sim"
	"github.com/jbuehler23/eryndor-mmo/internal/telemetry"
	"github.com/jbuehler23/eryndor-mmo/logging"
	"github.com/jbuehler23/eryndor-mmo/logging/sinks"
)

const (
	journalKeyframeCapacity = 64
	journalMaxAge           = 5 * time.Minute
	shutdownGrace           = 10 * time.Second
)

// Server owns every long-lived component and the HTTP surface in front of
// them. Build one with New and drive it with Run.
type Server struct {
	cfg     Config
	logger  *log.Logger
	router  *logging.Router
	metrics *logging.Metrics
	store   *persist.Store
	hub     *hub.Hub
	http    *http.Server
}

// New wires the catalog, world, loop, persistence, and hub from cfg.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	router, err := buildRouter(cfg, logger)
	if err != nil {
		return nil, err
	}

	packs, err := catalog.LoadDir(cfg.ContentDir)
	if err != nil {
		router.Close(context.Background())
		return nil, fmt.Errorf("load content packs: %w", err)
	}
	cat, err := catalog.New(packs...)
	if err != nil {
		router.Close(context.Background())
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	hubCfg := hub.DefaultConfig()
	hubCfg.TickRate = cfg.TickRate
	hubCfg.CheckpointIntervalTicks = cfg.CheckpointTicks()
	hubCfg.KeyframeIntervalTicks = cfg.KeyframeTicks()

	worldCfg := sim.DefaultWorldConfig()
	worldCfg.TickRate = cfg.TickRate
	worldCfg.Seed = cfg.Seed
	world := sim.NewWorld(worldCfg, cat, journal.New(journalKeyframeCapacity, journalMaxAge), router)

	metrics := logging.NewMetrics()
	loop := sim.NewLoop(world, sim.LoopConfig{
		CommandCapacity: cfg.CommandCapacity,
		PerActorLimit:   cfg.PerActorCommands,
	}, sim.LoopHooks{}, telemetry.WrapLogger(logger), telemetry.WrapMetrics(metrics))

	var store *persist.Store
	if cfg.DatabasePath != "" {
		store, err = persist.Open(cfg.DatabasePath)
		if err != nil {
			router.Close(context.Background())
			return nil, fmt.Errorf("open character store: %w", err)
		}
	}

	h := hub.New(hubCfg, loop, store, telemetry.WrapLogger(logger))

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		router:  router,
		metrics: metrics,
		store:   store,
		hub:     h,
	}
	s.http = &http.Server{Addr: cfg.Addr, Handler: s.routes()}
	return s, nil
}

// Run starts the simulation and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	simCtx, cancelSim := context.WithCancel(ctx)
	defer cancelSim()

	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		s.hub.Run(simCtx)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("http shutdown: %v", err)
		}
	}()

	s.logger.Printf("server listening on %s (tick rate %d Hz)", s.cfg.Addr, s.cfg.TickRate)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	cancelSim()
	<-simDone

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if closeErr := s.router.Close(closeCtx); closeErr != nil {
		s.logger.Printf("log router close: %v", closeErr)
	}
	if s.store != nil {
		if closeErr := s.store.Close(); closeErr != nil {
			s.logger.Printf("store close: %v", closeErr)
		}
	}
	return err
}

func buildRouter(cfg Config, fallback *log.Logger) (*logging.Router, error) {
	logCfg := logging.DefaultConfig()
	if len(cfg.LogSinks) > 0 {
		logCfg.EnabledSinks = cfg.LogSinks
	}
	logCfg.JSON.FilePath = cfg.LogJSONPath

	available := map[string]logging.Sink{
		"console": sinks.NewConsole(os.Stdout, logCfg.Console),
	}
	if logCfg.HasSink("json") && logCfg.JSON.FilePath != "" {
		jsonSink, err := sinks.NewJSONFile(logCfg.JSON)
		if err != nil {
			return nil, fmt.Errorf("open json log sink: %w", err)
		}
		available["json"] = jsonSink
	}

	router, err := logging.NewRouter(logCfg, logging.SystemClock{}, fallback, available)
	if err != nil {
		return nil, fmt.Errorf("build log router: %w", err)
	}
	return router, nil
}
