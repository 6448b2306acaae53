package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/store"
	"github.com/vovakirdan/wirechat-relay/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/wirechat-relay/internal/transport/http"
	"github.com/vovakirdan/wirechat-relay/internal/uploads"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	scheduler       *uploads.Scheduler
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	// Initialize database store
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	verifier, err := auth.NewCodeVerifier(cfg.AdminCode)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init admin verifier: %w", err)
	}
	if !verifier.Enabled() {
		logger.Warn().Msg("ADMIN_CODE is not set, admin commands are disabled")
	}

	hub, err := core.NewHub(core.HubConfig{
		Rooms:             cfg.Rooms,
		DefaultRoom:       cfg.DefaultRoom,
		HistoryLimit:      cfg.HistoryLimit,
		RateLimitInterval: cfg.RateLimitInterval,
	}, verifier, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init hub: %w", err)
	}

	storage, err := uploads.NewStorage(cfg.UploadDir)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init uploads: %w", err)
	}
	scheduler := uploads.NewScheduler(clock.New(), cfg.UploadTTL, st, logger)

	server := transporthttp.NewServer(hub, transporthttp.Files{
		Storage:   storage,
		Scheduler: scheduler,
	}, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		scheduler:       scheduler,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	resumed, err := a.scheduler.Resume(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to resume pending upload deletions")
	} else if resumed > 0 {
		a.log.Info().Int("uploads", resumed).Msg("resumed pending upload deletions")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Strs("rooms", a.hub.Rooms()).Msg("relay listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup(stopHub)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		// Hijacked WebSocket connections are not tracked by Shutdown; closing
		// the hub ends each session with a close frame.
		stopHub()
		<-a.hub.Done()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup(stopHub)
			return err
		}

		a.cleanup(stopHub)
		return <-serverErr
	}
}

// cleanup stops the hub and deletion timers and closes the database.
func (a *App) cleanup(stopHub context.CancelFunc) {
	stopHub()
	a.scheduler.Stop()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
