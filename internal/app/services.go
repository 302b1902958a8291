package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/vibed/internal/config"
	"github.com/dokzlo13/vibed/internal/db"
	"github.com/dokzlo13/vibed/internal/ledger"
	"github.com/dokzlo13/vibed/internal/lifx"
	"github.com/dokzlo13/vibed/internal/proxy"
	"github.com/dokzlo13/vibed/internal/server"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Optional persistence, nil unless ledger.enabled
	DB     *db.DB
	Ledger *ledger.Ledger

	Lifx   *lifx.Client
	Proxy  *proxy.Handler
	Server *server.Server

	wg sync.WaitGroup
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	if cfg.Ledger.Enabled {
		database, err := db.Open(cfg.Ledger.Path)
		if err != nil {
			return nil, err
		}
		s.DB = database
		s.Ledger = ledger.New(database.DB)
		log.Info().Str("path", cfg.Ledger.Path).Msg("Action ledger enabled")
	}

	// The token is read once here and lives only inside the vendor client
	s.Lifx = lifx.NewClient(cfg.Lifx.BaseURL, cfg.Lifx.Token, &http.Client{
		Timeout: cfg.Lifx.Timeout.Duration(),
	})

	proxyCfg := proxy.Config{
		DefaultSelector: cfg.Lifx.Selector,
		BreatheEnabled:  cfg.Features.BreatheEnabled(),
	}
	if s.Ledger != nil {
		proxyCfg.Recorder = NewLedgerRecorder(s.Ledger)
	}
	s.Proxy = proxy.NewHandler(s.Lifx, proxyCfg)

	deps := server.Deps{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		Path:      cfg.Server.Path,
		Proxy:     s.Proxy,
		StaticDir: cfg.Server.StaticDir,
	}
	if s.Ledger != nil {
		deps.Ledger = s.Ledger
	}

	srv, err := server.New(deps)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Server = srv

	return s, nil
}

// Start starts all background services.
// The onFatalError callback is called when the HTTP server fails to serve.
func (s *Services) Start(ctx context.Context, onFatalError func(error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Server.Run(ctx, s.cfg.ShutdownTimeout.Duration()); err != nil {
			onFatalError(err)
		}
	}()

	if s.Ledger != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.Ledger.RunCleanup(ctx, s.cfg.Ledger.CleanupInterval.Duration(), s.cfg.Ledger.Retention())
		}()
	}
}

// Stop waits for background services to exit and releases resources.
// The context passed to Start must already be cancelled.
func (s *Services) Stop() error {
	s.wg.Wait()
	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Lifx != nil {
		s.Lifx.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
