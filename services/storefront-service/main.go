// Command storefront-service runs the pre-order storefront: public pages,
// the JSON API and the admin back office.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/slmn-lf/east-stress-store/internal/api"
	"github.com/slmn-lf/east-stress-store/internal/auth"
	"github.com/slmn-lf/east-stress-store/internal/catalog"
	"github.com/slmn-lf/east-stress-store/internal/cms"
	"github.com/slmn-lf/east-stress-store/internal/config"
	"github.com/slmn-lf/east-stress-store/internal/logging"
	"github.com/slmn-lf/east-stress-store/internal/preorder"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/upload"
	"github.com/slmn-lf/east-stress-store/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("storefront-service stopped")
	}
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg *config.Config) error {
	srv, cleanup, err := buildServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Str("environment", cfg.Server.Environment).Msg("storefront-service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// buildServer wires the store, services and handlers. The returned cleanup
// closes the store.
func buildServer(ctx context.Context, cfg *config.Config) (*http.Server, func(), error) {
	st := openStore(ctx, cfg.Database)
	cleanup := func() {
		if err := st.Close(); err != nil {
			logging.Warn().Err(err).Msg("closing store")
		}
	}

	sessions, err := newSessions(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	host, err := upload.NewHost(cfg.Upload)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	var files http.Handler
	if b, ok := host.(*upload.Breaker); ok {
		if mem, ok := b.Unwrap().(*upload.MemoryHost); ok {
			files = mem
		}
	}

	products := catalog.NewService(st, cfg.Cache.TTL)
	orders := preorder.NewService(st, products, cfg.WhatsApp.CountryCode)
	content := cms.NewService(st)

	uploads := upload.NewService(host, cfg.Upload)

	pages, err := web.New(web.Deps{
		Catalog:     products,
		PreOrders:   orders,
		CMS:         content,
		Sessions:    sessions,
		Uploads:     uploads,
		CountryCode: cfg.WhatsApp.CountryCode,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	handler := api.NewRouter(api.Deps{
		Config:    cfg,
		Store:     st,
		Catalog:   products,
		PreOrders: orders,
		CMS:       content,
		Uploads:   uploads,
		Sessions:  sessions,
		Files:     files,
		Pages:     pages,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
	}
	return srv, cleanup, nil
}

// openStore prefers Postgres and falls back to the in-memory store when no
// database is configured or it cannot be reached.
func openStore(ctx context.Context, cfg config.DatabaseConfig) store.Store {
	if cfg.DSN() == "" {
		logging.Warn().Msg("no database configured, running in memory mode")
		return store.NewMemory()
	}
	pg, err := store.Connect(ctx, cfg)
	if err != nil {
		logging.Warn().Err(err).Msg("database unavailable, running in memory mode")
		return store.NewMemory()
	}
	logging.Info().Msg("connected to postgres")
	return pg
}

func newSessions(cfg *config.Config) (*auth.Sessions, error) {
	sec := cfg.Security
	creds, err := auth.NewCredentials(sec.AdminUsername, sec.AdminPassword, sec.AdminPasswordHash)
	if err != nil {
		return nil, err
	}
	if sec.AdminPasswordHash == "" && sec.AdminPassword == config.DefaultAdminPassword {
		logging.Warn().Msg("using the default admin password")
	}

	secret := sec.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		secret, err = randomSecret()
		if err != nil {
			return nil, err
		}
		logging.Warn().Msg("JWT_SECRET not set, generated an ephemeral secret; sessions end on restart")
	}
	jwtm, err := auth.NewJWTManager(secret, sec.SessionTimeout)
	if err != nil {
		return nil, err
	}
	return auth.NewSessions(creds, jwtm, auth.SessionConfig{
		CookieName: sec.CookieName,
		MaxAge:     sec.SessionTimeout,
		Secure:     cfg.IsProduction(),
	}), nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
