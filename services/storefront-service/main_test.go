package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/slmn-lf/east-stress-store/internal/config"
	"github.com/slmn-lf/east-stress-store/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:              "127.0.0.1",
			Port:              8080,
			Environment:       "development",
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   time.Second,
		},
		Cache: config.CacheConfig{TTL: time.Minute},
		Security: config.SecurityConfig{
			AdminUsername:  "admin",
			AdminPassword:  "rahasia-sekali",
			SessionTimeout: time.Hour,
			CookieName:     "auth_token",
		},
		Upload: config.UploadConfig{
			Provider:     "memory",
			Folder:       "pre-order/products",
			MaxBytes:     1 << 20,
			MaxDimension: 1200,
			JPEGQuality:  70,
		},
		WhatsApp: config.WhatsAppConfig{CountryCode: "62"},
	}
}

func TestOpenStoreFallsBackToMemory(t *testing.T) {
	st := openStore(context.Background(), config.DatabaseConfig{})
	defer st.Close()
	if st.Mode() != store.ModeMemory {
		t.Fatalf("mode = %q, want %q", st.Mode(), store.ModeMemory)
	}

	unreachable := config.DatabaseConfig{URL: "postgres://nobody@127.0.0.1:1/none?sslmode=disable", PingTimeout: 200 * time.Millisecond}
	st = openStore(context.Background(), unreachable)
	if st.Mode() != store.ModeMemory {
		t.Fatalf("unreachable database should fall back to memory, got %q", st.Mode())
	}
}

func TestBuildServer(t *testing.T) {
	cfg := testConfig()
	srv, cleanup, err := buildServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildServer: %v", err)
	}
	defer cleanup()

	if srv.Addr != "127.0.0.1:8080" || srv.ReadHeaderTimeout != 2*time.Second || srv.MaxHeaderBytes != 1<<20 {
		t.Fatalf("unexpected server settings: %+v", srv)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"mode":"memory"`) {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("landing page: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestNewSessionsSecret(t *testing.T) {
	cfg := testConfig()
	s, err := newSessions(cfg)
	if err != nil {
		t.Fatalf("development config should generate a secret: %v", err)
	}
	if _, err := s.Login("admin", "rahasia-sekali"); err != nil {
		t.Fatalf("login with generated secret: %v", err)
	}

	cfg.Server.Environment = "production"
	if _, err := newSessions(cfg); err == nil {
		t.Fatal("production without JWT_SECRET should fail")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 0
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
