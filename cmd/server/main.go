package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailPkg "attendance/internal/adapters/email"
	web "attendance/internal/adapters/http"
	"attendance/internal/adapters/http/perf"
	"attendance/internal/adapters/http/session"
	"attendance/internal/adapters/metrics"
	"attendance/internal/adapters/storage"
	attendanceStore "attendance/internal/adapters/storage/attendance"
	participantStore "attendance/internal/adapters/storage/participant"
	"attendance/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.InitDB(ctx, db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	slog.Info("schema_event", "event", "schema_ready", "path", cfg.DBPath)

	// Performance instrumentation: wrap DB with timing, create collector
	m := metrics.New()
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, m)

	stores := &web.Stores{
		DB:           timedDB,
		Participants: participantStore.NewSQLiteStore(timedDB),
		Attendance:   attendanceStore.NewSQLiteStore(timedDB),
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("config_event", "event", "email_sender", "backend", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("config_event", "event", "email_sender", "backend", "noop", "detail", "RESEND_API_KEY is not set, notices are disabled")
		}
	}

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to configure sessions: %v", err)
	}

	handler, err := web.NewMux(ctx, web.Config{
		Secret:             cfg.Secret,
		SecureCookies:      cfg.IsProduction(),
		DisableCSRF:        cfg.DisableCSRF,
		NotifyAbsentees:    cfg.NotifyAbsentees,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
	}, stores, web.Deps{
		Sessions: sessions,
		Sender:   sender,
		Metrics:  m,
		Perf:     collector,
	})
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("internal_error", "event", "shutdown_failed", "error", err)
		}
	}()

	slog.Info("server starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "sessions", cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	slog.Info("server stopped")
}

func newLogger(cfg config.App) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newSessionStore(ctx context.Context, cfg config.App) (session.Store, error) {
	opts := session.Options{TTL: cfg.SessionTTL, Secure: cfg.IsProduction()}
	switch cfg.SessionBackend {
	case config.SessionMemory:
		return session.NewMemoryStore(opts), nil
	case config.SessionRedis:
		store := session.NewRedisStore(session.NewRedisClient(cfg.RedisAddr), opts)
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return session.NewCookieStore(cfg.Secret, opts)
	}
}
