package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dspedroborges/store-api/internal/accesslog"
	"github.com/dspedroborges/store-api/internal/auth"
	"github.com/dspedroborges/store-api/internal/config"
	"github.com/dspedroborges/store-api/internal/httpapi"
	"github.com/dspedroborges/store-api/internal/obs"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	ctx := context.Background()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Database when a DSN is configured; in-memory store otherwise so the
	// service can run locally without Postgres.
	var (
		db    *sql.DB
		store auth.Store
	)
	if cfg.DatabaseDSN != "" {
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		store = auth.NewPGStore(db)
	} else {
		log.Println("DATABASE_DSN not set; using in-memory store")
		store = auth.NewMemoryStore()
	}

	// Secret misconfiguration is fatal here, never per-request.
	tokens, err := auth.NewTokenService(cfg.AuthSecret,
		auth.WithAccessTTL(cfg.AccessTokenTTL),
		auth.WithRefreshTTL(cfg.RefreshTokenTTL),
	)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}
	sessions, err := auth.NewService(store, tokens)
	if err != nil {
		log.Fatalf("session service: %v", err)
	}

	logWriter := accesslog.New(store.AccessLog(), cfg.AccessLogBuffer)

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	janitor := auth.NewJanitor(store.Ledger(), cfg.PurgeInterval)
	go janitor.Run(janitorCtx)

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, sessions, logWriter, httpapi.Options{
		CookieDomain: cfg.CookieDomain,
		CookieSecure: cfg.CookieSecure,
		RateBurst:    cfg.RateBurst,
		RateWindow:   cfg.RateWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting store-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	stopJanitor()
	logWriter.Close()
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
