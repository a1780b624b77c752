package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vehiclerules/internal/api"
	"vehiclerules/internal/audit"
	"vehiclerules/internal/auth"
	"vehiclerules/internal/config"
	mydb "vehiclerules/internal/db"
	"vehiclerules/internal/store"
	"vehiclerules/internal/telemetry"
	"vehiclerules/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	telemetry.Init()

	ctx := context.Background()

	// The store and the audit sink share one backend: both ride the same
	// pool on postgres, both stay in-process on memory.
	var (
		st   store.Store
		sink audit.Sink
	)
	switch cfg.StoreType {
	case "postgres":
		pool, err := mydb.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("db unreachable: %v", err)
		}
		if err := mydb.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("db schema: %v", err)
		}
		st = store.NewPostgresStore(pool)
		sink = audit.NewPostgresSink(pool)
	case "memory":
		st = store.NewMemoryStore()
		sink = audit.NewMemorySink()
	default:
		log.Fatalf("unsupported store type: %s", cfg.StoreType)
	}
	defer st.Close()

	recorder := audit.NewRecorder(sink, cfg.AuditQueueSize)
	defer recorder.Close()

	validator := validation.NewService(st, recorder)

	srvAPI := api.NewServer(api.Options{
		Store:          st,
		Validator:      validator,
		Admin:          auth.Admin{Key: cfg.AdminAPIKey, KeyHash: cfg.AdminAPIKeyHash},
		RateLimitPerIP: cfg.RateLimitPerIP,
		DefaultActor:   cfg.DefaultRuleActor,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		log.Printf("metrics on %s", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics server: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = metricsSrv.Shutdown(ctxShut)
	log.Println("stopped")
}
