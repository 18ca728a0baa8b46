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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/apiclient"
	"github.com/harentsoaR/thalcare/internal/config"
	"github.com/harentsoaR/thalcare/internal/logger"
	"github.com/harentsoaR/thalcare/internal/portal"
	"github.com/harentsoaR/thalcare/internal/session"
)

func main() {
	cfg, err := config.LoadPortal()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Sessions ---
	var sessionStore session.Store
	if cfg.RedisAddr != "" {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logg.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		sessionStore = session.NewRedisStore(rdb)
		logg.Info("Sessions stored in Redis", zap.String("addr", cfg.RedisAddr))
	} else {
		sessionStore = session.NewMemoryStore()
		logg.Warn("REDIS_ADDR is not set, sessions are kept in memory only")
	}
	sessions := session.NewManager(sessionStore, cfg.SessionTTL)

	api := apiclient.New(cfg.APIBaseURL, apiclient.WithLogger(logg))
	srv, err := portal.New(api, sessions,
		portal.WithLogger(logg),
		portal.WithSecureCookies(cfg.SecureCookies),
	)
	if err != nil {
		logg.Fatal("Failed to build portal", zap.Error(err))
	}
	pingCtx, cancelPing := context.WithTimeout(ctx, apiclient.DefaultTimeout)
	if err := srv.Ping(pingCtx); err != nil {
		logg.Warn("API is not reachable yet", zap.String("url", cfg.APIBaseURL), zap.Error(err))
	}
	cancelPing()

	if config.IsProduction(cfg.Env) {
		gin.SetMode(gin.ReleaseMode)
	}
	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Router()}
	go func() {
		logg.Info("Starting portal", zap.String("port", cfg.Port), zap.String("api", cfg.APIBaseURL))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("Portal stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logg.Error("Graceful shutdown failed", zap.Error(err))
	}
}
