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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/config"
	"github.com/harentsoaR/thalcare/internal/handlers"
	"github.com/harentsoaR/thalcare/internal/jobs"
	"github.com/harentsoaR/thalcare/internal/logger"
	"github.com/harentsoaR/thalcare/internal/services"
	"github.com/harentsoaR/thalcare/internal/store"
	"github.com/harentsoaR/thalcare/internal/utils"
)

func main() {
	cfg, err := config.LoadAPI()
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

	// --- Database Connection ---
	var st store.Store
	if cfg.MongoURI != "" {
		client, err := store.Connect(ctx, cfg.MongoURI)
		if err != nil {
			logg.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer client.Disconnect(context.Background())
		mongoStore := store.NewMongo(client.Database(cfg.MongoDatabase))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			logg.Fatal("Failed to create indexes", zap.Error(err))
		}
		st = mongoStore
		logg.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	} else {
		st = store.NewMemory()
		logg.Warn("MONGO_URI is not set, accounts are kept in memory only")
	}

	// --- Services ---
	notificationSvc := services.NewNotificationService(cfg.TextbeltKey, cfg.TextbeltURL, logg)
	if !notificationSvc.Enabled() {
		logg.Info("TEXTBELT_API_KEY is not set, registration SMS disabled")
	}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	h := handlers.NewHandler(st, tokens, notificationSvc, logg, cfg.DonorCooldown)

	scheduler, err := jobs.NewDonorAvailability(st, cfg.DonorCooldown, logg).Start()
	if err != nil {
		logg.Fatal("Failed to start donor availability job", zap.Error(err))
	}
	defer scheduler.Stop()

	// --- Gin Router ---
	if config.IsProduction(cfg.Env) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	h.Register(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logg.Info("Starting API server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("API server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("Graceful shutdown failed", zap.Error(err))
	}
}
