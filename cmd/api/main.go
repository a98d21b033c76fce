package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"deepcrawler/internal/config"
	"deepcrawler/internal/crawler"
	apihttp "deepcrawler/internal/http"
	"deepcrawler/internal/logger"
	"deepcrawler/internal/service"
	"deepcrawler/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl := logger.New(cfg.LogFilePath, cfg.IsProduction())
	defer zl.Sync()

	st, err := store.Open(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("store open", zap.Error(err))
	}
	defer st.Close()

	var (
		loginLimiter service.RateLimiter
		revocations  service.RevocationStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			zl.Warn("redis ping failed, using in-memory limiter and revocation store", zap.Error(err))
		} else {
			loginLimiter = service.NewRedisRateLimiter(redisClient, "auth:rl:", cfg.LoginRateWindow, cfg.LoginRateMax)
			revocations = service.NewRedisRevocationStore(redisClient)
		}
		cancel()
	}
	if loginLimiter == nil {
		loginLimiter = service.NewMemoryRateLimiter(cfg.LoginRateWindow, cfg.LoginRateMax)
	}
	if revocations == nil {
		revocations = service.NewMemoryRevocationStore()
	}

	crawlerClient := crawler.NewClient(cfg.CrawlerAPIURL, cfg.CrawlerHealthURL, cfg.CrawlerTimeout, zl)
	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL, revocations)
	userSvc := service.NewUserService(zl, st.Users, loginLimiter)
	messageSvc := service.NewMessageService(st.Messages)
	chatSvc := service.NewChatService(zl, st.Users, st.Sessions, messageSvc, crawlerClient)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := apihttp.NewRouter(zl,
		apihttp.RouterOptions{CORSOrigins: cfg.CORSOrigins, JWT: jwtSvc},
		apihttp.NewUserHandler(zl, userSvc, jwtSvc),
		apihttp.NewChatHandler(zl, chatSvc, crawlerClient),
		apihttp.NewHealthHandler(zl, st.Ping, crawlerClient.Health),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zl.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("db_driver", st.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
