package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/finboard/finboard/apps/server/config"
	"github.com/finboard/finboard/apps/server/routes"
	"github.com/finboard/finboard/apps/server/services"
	"github.com/finboard/finboard/pkg/db"
	"github.com/finboard/finboard/pkg/flog"
	"github.com/finboard/finboard/pkg/fstore"
	"github.com/finboard/finboard/pkg/kv"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func main() {
	ctx := context.Background()
	logger := flog.NewDefault()

	cfg, err := config.ValidateEnv()
	if err != nil {
		logger.Fatalf("%v", err)
	}
	cfg.Print(func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, format, args...)
	})

	database, err := db.New(ctx, db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	defer database.Close()

	var kvStore kv.Store
	if cfg.RedisAddr != "" {
		kvStore, err = kv.NewValkeyStore(kv.ValkeyConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
	} else {
		logger.Info("REDIS_ADDR not set, using in-process state store")
		kvStore = kv.NewMemoryStore()
	}
	defer kvStore.Close()

	var assets fstore.Store
	var localAssets *fstore.LocalStore
	switch cfg.AvatarBackend {
	case "s3":
		s3, err := fstore.NewS3Store(fstore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			logger.Fatalf("failed to initialize s3 storage: %v", err)
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			logger.Fatalf("failed to ensure s3 bucket: %v", err)
		}
		assets = s3
	default:
		localAssets, err = fstore.NewLocalStore(cfg.UploadDir, cfg.BaseURL)
		if err != nil {
			logger.Fatalf("failed to initialize upload directory: %v", err)
		}
		assets = localAssets
	}

	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	router.Use(httprate.LimitByIP(cfg.RateLimit, time.Duration(cfg.RateLimitWindow)*time.Second))

	if localAssets != nil {
		dir := localAssets.Dir()
		router.Handle("/"+dir+"/*", http.StripPrefix("/"+dir+"/",
			http.FileServer(http.Dir(dir))))
	}

	humaConfig := huma.DefaultConfig("finboard", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "JWT token from /auth/login or /auth/register",
		},
	}

	api := humachi.New(router, humaConfig)

	svcs := services.NewServices(cfg, database, kvStore, assets, logger)

	api.UseMiddleware(svcs.IAM.Middleware(api))
	routes.RegisterAPI(api, cfg, svcs)

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server starting", "addr", addr)
	logger.Info("openapi docs", "url", cfg.BaseURL+"/docs")

	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
