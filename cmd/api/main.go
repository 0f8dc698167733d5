package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/rfp-compare/internal/application"
	appcomparison "github.com/bryanwahyu/rfp-compare/internal/application/comparison"
	"github.com/bryanwahyu/rfp-compare/internal/config"
	"github.com/bryanwahyu/rfp-compare/internal/domain/analysis"
	"github.com/bryanwahyu/rfp-compare/internal/infra/ai/openai"
	filestore "github.com/bryanwahyu/rfp-compare/internal/infra/db/file"
	mysqlstore "github.com/bryanwahyu/rfp-compare/internal/infra/db/mysql"
	pgstore "github.com/bryanwahyu/rfp-compare/internal/infra/db/postgres"
	"github.com/bryanwahyu/rfp-compare/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/rfp-compare/internal/infra/storage"
	"github.com/bryanwahyu/rfp-compare/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// init analysis store per configured driver
	var repo analysis.Repository
	checkers := map[string]middleware.HealthChecker{}
	switch cfg.Store.Driver {
	case "file":
		store, err := filestore.New(cfg.Store.File)
		if err != nil {
			log.Fatalf("file store init error: %v", err)
		}
		repo = store
		checkers["store"] = &middleware.FileStoreHealthChecker{Path: cfg.Store.File}
	case "mysql":
		db, err := mysqlstore.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		repo = mysqlstore.NewAnalysisRepository(db)
		checkers["store"] = &middleware.DatabaseHealthChecker{DB: db}
	case "postgres":
		db, err := pgstore.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		repo = pgstore.NewAnalysisRepository(db)
		checkers["store"] = &middleware.DatabaseHealthChecker{DB: db}
	default:
		log.Fatalf("unknown store driver: %s", cfg.Store.Driver)
	}

	// init minio artifact store (optional)
	var artifacts analysis.ArtifactStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		artifacts = store
	}

	// init validator client
	validator := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.DeepResearchModel)

	// init service
	svc := &appcomparison.Service{
		Repo:      repo,
		Validator: validator,
		Artifacts: artifacts,
		Clock:     application.SystemClock{},
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(60, 10))
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKeys))
	mux.Mount("/", httpserver.NewRouter(svc, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
