package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/Samith-P/ciphercopdemo/internal/application"
	appanalyzer "github.com/Samith-P/ciphercopdemo/internal/application/analyzer"
	appauth "github.com/Samith-P/ciphercopdemo/internal/application/auth"
	apphistory "github.com/Samith-P/ciphercopdemo/internal/application/history"
	"github.com/Samith-P/ciphercopdemo/internal/config"
	"github.com/Samith-P/ciphercopdemo/internal/domain/analysis"
	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
	"github.com/Samith-P/ciphercopdemo/internal/domain/users"
	aiopenai "github.com/Samith-P/ciphercopdemo/internal/infra/ai/openai"
	mysqlp "github.com/Samith-P/ciphercopdemo/internal/infra/db/mysql"
	postgresp "github.com/Samith-P/ciphercopdemo/internal/infra/db/postgres"
	"github.com/Samith-P/ciphercopdemo/internal/infra/httpserver"
	"github.com/Samith-P/ciphercopdemo/internal/infra/providers"
	minioStore "github.com/Samith-P/ciphercopdemo/internal/infra/storage"
	whoisinfra "github.com/Samith-P/ciphercopdemo/internal/infra/whois"
	"github.com/Samith-P/ciphercopdemo/internal/middleware"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect store; the repos are interchangeable across drivers
	var db *sql.DB
	var resultRepo tests.Repository
	var userRepo users.Repository
	var sessionRepo users.SessionStore
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		resultRepo = postgresp.NewTestResultRepository(db)
		userRepo = postgresp.NewUserRepository(db)
		sessionRepo = postgresp.NewSessionRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		resultRepo = mysqlp.NewTestResultRepository(db)
		userRepo = mysqlp.NewUserRepository(db)
		sessionRepo = mysqlp.NewSessionRepository(db)
	}
	defer db.Close()

	// evidence store is optional; without it clone evidence is dropped
	var evidence providers.EvidenceStore
	if cfg.Minio.Endpoint != "" {
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
		evidence = store
	}

	// AI judgment is optional; without a key heuristics stand alone
	var judge analysis.URLJudge
	if cfg.OpenAI.APIKey != "" {
		judge = aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	var malware analysis.MalwareProvider
	var clone analysis.CloneProvider
	var scam analysis.ScamProvider
	if cfg.Providers.Mode == "fixture" {
		f := providers.NewFixture()
		malware, clone, scam = f, f, f
	} else {
		malware = providers.NewHeuristicMalwareProvider()
		clone = providers.NewChromeCloneProvider(evidence, 20*time.Second)
		scam = providers.NewKeywordScamProvider(cfg.Providers.Region)
	}

	clock := application.SystemClock{}

	analyzerSvc := &appanalyzer.Service{
		Repo:      resultRepo,
		Collector: whoisinfra.NewCollector(10 * time.Second),
		Judge:     judge,
		Malware:   malware,
		Clone:     clone,
		Scam:      scam,
		Clock:     clock,
	}
	historySvc := &apphistory.Service{Repo: resultRepo}
	authSvc := &appauth.Service{
		Users:      userRepo,
		Sessions:   sessionRepo,
		Clock:      clock,
		SessionTTL: time.Duration(cfg.Auth.SessionTTLHours) * time.Hour,
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	mux.Use(middleware.Logging)
	mux.Use(middleware.CollectMetrics)
	if cfg.RateLimit.Capacity > 0 {
		mux.Use(middleware.RateLimit(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Mount("/", httpserver.NewRouter(analyzerSvc, historySvc, authSvc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

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
