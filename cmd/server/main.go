package main

import (
	"context"
	"errors"
	"fmt"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/cache"
	"go-blog-app/internal/captcha"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/gate"
	"go-blog-app/internal/handler"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/session"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log)

	// --- Pre-flight Checks ---
	if cfg.Captcha.SecretKey == "" {
		log.Fatal(errors.New("captcha secret key not set"), "Please set BLOG_CAPTCHA_SECRET_KEY.")
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Keyed Store Initialization ---
	log.Info("Connecting to the keyed store...")
	store, err := cache.New(context.Background(), cfg.Redis)
	if err != nil {
		log.Fatal(err, "Failed to connect to redis")
	}
	defer store.Close()
	log.Info("Keyed store connection successful.")

	// --- Authorization Setup ---
	log.Info("Initializing authorization...")
	enforcer, err := auth.NewEnforcer("mysql", cfg.DB.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Authorization initialized and policies seeded.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	topicRepository := data.NewTopicRepository(db)
	subjectRepository := data.NewSubjectRepository(db)
	tagRepository := data.NewTagRepository(db)
	adminRepository := data.NewAdminRepository(db)

	sessionManager := session.NewManager(store, cfg.Session)
	gateEngine := gate.New(store, cfg.Captcha.SiteKey)
	captchaVerifier := captcha.New(cfg.Captcha)

	topicService := service.NewTopicService(topicRepository, gateEngine)
	authService := service.NewAuthService(adminRepository, sessionManager)

	topicHandler := handler.NewTopicHandler(topicService, gateEngine, captchaVerifier, log)
	authHandler := handler.NewAuthHandler(authService, sessionManager.CookieName(), cfg.Session.Lifetime, cfg.Server.TLS.Enabled)
	catalogHandler := handler.NewCatalogHandler(subjectRepository, tagRepository)
	adminHandler := handler.NewAdminHandler(adminRepository)

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager)
	errorMiddleware := middleware.Error(log)

	// --- Router Setup ---
	router := handler.NewRouter(topicHandler, authHandler, catalogHandler, adminHandler, authzMiddleware, errorMiddleware)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
