package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"researchnest/internal/ai"
	"researchnest/internal/config"
	"researchnest/internal/database"
	"researchnest/internal/handlers"
	"researchnest/internal/repository"
	"researchnest/internal/security"
	"researchnest/internal/service"
	"researchnest/internal/storage"
)

func main() {
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if err := db.SeedBadWords(); err != nil {
		log.Printf("Warning: Failed to seed bad words filter: %v", err)
	}

	ctx := context.Background()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	rewardsRepo := repository.NewRewardsRepository(db)
	researchRepo := repository.NewResearchRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// External services; each one logs and disables itself when unconfigured
	store, err := storage.NewS3Store(ctx, storage.Config{
		Region:       cfg.AWSRegion,
		Bucket:       cfg.S3Bucket,
		Endpoint:     cfg.S3Endpoint,
		UsePathStyle: cfg.S3UsePathStyle,
		Debug:        cfg.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	completer := ai.NewMoonshotClient(cfg.MoonshotAPIKey, cfg.MoonshotBaseURL, cfg.MoonshotModel)
	images := ai.NewReplicateClient(cfg.ReplicateAPIToken, cfg.ReplicateBaseURL)
	if cfg.MoonshotAPIKey == "" {
		log.Println("AI assistant disabled: MOONSHOT_API_KEY not configured")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, security.NewTokenManager(cfg.SessionSecret, cfg.SessionDuration), emailService)
	familyService := service.NewFamilyService(userRepo, familyRepo, projectRepo, rewardsRepo, researchRepo, noteRepo, db)
	projectService := service.NewProjectService(projectRepo, userRepo, familyRepo, researchRepo, noteRepo, chatRepo, store, cfg.CoverImageMaxBytes)
	researchService := service.NewResearchService(researchRepo, projectService, completer)
	noteService := service.NewNoteService(noteRepo, projectService)
	chatService := service.NewChatService(chatRepo, projectService, completer)
	generateService := service.NewGenerateService(completer, images)
	mediaService := service.NewMediaService(store)

	stop := make(chan struct{})
	limiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, stop)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, security.NewCSRFGenerator(cfg.CSRFSecret), limiter)
	router := handlers.NewRouter(middleware, handlers.Handlers{
		Auth:     handlers.NewAuthHandler(authService, middleware),
		Family:   handlers.NewFamilyHandler(familyService),
		Project:  handlers.NewProjectHandler(projectService, researchService, noteService),
		Chat:     handlers.NewChatHandler(chatService),
		Generate: handlers.NewGenerateHandler(generateService),
		Media:    handlers.NewMediaHandler(mediaService),
		Page:     handlers.NewPageHandler(),
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", handlers.CSRFHeaderName},
		AllowCredentials: true,
		Debug:            cfg.Debug,
	}).Handler(router)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		// cover generation chains a completion and an image prediction, each capped at ai.DefaultTimeout
		WriteTimeout: 2*ai.DefaultTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go cleanupExpiredResetTokens(authService, stop)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	close(stop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

// cleanupExpiredResetTokens periodically removes expired password reset tokens
func cleanupExpiredResetTokens(authService *service.AuthService, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredPasswordResetTokens(); err != nil {
				log.Printf("Error cleaning up expired reset tokens: %v", err)
			}
		}
	}
}
