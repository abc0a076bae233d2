package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	rediscache "github.com/showtrail/agjournal-backend/internal/clients/redis"
	"github.com/showtrail/agjournal-backend/internal/db"
	"github.com/showtrail/agjournal-backend/internal/handlers"
	"github.com/showtrail/agjournal-backend/internal/logger"
	"github.com/showtrail/agjournal-backend/internal/middleware"
	"github.com/showtrail/agjournal-backend/internal/observability"
	"github.com/showtrail/agjournal-backend/internal/repos"
	"github.com/showtrail/agjournal-backend/internal/server"
	"github.com/showtrail/agjournal-backend/internal/services"
	"github.com/showtrail/agjournal-backend/internal/utils"
)

const serviceName = "agjournal-backend"

func main() {
	ctx := context.Background()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Redis
	cacheStore, err := rediscache.NewCacheStore(log)
	if err != nil {
		log.Error("Redis init failed", "error", err)
		os.Exit(1)
	}
	defer cacheStore.Close()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	prefsRepo := repos.NewUserPreferencesRepo(thePG, log)
	templateRepo := repos.NewSuggestionTemplateRepo(thePG, log)
	eventRepo := repos.NewAnalyticsEventRepo(thePG, log)
	animalRepo := repos.NewAnimalRepo(thePG, log)
	journalRepo := repos.NewJournalEntryRepo(thePG, log)

	// Catalog seed
	if err := services.SeedTemplateCatalog(ctx, log, templateRepo); err != nil {
		log.Warn("Template catalog seed failed", "error", err)
	}

	// Services
	log.Info("Setting up Services from main...")
	genClient, err := services.NewGenerationClient(log)
	if err != nil {
		log.Error("Could not init GenerationClient", "error", err)
		os.Exit(1)
	}
	fallbackService, err := services.NewFallbackService()
	if err != nil {
		log.Error("Could not init FallbackService", "error", err)
		os.Exit(1)
	}
	cacheService := services.NewSuggestionCacheService(log, cacheStore)
	personalizer := services.NewPersonalizerService(rand.New(rand.NewSource(time.Now().UnixNano())))
	gateService := services.NewGateService(thePG, log, eventRepo)
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	trendService := services.NewTrendService(thePG, log, eventRepo)
	feedbackService := services.NewFeedbackService(thePG, log, userRepo, prefsRepo, templateRepo, eventRepo, trendService)
	suggestionService := services.NewSuggestionService(
		thePG,
		log,
		userRepo,
		prefsRepo,
		templateRepo,
		animalRepo,
		journalRepo,
		eventRepo,
		cacheService,
		personalizer,
		fallbackService,
		gateService,
		genClient,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, trendService)
	animalHandler := handlers.NewAnimalHandler(animalRepo)
	journalHandler := handlers.NewJournalHandler(journalRepo)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:       serviceName,
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		UserHandler:       userHandler,
		SuggestionHandler: suggestionHandler,
		FeedbackHandler:   feedbackHandler,
		AnimalHandler:     animalHandler,
		JournalHandler:    journalHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
