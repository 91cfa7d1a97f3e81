package main

import (
	"context"
	"os"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yukimura/org-identity-api/internal/authservice"
	"github.com/yukimura/org-identity-api/internal/config"
	"github.com/yukimura/org-identity-api/internal/database"
	"github.com/yukimura/org-identity-api/internal/handlers"
	"github.com/yukimura/org-identity-api/internal/middleware"
	"github.com/yukimura/org-identity-api/internal/repository"
	"github.com/yukimura/org-identity-api/internal/services"
	"github.com/yukimura/org-identity-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.GinMode != "release" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Blob storage for logos and avatars
	blobs, err := storage.NewS3Store(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob storage")
	}

	// Auth Service client: the system of record for identity, sessions,
	// organizations and membership.
	authClient := authservice.NewClient(cfg.AuthServiceURL, cfg.AuthServiceTimeout)

	// Repositories over the local projection tables
	userRepo := repository.NewUserRepository(database.GetDB())
	projectionRepo := repository.NewProjectionRepository(database.GetDB())

	// Services
	slugs := services.NewSlugAllocator(authClient, cfg.SlugMaxAttempts)
	orgService := services.NewOrganizationService(authClient, userRepo, projectionRepo, blobs, slugs, cfg.CreateMaxRetries)
	queries := services.NewMembershipQueries(authClient)
	userService := services.NewUserService(authClient, userRepo, blobs)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Redis store")
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions("identity_session", store))

	// Initialize handlers
	orgHandler := handlers.NewOrganizationHandler(orgService, queries)
	userHandler := handlers.NewUserHandler(userService)
	storageHandler := handlers.NewStorageHandler(blobs)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Organization Identity API is running",
		})
	})

	// API routes (all authenticated against the Auth Service)
	api := r.Group("/api")
	api.Use(middleware.RequireAuth(authClient, userRepo, cfg.SessionCacheTTL))
	{
		api.POST("/storage/upload-url", storageHandler.CreateUploadURL)

		orgs := api.Group("/organizations")
		{
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.DELETE("", orgHandler.DeleteOrganization)
			orgs.PATCH("/profile", orgHandler.UpdateProfile)
			orgs.POST("/active", orgHandler.SetActiveOrganization)
			orgs.GET("/active", orgHandler.GetActiveOrganization)
			orgs.POST("/leave", orgHandler.LeaveOrganization)
			orgs.GET("/role", orgHandler.GetOrganizationRole)
			orgs.GET("/invitations", orgHandler.ListInvitations)
		}

		users := api.Group("/users")
		{
			users.PUT("/avatar", userHandler.UpdateAvatar)
			users.PUT("/password", userHandler.SetPassword)
		}
	}

	// Start server
	log.Info().Msg("server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
