package api

import (
	"net/http"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/api/handler"
	custommw "github.com/Karthik-sherigar/CodeCollab-Live/internal/api/middleware"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/config"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/realtime"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/repository/mongodb"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/repository/postgres"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/repository/redis"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/security"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, mongoClient *mongodb.Client, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	encryptor, err := security.NewEncryptorFromSecret(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid token encryption key")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	workspaceRepo := postgres.NewWorkspaceRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	githubRepo := postgres.NewGitHubRepository(db)
	eventRepo := mongodb.NewEventRepository(mongoClient)
	threadRepo := mongodb.NewThreadRepository(mongoClient)
	snapshotRepo := mongodb.NewSnapshotRepository(mongoClient)

	// Redis-backed components
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	analyticsCache := redis.NewAnalyticsCache(redisClient)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	workspaceService := service.NewWorkspaceService(workspaceRepo)
	sessionService := service.NewSessionService(
		sessionRepo,
		workspaceRepo,
		eventRepo,
		threadRepo,
		snapshotRepo,
		analyticsCache,
	)
	commentService := service.NewCommentService(threadRepo, sessionRepo, workspaceRepo, userRepo)
	githubService := service.NewGitHubService(githubRepo, encryptor, &oauth2.Config{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		RedirectURL:  cfg.GitHub.RedirectURL,
		Scopes:       []string{"repo", "read:user"},
		Endpoint:     oauthgithub.Endpoint,
	})

	// Realtime broker
	broker := realtime.NewBroker(realtime.NewHub(), realtime.NewPresence(), sessionService, eventRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	sessionHandler := handler.NewSessionHandler(sessionService, broker)
	commentHandler := handler.NewCommentHandler(commentService)
	githubHandler := handler.NewGitHubHandler(githubService, cfg.GitHub.FrontendURL)
	realtimeHandler := handler.NewRealtimeHandler(broker, jwtManager)

	// Auth middleware
	authMiddleware := custommw.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := custommw.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db, mongoClient, redisClient))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// OAuth callback; GitHub calls it without our bearer token
		r.Get("/github/callback", githubHandler.Callback)

		// Websocket endpoint; authenticates via token query parameter
		r.Get("/ws", realtimeHandler.Serve)

		// Protected routes. The request timeout applies here, never to
		// the websocket endpoint.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/auth/me", authHandler.Me)

			// GitHub integration
			r.Route("/github", func(r chi.Router) {
				r.Get("/auth", githubHandler.Auth)
				r.Get("/status", githubHandler.Status)
				r.Get("/repos", githubHandler.Repos)
				r.Post("/import", githubHandler.Import)
				r.Post("/export", githubHandler.Export)
			})

			// Workspace routes
			r.Route("/workspaces", func(r chi.Router) {
				r.Get("/", workspaceHandler.List)
				r.Post("/", workspaceHandler.Create)

				r.Route("/{workspaceID}", func(r chi.Router) {
					r.Use(custommw.WorkspaceContext)

					r.Get("/", workspaceHandler.Get)
					r.Patch("/", workspaceHandler.Update)
					r.Delete("/", workspaceHandler.Delete)

					r.Post("/members", workspaceHandler.AddMember)
					r.Delete("/members/{memberID}", workspaceHandler.RemoveMember)

					r.Get("/sessions", sessionHandler.List)
					r.Post("/sessions", sessionHandler.Create)
				})
			})

			// Session routes
			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Use(custommw.SessionContext)

				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Put("/code", sessionHandler.SaveCode)
				r.Patch("/end", sessionHandler.End)
				r.Get("/events", sessionHandler.Replay)
				r.Get("/analytics", sessionHandler.Analytics)
				r.Get("/participants", sessionHandler.Participants)

				r.Get("/comments", commentHandler.List)
				r.Post("/comments", commentHandler.Create)
			})

			// Thread routes
			r.Route("/comments/{threadID}", func(r chi.Router) {
				r.Post("/replies", commentHandler.Reply)
				r.Post("/resolve", commentHandler.Resolve)
				r.Post("/reopen", commentHandler.Reopen)
				r.Delete("/", commentHandler.Delete)
			})
		})
	})

	return r
}
