package main

import (
	"context"
	"fmt"
	"net/http/pprof"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pairhub/signalhub/internal/api"
	"github.com/pairhub/signalhub/internal/bus"
	"github.com/pairhub/signalhub/internal/config"
	"github.com/pairhub/signalhub/internal/db"
	"github.com/pairhub/signalhub/internal/grant"
	"github.com/pairhub/signalhub/internal/middleware"
	"github.com/pairhub/signalhub/internal/observ"
	"github.com/pairhub/signalhub/internal/presence"
	"github.com/pairhub/signalhub/internal/repository"
	"github.com/pairhub/signalhub/internal/repository/postgres"
	"github.com/pairhub/signalhub/internal/signaling"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// ---------------------------------------------------------------
	// 3. Connect to Postgres and Redis
	//
	// context.Background() here because startup has no deadline of its
	// own — once the server is running, each request and each Session
	// carries its own context.
	// ---------------------------------------------------------------
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	redisBus, err := bus.NewRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisBus.Close()

	// ---------------------------------------------------------------
	// 4. Create repositories, assigned to their interface types — this
	// proves at compile time that every postgres.*Store satisfies the
	// repository.*Repository contract the rest of the app depends on.
	// ---------------------------------------------------------------
	pool := database.Pool()
	var userRepo repository.UserRepository = postgres.NewUserStore(pool)
	var teamRepo repository.TeamRepository = postgres.NewTeamStore(pool)
	var callRepo repository.CallRecordRepository = postgres.NewCallRecordStore(pool)

	// ---------------------------------------------------------------
	// 5. Build the signaling stack: presence, token issuer, coordinator,
	// router.
	// ---------------------------------------------------------------
	presenceReg := presence.NewRegistry(redisBus)
	tokenIssuer := grant.NewIssuer(cfg.Livekit.APIKey, cfg.Livekit.APISecret)
	coordinator := signaling.NewCoordinator(tokenIssuer, userRepo, callRepo, redisBus, logger)
	router := signaling.NewRouter(presenceReg, redisBus, userRepo, coordinator, logger)

	// ---------------------------------------------------------------
	// 6. Handlers
	// ---------------------------------------------------------------
	userHandler := api.NewUserHandler(logger)
	teammatesHandler := api.NewTeammatesHandler(userRepo, presenceReg, logger)
	watercoolerHandler := api.NewWatercoolerHandler(tokenIssuer, teamRepo, cfg.SessionSecret, cfg.Livekit.ServerURL, logger)
	sfuHandler := api.NewSFUHandler(cfg.Livekit.ServerURL)
	callHistoryHandler := api.NewCallHistoryHandler(callRepo, logger)
	websocketHandler := api.NewWebSocketHandler(router, logger)
	debugHandler := api.NewDebugHandler(tokenIssuer, userRepo, logger)

	// ---------------------------------------------------------------
	// 7. HTTP server
	// ---------------------------------------------------------------
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery())

	srv.GET("/v1/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// The one unauthenticated route beyond health: the anonymous redirect
	// is gated by its own signed, expiring token, not a bearer token.
	srv.GET("/api/watercooler/meet-redirect", watercoolerHandler.MeetRedirect)

	authGroup := srv.Group("/api/auth")
	authGroup.Use(middleware.Auth(cfg.SessionSecret, userRepo))
	{
		authGroup.GET("/websocket", websocketHandler.Upgrade)
		authGroup.GET("/me", userHandler.Me)
		authGroup.GET("/teammates", teammatesHandler.List)
		authGroup.GET("/watercooler", watercoolerHandler.Join)
		authGroup.GET("/watercooler/anonymous", watercoolerHandler.Anonymous)
		authGroup.GET("/livekit/server-url", sfuHandler.ServerURL)
		authGroup.GET("/calls/history", callHistoryHandler.List)
	}

	// Debug endpoints — pprof plus a call-token shortcut for exercising the
	// SFU integration without a real call_request/call_accept handshake.
	// Off by default; never registered unless ENABLE_DEBUG_ENDPOINTS=true.
	if cfg.Debug {
		logger.Warn("debug endpoints enabled")
		debugGroup := srv.Group("/debug")
		debugGroup.GET("/call-token", debugHandler.CallToken)
		debugGroup.GET("/pprof/", gin.WrapF(pprof.Index))
		debugGroup.GET("/pprof/cmdline", gin.WrapF(pprof.Cmdline))
		debugGroup.GET("/pprof/profile", gin.WrapF(pprof.Profile))
		debugGroup.GET("/pprof/symbol", gin.WrapF(pprof.Symbol))
		debugGroup.POST("/pprof/symbol", gin.WrapF(pprof.Symbol))
		debugGroup.GET("/pprof/trace", gin.WrapF(pprof.Trace))
		debugGroup.GET("/pprof/:name", gin.WrapF(pprof.Index))
	}

	logger.Info("starting signalhub",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		return srv.RunTLS(":"+cfg.Port, cfg.TLSCertFile, cfg.TLSKeyFile)
	}
	return srv.Run(":" + cfg.Port)
}
