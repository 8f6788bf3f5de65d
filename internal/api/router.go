package api

import (
	"database/sql"
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/simsparts/sims-api/internal/api/handler"
	"github.com/simsparts/sims-api/internal/api/middleware"
	"github.com/simsparts/sims-api/internal/core/ports"
	"github.com/simsparts/sims-api/internal/core/service"
	mongodb "github.com/simsparts/sims-api/internal/infrastructure/db/mongo"
	"github.com/simsparts/sims-api/internal/infrastructure/db/postgres"
	redisdb "github.com/simsparts/sims-api/internal/infrastructure/db/redis"
	"github.com/simsparts/sims-api/internal/pkg/config"
)

// securityStore lets the rate-limit leg run on Redis while blocks and the
// audit log stay in Postgres.
type securityStore struct {
	ports.RateLimitStore
	ports.BlockStore
	ports.EventStore
}

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil; rate limiting then runs on Postgres alongside the rest of
// the security store.
func NewRouter(cfg *config.Config, db *mongo.Database, pg *sql.DB, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log, cfg.Debug)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("sims"))

	// --- Dependencies ---
	tokens, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.Expiry(), cfg.JWT.RefreshExpiry())
	if err != nil {
		return nil, err
	}

	var store ports.SecurityStore = postgres.NewSecurityStore(pg)
	if rdb != nil {
		store = securityStore{
			RateLimitStore: redisdb.NewRateLimiter(rdb),
			BlockStore:     store,
			EventStore:     store,
		}
	}

	userRepo := mongodb.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, tokens, store, log)
	authHandler := handler.NewAuthHandler(authService)
	securityHandler := handler.NewSecurityHandler(store, log)

	gateCfg, err := gateConfig(cfg.Security)
	if err != nil {
		return nil, err
	}
	gate := middleware.NewGate(store, tokens, gateCfg, log)
	authRequired := middleware.Auth(tokens)

	// --- Gated API routes ---
	g := e.Group("", gate.Middleware())
	g.POST("/auth/register", authHandler.Register)
	g.POST("/auth/login", authHandler.Login)
	g.POST("/auth/refresh", authHandler.Refresh)
	g.GET("/auth/me", authHandler.Me, authRequired)

	admin := g.Group("/admin/security", authRequired, middleware.RequirePermission("system", "full_access"))
	admin.POST("/blocks", securityHandler.Block)

	// --- Health probes and operational endpoints (no gate) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, pg, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

// gateConfig translates the env budgets into the gate's shape.
func gateConfig(sec config.SecurityConfig) (middleware.GateConfig, error) {
	general, err := config.ParseRate(sec.APILimit)
	if err != nil {
		return middleware.GateConfig{}, fmt.Errorf("api budget: %w", err)
	}

	actions := make(map[string]middleware.RateLimit, 3)
	for action, raw := range map[string]string{
		"login":       sec.LoginLimit,
		"register":    sec.RegisterLimit,
		"otp_request": sec.OTPLimit,
	} {
		r, err := config.ParseRate(raw)
		if err != nil {
			return middleware.GateConfig{}, fmt.Errorf("%s budget: %w", action, err)
		}
		actions[action] = middleware.RateLimit{Max: r.Max, Window: r.Window}
	}

	return middleware.GateConfig{
		Strictness:   middleware.ParseStrictness(sec.Strictness),
		GeneralLimit: middleware.RateLimit{Max: general.Max, Window: general.Window},
		ActionLimits: actions,
		Actions: map[string]string{
			"/auth/login":    "login",
			"/auth/register": "register",
		},
	}, nil
}
