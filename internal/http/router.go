package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/cafedir/internal/auth"
	"github.com/geocoder89/cafedir/internal/config"
	"github.com/geocoder89/cafedir/internal/http/handlers"
	"github.com/geocoder89/cafedir/internal/http/middlewares"
	"github.com/geocoder89/cafedir/internal/observability"
	"github.com/geocoder89/cafedir/internal/repo/postgres"
	"github.com/geocoder89/cafedir/internal/security"
	"github.com/geocoder89/cafedir/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.LoadHTMLGlob(cfg.TemplatesGlob)

	// metrics registry is per-router so tests can build engines freely
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// wire up repositories and session plumbing
	usersRepo := postgres.NewUsersRepo(pool, prom)
	cafesRepo := postgres.NewCafesRepo(pool, prom)
	sessions := session.NewStore(rdb, cfg.SessionTTL())
	tokens := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL())

	authMW := middlewares.NewAuthMiddleware(tokens, sessions, usersRepo)

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("cafedir"))
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(prom.GinHandleMiddleware())
	r.Use(authMW.LoadCurrentUser())

	// health + metrics
	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}
	pingRedis := func() error {
		if rdb == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return session.Ping(ctx, rdb)
	}

	h := handlers.NewHealthHandler(pingDB, pingRedis)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up handlers
	render := handlers.NewPageRenderer(sessions)
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, sessions, tokens, security.HashPassword, security.CheckPassword, render, prom, cfg)
	cafesHandler := handlers.NewCafesHandler(cafesRepo, render)
	pagesHandler := handlers.NewPagesHandler(render)
	adminHandler := handlers.NewAdminUsersHandler(usersRepo, render)

	r.GET("/", cafesHandler.Home)
	r.GET("/cafes", cafesHandler.ListCafes)
	r.GET("/cafes/:id", cafesHandler.GetCafe)
	r.GET("/about", pagesHandler.About)
	r.GET("/blog", pagesHandler.Blog)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authMW.RequireAuth(), authHandler.Logout)

	r.GET("/add_cafe", authMW.RequireAuth(), cafesHandler.ShowAddCafe)
	r.POST("/add_cafe", authMW.RequireAuth(), cafesHandler.AddCafe)

	r.GET("/admin/users", authMW.RequireAdmin(), adminHandler.ListUsers)

	return r
}
