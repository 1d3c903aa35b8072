package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/learnhub/course-marketplace/internal/api/handler"
	"github.com/learnhub/course-marketplace/internal/api/middleware"
	"github.com/learnhub/course-marketplace/internal/auth"
	"github.com/learnhub/course-marketplace/internal/core/domain"
	"github.com/learnhub/course-marketplace/internal/core/service"
	"github.com/learnhub/course-marketplace/internal/infrastructure/config"
	mongodb "github.com/learnhub/course-marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/learnhub/course-marketplace/internal/infrastructure/db/redis"
	"github.com/learnhub/course-marketplace/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	courseRepo := mongodb.NewCourseRepository(db)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	catalogCache := redisdb.NewCatalogCache(rdb, cfg.CatalogCacheTTL)

	authService := service.NewAuthService(userRepo, courseRepo, tokens, log)
	courseService := service.NewCourseService(courseRepo, userRepo, catalogCache, log)

	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(authService)
	courseHandler := handler.NewCourseHandler(courseService)

	authenticated := middleware.Auth(tokens)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	admin := e.Group("/auth/admin", authenticated, adminOnly)
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/students", adminHandler.ListStudents)
	admin.DELETE("/students/:id", adminHandler.DeleteStudent)
	admin.PUT("/students/:id", adminHandler.UpdateStudent)

	// --- Course routes ---
	e.GET("/courses", courseHandler.List)
	e.POST("/courses", courseHandler.Create, authenticated, adminOnly)
	e.PUT("/courses/:id", courseHandler.Update, authenticated, adminOnly)
	e.DELETE("/courses/:id", courseHandler.Delete, authenticated, adminOnly)
	e.POST("/courses/buy/:id", courseHandler.Buy, authenticated)
	e.GET("/courses/my", courseHandler.My, authenticated)
	e.GET("/courses/lessons/:id", courseHandler.Lessons, authenticated)

	// --- Operational endpoints ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
