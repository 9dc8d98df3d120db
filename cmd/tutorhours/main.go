package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campus-tools/tutor-hours-api/api/swagger"
	"github.com/campus-tools/tutor-hours-api/internal/handler"
	"github.com/campus-tools/tutor-hours-api/internal/middleware"
	"github.com/campus-tools/tutor-hours-api/internal/repository"
	"github.com/campus-tools/tutor-hours-api/internal/router"
	"github.com/campus-tools/tutor-hours-api/internal/service"
	"github.com/campus-tools/tutor-hours-api/pkg/cache"
	"github.com/campus-tools/tutor-hours-api/pkg/config"
	"github.com/campus-tools/tutor-hours-api/pkg/database"
	"github.com/campus-tools/tutor-hours-api/pkg/logger"
	corsmiddleware "github.com/campus-tools/tutor-hours-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-tools/tutor-hours-api/pkg/middleware/requestid"
)

// @title Tutor Hours API
// @version 1.0.0
// @description Campus tutoring-hours directory: TAs publish weekly availability, visitors browse it by day or course.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Availability.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, availability caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Availability.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	taRepo := repository.NewTARepository(db)
	hourRepo := repository.NewHourRepository(db)

	authService := service.NewAuthService(userRepo, courseRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	availabilityService := service.NewAvailabilityService(hourRepo, taRepo, courseRepo, cacheService, logr)
	hourService := service.NewHourService(hourRepo, taRepo, cacheService, validate, logr)
	taService := service.NewTAService(taRepo, hourRepo, courseRepo, cacheService, validate, logr)
	courseService := service.NewCourseService(courseRepo, validate, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	router.Setup(r, cfg.APIPrefix, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Availability: handler.NewAvailabilityHandler(availabilityService),
		Hours:        handler.NewHourHandler(hourService),
		TAs:          handler.NewTAHandler(taService),
		Courses:      handler.NewCourseHandler(courseService),
	}, authService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
