package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/minigolfeveryday/mged-site/internal/config"
	"github.com/minigolfeveryday/mged-site/internal/handler"
	"github.com/minigolfeveryday/mged-site/internal/middleware"
	"github.com/minigolfeveryday/mged-site/internal/migration"
	"github.com/minigolfeveryday/mged-site/internal/repository"
	"github.com/minigolfeveryday/mged-site/internal/service"
	pkgcache "github.com/minigolfeveryday/mged-site/pkg/cache"
	"github.com/minigolfeveryday/mged-site/pkg/jwt"
	pkglogger "github.com/minigolfeveryday/mged-site/pkg/logger"
	pkgredis "github.com/minigolfeveryday/mged-site/pkg/redis"
)

// getConfigPath returns config file path based on APP_ENV
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without cache)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	postService := service.NewPostService(postRepo, cacheService)
	fetcher := service.NewHTTPChannelFetcher(cfg.Videos.FeedURL, cfg.Videos.ChannelURL)
	videoService := service.NewVideoService(videoRepo, fetcher, cacheService)
	uploadService := service.NewUploadService(cfg.Upload.Dir, cfg.Upload.PublicPath, cfg.Upload.MaxSizeMB)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService)
	videoHandler := handler.NewVideoHandler(videoService, cfg.Videos.LegacyFile)
	uploadHandler := handler.NewUploadHandler(uploadService)

	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:8081"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	if redisClient != nil && !cfg.IsDevelopment() {
		router.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mged-api", "time": time.Now().Unix()})
	})

	api := router.Group("/api")
	{
		api.GET("/videos", videoHandler.List)
		api.GET("/status", videoHandler.Status)

		auth := api.Group("/auth")
		{
			login := auth.Group("")
			if redisClient != nil {
				login.Use(middleware.RateLimit(redisClient, middleware.LoginRateLimitConfig()))
			}
			login.POST("/login", authHandler.Login)
			login.POST("/register", authHandler.Register)

			auth.GET("/me", middleware.JWTAuth(jwtManager), authHandler.Me)
			auth.POST("/logout", middleware.JWTAuth(jwtManager), authHandler.Logout)
			auth.POST("/change-password", middleware.JWTAuth(jwtManager), authHandler.ChangePassword)
		}

		blog := api.Group("/blog/posts")
		{
			blog.GET("", optionalAuth(jwtManager), postHandler.List)
			blog.GET("/:slug", optionalAuth(jwtManager), postHandler.GetBySlug)
			blog.GET("/:slug/public", optionalAuth(jwtManager), postHandler.GetPublicByID)
			blog.POST("", middleware.JWTAuth(jwtManager), postHandler.Create)
			blog.PUT("/:id", middleware.JWTAuth(jwtManager), postHandler.Update)
			blog.DELETE("/:id", middleware.JWTAuth(jwtManager), postHandler.Delete)
		}

		api.POST("/upload/image", middleware.JWTAuth(jwtManager), uploadHandler.UploadImage)

		// The bare /update path is the historic alias for the pull.
		api.POST("/update", middleware.JWTAuth(jwtManager), middleware.RequireAdmin(), videoHandler.Update)

		admin := api.Group("/admin", middleware.JWTAuth(jwtManager), middleware.RequireAdmin())
		{
			admin.POST("/pull-videos", videoHandler.Update)
			admin.POST("/update-database", videoHandler.ReimportDatabase)
			admin.GET("/users", authHandler.ListUsers)
			admin.POST("/users/:id/toggle-active", authHandler.ToggleUserActive)
		}
	}

	router.Static(cfg.Upload.PublicPath, cfg.Upload.Dir)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("API server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// optionalAuth populates the user context when a valid bearer token is
// present but never rejects the request
func optionalAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			if claims, err := jwtManager.VerifyToken(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
				c.Set("userID", claims.UserID)
				c.Set("username", claims.Username)
				c.Set("isAdmin", claims.IsAdmin)
			}
		}
		c.Next()
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
