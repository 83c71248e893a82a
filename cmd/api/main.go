package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/damoang/emoji-backend/internal/config"
	"github.com/damoang/emoji-backend/internal/handler"
	"github.com/damoang/emoji-backend/internal/middleware"
	"github.com/damoang/emoji-backend/internal/migration"
	"github.com/damoang/emoji-backend/internal/repository"
	"github.com/damoang/emoji-backend/internal/routes"
	"github.com/damoang/emoji-backend/internal/service"
	pkgcache "github.com/damoang/emoji-backend/pkg/cache"
	"github.com/damoang/emoji-backend/pkg/jwt"
	pkglogger "github.com/damoang/emoji-backend/pkg/logger"
	pkgredis "github.com/damoang/emoji-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Emoji Backend API
// @version         1.0
// @description     Personal emoji collection service - named groups with an "all" archive group
//
// @license.name    MIT
//
// @host            localhost:8082
// @BasePath        /api/v2
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
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
	pkglogger.Init(env)
	zlog := pkglogger.GetLogger()
	zlog.Info().Str("env", env).Strs("dotenv", dotenvFiles).Msg("starting emoji-backend")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	zlog.Info().Msg("connected to MySQL")

	// Redis (optional - the service works without it, cache simply misses)
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		zlog.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		redisClient = nil
	} else {
		zlog.Info().Msg("connected to Redis")
	}
	cacheService := pkgcache.NewService(redisClient)

	// JWT Manager
	jwtManager := jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)

	// Router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))

	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "emoji-backend",
			"cache":   cacheService.IsAvailable(),
			"time":    time.Now().Unix(),
		})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Wiring
	emojiRepo := repository.NewEmojiRepository(db)
	groupRepo := repository.NewEmojiGroupRepository(db)
	itemRepo := repository.NewEmojiGroupItemRepository(db)

	emojiService := service.NewEmojiService(emojiRepo)
	groupService := service.NewEmojiGroupService(db, groupRepo, itemRepo, emojiService, cacheService)

	emojiHandler := handler.NewEmojiHandler(groupService)
	routes.Setup(router, emojiHandler, jwtManager)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zlog.Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// initDB opens the MySQL connection and configures the pool
func initDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
