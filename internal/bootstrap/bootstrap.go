package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	appControllers "github.com/yigit/schoolhub/internal/app/controllers"
	appMigrations "github.com/yigit/schoolhub/internal/app/migrations"
	appRepos "github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/app/repositories/inmem"
	appRoutes "github.com/yigit/schoolhub/internal/app/routes"
	appServices "github.com/yigit/schoolhub/internal/app/services"
	"github.com/yigit/schoolhub/internal/config"
	"github.com/yigit/schoolhub/internal/db"
	appMiddleware "github.com/yigit/schoolhub/internal/middleware"
	pkgAuth "github.com/yigit/schoolhub/internal/pkg/auth"
	"github.com/yigit/schoolhub/internal/pkg/cache"
	"github.com/yigit/schoolhub/internal/pkg/helpers"
	"github.com/yigit/schoolhub/internal/pkg/logger"
	"github.com/yigit/schoolhub/internal/pkg/tracing"
	"github.com/yigit/schoolhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	VacancyService      appServices.VacancyService
	PromotionService    appServices.PromotionService
	RollNumberService   appServices.RollNumberService
	StudentService      appServices.StudentService
	ClassService        appServices.ClassService
	StudentController   *appControllers.StudentController
	PromotionController *appControllers.PromotionController
	ClassController     *appControllers.ClassController
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Repos               *appRepos.Repositories
	Cache               cache.Cache
	JWTService          *pkgAuth.JWTService
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads .env, the configuration file and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupTracing installs the tracer provider when tracing is enabled.
func SetupTracing(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (tracing.ShutdownFunc, error) {
	shutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Server.Mode,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize tracing")
		return nil, err
	}
	if cfg.Tracing.Enabled {
		lgr.Info().Str("service", cfg.Tracing.ServiceName).Float64("sampleRatio", cfg.Tracing.SampleRatio).Msg("Tracing enabled")
	}
	return shutdown, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, cfg.Database.MigrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupRepositories picks the store for the configured driver and seeds default classes.
// The returned database is nil for the memory driver.
func SetupRepositories(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, *db.PostgresDB, error) {
	var (
		repos    *appRepos.Repositories
		database *db.PostgresDB
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using in-memory store, data is lost on restart")
		store := inmem.NewStore()
		repos = &appRepos.Repositories{StudentRepository: store, ClassRepository: store}
	default:
		var err error
		database, err = SetupDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, nil, err
		}
		repos = appRepos.NewRepositories(database)
	}

	if cfg.Database.Seed {
		if err := seed.CreateDefaultData(ctx, repos.ClassRepository, lgr); err != nil {
			// Log the error but don't fail the startup
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return repos, database, nil
}

// SetupCache connects the occupancy cache. Without redis, counts always come from the store.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.Cache, func() error, error) {
	if !cfg.Redis.Enabled {
		return cache.Noop{}, func() error { return nil }, nil
	}

	redisCache, err := cache.NewRedis(ctx, cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		return nil, nil, err
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Occupancy cache connected to redis")
	return redisCache, redisCache.Close, nil
}

// BuildDependencies initializes application services, middleware and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, occupancyCache cache.Cache, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{
		Repos:  repos,
		Cache:  occupancyCache,
		Logger: lgr,
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.VacancyService = appServices.NewVacancyService(
		repos.StudentRepository,
		repos.ClassRepository,
		occupancyCache,
		helpers.ParseDuration(cfg.Redis.OccupancyTTL, 30*time.Second),
		lgr,
	)
	deps.PromotionService = appServices.NewPromotionService(
		repos.StudentRepository,
		repos.ClassRepository,
		deps.VacancyService,
		cfg.Promotion.MaxBatchSize,
		lgr,
	)
	deps.RollNumberService = appServices.NewRollNumberService(repos.StudentRepository, repos.ClassRepository, lgr)
	deps.StudentService = appServices.NewStudentService(
		repos.StudentRepository,
		repos.ClassRepository,
		deps.VacancyService,
		cfg.Bulk.Concurrency,
		lgr,
	)
	deps.ClassService = appServices.NewClassService(repos.ClassRepository)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.PromotionController = appControllers.NewPromotionController(deps.PromotionService, deps.RollNumberService)
	deps.ClassController = appControllers.NewClassController(deps.ClassService, deps.VacancyService)

	return deps
}

// corsConfig builds the CORS policy for the operator UI.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	appMiddleware.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	router.Use(appMiddleware.RequestLogger(lgr))
	if len(cfg.CORS.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))
	}

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.StudentController,
		deps.PromotionController,
		deps.ClassController,
		deps.AuthMiddleware,
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "driver": cfg.Database.Driver})
	})

	return router
}
