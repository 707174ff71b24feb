package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rasadhq/rasad/internal/queue"
	mid "github.com/rasadhq/rasad/internal/server/middleware"
	"github.com/rasadhq/rasad/internal/util"
	"github.com/rasadhq/rasad/pkg/analysis"
	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/cache"
	"github.com/rasadhq/rasad/pkg/logger"
	storepgx "github.com/rasadhq/rasad/pkg/store/pgx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func runMigrations() {
	migrationsDir := util.GetEnvString("MIGRATIONS_DIR", "file://migrations")
	m, err := migrate.New(migrationsDir, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to initialize migrations", "err", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMigrations()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	var progressCache cache.ProgressCache = cache.Noop{}
	if addr := util.GetEnv("REDIS_ADDR"); addr != "" {
		redisCache := cache.NewRedisCache(cache.RedisCacheParams{
			Addr:     addr,
			Password: util.GetEnv("REDIS_PASSWORD"),
			DB:       util.GetEnvInt("REDIS_DB", 0),
		})
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis unreachable, progress cache disabled", "err", err)
		} else {
			defer redisCache.Close()
			progressCache = redisCache
		}
	}

	brainClient := brain.NewClient(brain.ClientParams{
		BaseURL: util.GetEnvString("BRAIN_URL", "http://localhost:8000"),
		Timeout: util.GetEnvDuration("BRAIN_TIMEOUT", 0),
	})

	analyses := storepgx.NewAnalysisStorage(storepgx.NewAnalysisStorageParams{Conn: conn})
	results := storepgx.NewResultStorage(storepgx.NewResultStorageParams{Conn: conn})
	posts := storepgx.NewPostStorage(storepgx.NewPostStorageParams{Conn: conn})
	graph := storepgx.NewGraphStorage(storepgx.NewGraphStorageParams{Conn: conn})
	trendStore := storepgx.NewTrendStorage(storepgx.NewTrendStorageParams{Conn: conn})
	authors := storepgx.NewAuthorStorage(storepgx.NewAuthorStorageParams{Conn: conn})
	dataSources := storepgx.NewDataSourceStorage(storepgx.NewDataSourceStorageParams{Conn: conn})
	dashboards := storepgx.NewDashboardStorage(storepgx.NewDashboardStorageParams{Conn: conn})
	users := storepgx.NewUserStorage(storepgx.NewUserStorageParams{Conn: conn})

	publisher := queue.NewPublisher(ch)
	orchestrator := analysis.NewOrchestrator(analysis.OrchestratorParams{
		Analyses: analyses,
		Results:  results,
		Posts:    posts,
		Brain:    brainClient,
		Cache:    progressCache,
		Enqueuer: publisher,
		MaxPosts: util.GetEnvInt("ANALYSIS_MAX_POSTS", 0),
	})

	app := &mid.App{
		DBConn: conn,
		Queue:  ch,

		Analyses:    analyses,
		Results:     results,
		Posts:       posts,
		Graph:       graph,
		Trends:      trendStore,
		Authors:     authors,
		DataSources: dataSources,
		Dashboards:  dashboards,
		Users:       users,

		Orchestrator: orchestrator,
		Publisher:    publisher,
		Brain:        brainClient,
		Cache:        progressCache,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
