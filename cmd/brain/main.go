package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rasadhq/rasad/internal/brainmock"
	"github.com/rasadhq/rasad/internal/util"
	"github.com/rasadhq/rasad/pkg/logger"
	"github.com/rasadhq/rasad/pkg/logger/console"
)

// Standalone analyzer mock for local development and integration tests.
func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		Prefix: "brain",
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	mock := brainmock.NewServer(brainmock.ServerParams{
		Seed:  int64(util.GetEnvInt("BRAIN_SEED", 0)),
		Delay: util.GetEnvDuration("BRAIN_DELAY", 0),
	})
	mock.Register(e)

	go func() {
		port := util.GetEnvString("BRAIN_PORT", "8000")
		logger.Info("Starting analyzer mock", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down analyzer mock", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown analyzer mock", "err", err)
	}
}
