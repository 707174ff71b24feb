package main

import (
	"github.com/rasadhq/rasad/internal/server"
	"github.com/rasadhq/rasad/internal/util"
	"github.com/rasadhq/rasad/pkg/logger"
	"github.com/rasadhq/rasad/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		Prefix: "server",
	})
	logger.Init(consoleLogger)

	server.Init()
}
