package main

import (
	"github.com/verseprint/backend/internal/server"
	"github.com/verseprint/backend/internal/util"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
