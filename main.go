package main

import (
	"os"

	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}
