package main

import (
	"context"
	"os"

	"github.com/yigit/schoolhub/internal/pkg/logger" // Still needed for initial error logging
	"github.com/yigit/schoolhub/internal/server"
)

// @title SchoolHub Student Lifecycle API
// @version 1.0
// @description Promotion, roll numbering, vacancy and recycle-bin operations for the school student roster

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
