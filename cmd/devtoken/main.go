// Command devtoken prints a bearer token signed with the configured JWT secret,
// for calling the API locally without the school's identity service.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yigit/schoolhub/internal/config"
	"github.com/yigit/schoolhub/internal/pkg/auth"
	"github.com/yigit/schoolhub/internal/pkg/helpers"
	"github.com/yigit/schoolhub/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	userID := flag.Int64("user", 1, "operator user id (token subject)")
	email := flag.String("email", "registrar@school.local", "operator email, recorded as the promotion actor")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	token, err := jwtService.GenerateToken(*userID, *email)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to sign token")
		os.Exit(1)
	}
	fmt.Println(token)
}
