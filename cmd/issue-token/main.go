// Command issue-token signs a development access token with the configured JWT secret.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	"github.com/noah-isme/sma-lesson-grid-api/internal/service"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/config"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/logger"
)

func main() {
	userID := flag.String("user", "local-admin", "user id placed in the token")
	role := flag.String("role", string(models.RoleAdmin), "SUPERADMIN, ADMIN, TEACHER or STUDENT")
	email := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Env == config.EnvProduction {
		log.Fatal("refusing to issue tokens in production")
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	auth := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: *ttl,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	token, expiresAt, err := auth.IssueAccessToken(*userID, models.UserRole(strings.ToUpper(*role)), *email, "")
	if err != nil {
		logr.Sugar().Fatalw("failed to sign token", "error", err)
	}
	logr.Sugar().Infow("token issued", "user", *userID, "role", strings.ToUpper(*role), "expires_at", expiresAt)
	fmt.Println(token)
}
