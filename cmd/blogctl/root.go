package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/personal-website-api/internal/auth"
	"github.com/personal-website-api/internal/config"
	"github.com/personal-website-api/internal/database"
	"github.com/personal-website-api/internal/repository"
	"github.com/personal-website-api/internal/service"
	"github.com/personal-website-api/pkg/logger"
)

var (
	jsonOut  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "Seed and maintain the Personal Website API database",
	Long: `blogctl manages the database behind the Personal Website API.

It reads the same environment variables and .env files as the server.

Examples:
  blogctl migrate up
  blogctl admin create --email admin@example.com --password password123
  blogctl import users testdata/users.csv
  blogctl import blogs testdata/blogs.ndjson --errors-out errors.csv
  blogctl export blogs --format json --status published > blogs.json`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// app is everything a command needs once the database is open
type app struct {
	cfg      *config.Config
	db       *database.DB
	services *service.Services
	log      zerolog.Logger
}

func (a *app) Close() error {
	return a.db.Close()
}

// bootstrap loads configuration and opens the database. Logs go to stderr
// so that exports can be piped from stdout.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Level:   logLevel,
		Format:  "console",
		Service: "blogctl",
		Out:     os.Stderr,
	})

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		db.Close()
		return nil, err
	}

	repos := repository.New(db)
	services := service.NewServices(repos, tokens, auth.NewPasswordHasher(cfg.Auth.BcryptCost), cfg, log)

	return &app{cfg: cfg, db: db, services: services, log: log}, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
