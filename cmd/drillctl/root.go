package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/logger"
	"vocabdrill/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:           "drillctl",
	Short:         "Administer a vocabdrill database",
	Long:          "drillctl migrates the vocabdrill database, imports word content and backs up learner progress.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database file (overrides DB_PATH env var)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
}

// env holds what every subcommand needs
type env struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	content  *repository.ContentRepository
	progress *repository.ProgressRepository
	users    *repository.UserRepository
}

func (e *env) Close() {
	e.db.Close()
	e.log.Sync()
}

// loadConfig loads configuration with the command's flag overrides applied
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if err := os.Setenv("CONFIG_FILE", p); err != nil {
			return nil, err
		}
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := os.Setenv("DB_PATH", p); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openEnv opens and migrates the configured database
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if _, err := db.RunMigrations(cmd.Context()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	guard := db.NewGuard(database.GuardConfigFrom(cfg.Storage), log)
	return &env{
		cfg:      cfg,
		log:      log,
		db:       db,
		content:  repository.NewContentRepository(db, guard),
		progress: repository.NewProgressRepository(db, guard),
		users:    repository.NewUserRepository(db, guard),
	}, nil
}
