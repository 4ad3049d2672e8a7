package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"researchnest/internal/config"
	"researchnest/internal/database"
)

var (
	dbType string
	dbPath string
	dbURL  string
)

var rootCmd = &cobra.Command{
	Use:          "researchctl",
	Short:        "ResearchNest database maintenance",
	SilenceUsage: true,
	Long: `Maintenance commands for the ResearchNest database.

Connection settings come from the same environment as the server
(DATABASE_TYPE, DB_PATH, DATABASE_URL) and can be overridden with flags.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbType, "db-type", "", "Database type: sqlite, postgres or mysql")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL or MySQL connection URL")

	rootCmd.AddCommand(migrateCmd, exportCmd, importCmd, createAdminCmd)
}

// openDatabase connects with flag overrides applied and brings the schema up to date
func openDatabase() (*database.DB, error) {
	cfg := config.Load()
	if dbType != "" {
		cfg.DatabaseType = dbType
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Printf("Connected to %s database", cfg.DatabaseType)
	return db, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SeedBadWords(); err != nil {
			log.Printf("Warning: Failed to seed bad words filter: %v", err)
		}
		log.Println("Migrations completed successfully")
		return nil
	},
}
