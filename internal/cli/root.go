// Package cli implements invoicectl, the operator command line for the
// invoice service.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"invoice-service/pkg/config"
	"invoice-service/pkg/database"
	"invoice-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "1.0.0"

// app carries what the commands share. Tests swap openDB and now.
type app struct {
	now    func() time.Time
	openDB func() (*gorm.DB, error)
}

// NewRootCommand builds invoicectl configured from the environment
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{now: time.Now, openDB: openFromConfig})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "invoicectl",
		Short: "invoicectl - operator tools for the invoice service",
		Long: `invoicectl runs maintenance tasks against the invoice service database:
schema migration, number previews and sales register exports.

Database settings are read from the same environment variables as the
server (DB_DRIVER, DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCommand(a),
		newFiscalYearCommand(a),
		newNextNumbersCommand(a),
		newExportCommand(a),
	)
	return root
}

// Execute runs invoicectl and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		logger.GetLogger().Error("Command execution failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openFromConfig() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return database.InitDB(&cfg.DB)
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			logger.GetLogger().Info("Database migrated")
			return printf(cmd.OutOrStdout(), "migrated\n")
		},
	}
}

func printf(w io.Writer, format string, args ...interface{}) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
