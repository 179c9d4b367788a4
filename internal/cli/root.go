// Package cli implements the csv2db command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csv2db/internal/config"
	"github.com/JonMunkholm/csv2db/internal/core"
	"github.com/JonMunkholm/csv2db/internal/database"
	"github.com/JonMunkholm/csv2db/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	envFile     string
	databaseURL string
	driver      string
	output      string
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == OutputJSON {
			printError(os.Stdout, output, err)
		} else {
			printError(os.Stderr, output, err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "csv2db",
		Short: "Load CSV files and zip bundles into database tables",
		Long: "csv2db loads seed data into existing tables. Each CSV file targets the table\n" +
			"named after it (1-orders.csv loads orders); zip bundles load in filename order.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > environment > env file.
			if err := godotenv.Load(g.envFile); err != nil {
				if cmd.Flags().Changed("env-file") || !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("load env file: %w", err)
				}
			}
			if cmd.Flags().Changed("database-url") {
				if err := os.Setenv("DATABASE_URL", g.databaseURL); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("driver") {
				if err := os.Setenv("DB_DRIVER", g.driver); err != nil {
					return err
				}
			}
			if g.output != OutputText && g.output != OutputJSON {
				return fmt.Errorf("invalid --output %q: must be text or json", g.output)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "Environment file to load when present")
	rootCmd.PersistentFlags().StringVar(&g.databaseURL, "database-url", "", "Database connection string (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&g.driver, "driver", "", "Database driver: postgres or sqlite (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().StringVarP(&g.output, "output", "o", OutputText, "Output format (text, json)")

	rootCmd.AddCommand(
		newLoadCmd(g),
		newDescribeCmd(g),
		newServeCmd(g),
		newVersionCmd(),
	)

	return rootCmd
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// openImporter connects to the configured database and wraps it in an
// Importer. The caller closes the returned Database.
func openImporter(ctx context.Context, cfg *config.Config) (*core.Importer, core.Database, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	importer := core.NewImporter(db, core.Options{
		Delimiter:   cfg.Import.DelimiterRune(),
		StagingDir:  cfg.Import.StagingDir,
		KeepStaging: cfg.Import.KeepStaging,
		Observer:    core.NewLogObserver(logging.FromContext(ctx)),
	})
	return importer, db, nil
}
