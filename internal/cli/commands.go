package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csv2db/internal/core"
	"github.com/JonMunkholm/csv2db/internal/web"
)

func newLoadCmd(g *globals) *cobra.Command {
	var (
		delimiter   string
		stagingDir  string
		keepStaging bool
	)

	cmd := &cobra.Command{
		Use:   "load <path>...",
		Short: "Load CSV files or zip bundles",
		Long: "Load each path in order. A .csv file loads into the table named after it;\n" +
			"a .zip bundle loads its files in ascending filename order. Rows rejected by\n" +
			"a unique constraint are skipped and reported; any other error stops the load.",
		Example: "  csv2db load 1-users.csv 2-orders.csv\n  csv2db load seed.zip --output json",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("delimiter") {
				cfg.Import.Delimiter = delimiter
			}
			if cmd.Flags().Changed("staging-dir") {
				cfg.Import.StagingDir = stagingDir
			}
			if cmd.Flags().Changed("keep-staging") {
				cfg.Import.KeepStaging = keepStaging
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			importer, db, err := openImporter(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			var (
				reports []fileReport
				loadErr error
			)
			for _, path := range args {
				results, err := importer.Load(ctx, path)
				if err != nil {
					loadErr = fmt.Errorf("load %s: %w", path, err)
					break
				}
				reports = append(reports, fileReport{Path: path, Results: results})
			}

			if len(reports) > 0 || loadErr == nil {
				if err := printReports(cmd.OutOrStdout(), g.output, reports); err != nil {
					return err
				}
			}
			return loadErr
		},
	}

	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", "", "Field delimiter (overrides IMPORT_DELIMITER, default ;)")
	cmd.Flags().StringVar(&stagingDir, "staging-dir", "", "Directory for expanded bundles (overrides IMPORT_STAGING_DIR)")
	cmd.Flags().BoolVar(&keepStaging, "keep-staging", false, "Keep expanded bundles on disk")

	return cmd
}

func newDescribeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the columns a CSV file for table must match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			importer, db, err := openImporter(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			schema, err := importer.TableInfo(ctx, args[0])
			if err != nil {
				return err
			}
			return printSchema(cmd.OutOrStdout(), g.output, schema)
		},
	}
}

func newServeCmd(_ *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP import service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			slog.Info("configuration loaded",
				"addr", cfg.Server.Addr(),
				"driver", cfg.Database.Driver,
				"upload_max_concurrent", cfg.Upload.MaxConcurrent,
				"api_keys", len(cfg.Security.APIKeys),
			)

			ctx := cmd.Context()
			importer, db, err := openImporter(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			limiter := core.NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
			server := web.NewServer(cfg, importer, limiter)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("shutting down...", "active_imports", limiter.Active())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			slog.Info("server stopped")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "csv2db %s (commit %s)\n", version, commit)
			return err
		},
	}
}
