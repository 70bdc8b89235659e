// Package main provides the oncodrug-admin command for schema migrations and
// annotation imports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oncodrug-server/internal/config"
	"github.com/oncodrug-server/internal/database"
	"github.com/oncodrug-server/internal/domain"
	"github.com/oncodrug-server/internal/logging"
	"github.com/oncodrug-server/internal/repository"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type app struct {
	configFile string
	manager    *config.Manager
	logger     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "oncodrug-admin",
		Short:         "Administer the oncodrug annotation store",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "path to config.yaml (default: search ., ./config, /etc/oncodrug)")

	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(a.importCmd())
	return rootCmd
}

func (a *app) load() error {
	var opts []config.Option
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}

	manager, err := config.NewManager(opts...)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := manager.Validate(); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	logger, err := logging.New(manager.GetConfig().Logging)
	if err != nil {
		return err
	}

	a.manager = manager
	a.logger = logger
	return nil
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run PostgreSQL schema migrations",
	}

	run := func(action func(context.Context, *database.MigrationRunner) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			dbCfg := a.manager.GetDatabaseConfig()
			if dialect, err := repository.ParseDialect(dbCfg.Driver); err != nil || dialect != repository.DialectPostgres {
				return fmt.Errorf("migrations apply to postgres only; driver is %q", dbCfg.Driver)
			}

			runner, err := database.NewMigrationRunner(a.manager.GetDatabaseURL(), dbCfg.MigrationsPath, a.logger)
			if err != nil {
				return err
			}
			defer runner.Close()

			return action(cmd.Context(), runner)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: run(func(ctx context.Context, r *database.MigrationRunner) error {
			return r.Up(ctx)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: run(func(ctx context.Context, r *database.MigrationRunner) error {
			return r.Down(ctx)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		RunE: run(func(ctx context.Context, r *database.MigrationRunner) error {
			version, dirty, err := r.Version()
			if err != nil {
				return err
			}
			fmt.Printf("version: %d, dirty: %t\n", version, dirty)
			return nil
		}),
	})

	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var (
		cancerType string
		file       string
		batchSize  int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import annotation records from a JSON or YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := domain.ResolveCancerType(cancerType)
			if err != nil {
				return err
			}

			records, err := LoadSeedFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := database.Open(ctx, *a.manager.GetDatabaseConfig(), a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			dialect, err := repository.ParseDialect(store.Driver)
			if err != nil {
				return err
			}
			repo := repository.NewAnnotationRepository(store.SQL, dialect, a.logger)

			n, err := ImportRecords(ctx, repo, collection, records, batchSize)
			if err != nil {
				return err
			}

			a.logger.WithFields(logrus.Fields{
				"collection": collection,
				"file":       file,
				"records":    n,
			}).Info("Import completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&cancerType, "cancer-type", "", "target cancer type code, e.g. lung")
	cmd.Flags().StringVar(&file, "file", "", "seed file (.json, .yaml or .yml)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 500, "records per transaction")
	_ = cmd.MarkFlagRequired("cancer-type")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
