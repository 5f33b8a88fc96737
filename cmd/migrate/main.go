// cmd/migrate/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appaws "github.com/unclebandit/togetherunite-backend/internal/aws"
	"github.com/unclebandit/togetherunite-backend/internal/config"
	"github.com/unclebandit/togetherunite-backend/internal/db"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the TogetherUnite database schema",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(upCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(printCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create tables and indexes that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB, log *zap.Logger) error {
				if err := db.Migrate(ctx, conn); err != nil {
					return err
				}
				log.Info("schema up to date")
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "seed [files...]",
		Short: "Execute SQL seed files in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			files = append(files, args...)
			if len(files) == 0 {
				return fmt.Errorf("no seed files given")
			}
			return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB, log *zap.Logger) error {
				if err := db.Seed(ctx, conn, files...); err != nil {
					return err
				}
				log.Info("database seeded", zap.Strings("files", files))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "Seed file (repeatable)")
	return cmd
}

func printCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the schema DDL",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(db.Schema(), ";\n\n")+";")
		},
	}
}

func withDB(ctx context.Context, fn func(context.Context, *sql.DB, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	awsCfg, err := appaws.LoadConfig(ctx, cfg.AWS.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey)
	if err != nil {
		return err
	}
	dbCfg, err := appaws.ResolveDatabaseCredentials(ctx, awsCfg, cfg.Database)
	if err != nil {
		return err
	}
	conn, err := db.Open(ctx, dbCfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn, log)
}
