package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/talentsift/jobdex/internal/config"
	"github.com/talentsift/jobdex/internal/service"
	"github.com/talentsift/jobdex/internal/storage"
)

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import job descriptions from object storage",
		Long:  "Import .txt and .md objects from the configured S3 bucket into the relational store and queue them for vector sync",
		RunE:  runImport,
	}

	cmd.Flags().String("prefix", "", "Object key prefix to import from")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasS3() {
		return fmt.Errorf("object storage not configured: set JOBDEX_S3_ENDPOINT, JOBDEX_S3_ACCESS_KEY_ID and JOBDEX_S3_SECRET_ACCESS_KEY")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	deps, err := buildDependencies(ctx, cfg, pool)
	if err != nil {
		return err
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}

	importer := service.NewImporterService(s3Client, deps.DocSvc)

	prefix, _ := cmd.Flags().GetString("prefix")
	summary, err := importer.ImportAll(ctx, prefix)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	log.Printf("import finished: %d imported, %d skipped, %d failed", summary.Imported, summary.Skipped, summary.Failed)
	for _, msg := range summary.Errors {
		log.Printf("import error: %s", msg)
	}
	return nil
}
