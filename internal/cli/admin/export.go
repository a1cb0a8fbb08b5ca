package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/veritext/veritext/internal/config"
	"github.com/veritext/veritext/internal/database"
	"github.com/veritext/veritext/internal/repository"
	"github.com/veritext/veritext/internal/service"
	"github.com/veritext/veritext/internal/storage"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export a content snapshot to object storage",
		Long:  "Write all stored content as a JSONL snapshot to the configured S3-compatible bucket",
		RunE:  runExport,
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasS3() {
		return fmt.Errorf("object storage not configured: S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY required")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

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

	exportSvc := service.NewExportService(repository.NewContentRepository(pool), s3Client)

	key, count, err := exportSvc.Export(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	log.Printf("exported %d items to s3://%s/%s", count, cfg.S3Bucket, key)
	return nil
}
