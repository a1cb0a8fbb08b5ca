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
)

// ReembedCmd returns the reembed command
func ReembedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reembed",
		Short: "Re-embed content with a stale embedding model",
		Long:  "Regenerate embeddings for all content whose stored embedding was produced by a different model, then exit",
		RunE:  runReembed,
	}
}

func runReembed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("embedding provider not configured: OPENAI_API_KEY required")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	embedder, cacheClose, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	if cacheClose != nil {
		defer cacheClose()
	}

	reembedSvc := service.NewReembedService(repository.NewContentRepository(pool), embedder, cfg.EmbeddingModel)

	total := 0
	for {
		n, err := reembedSvc.Pass(ctx)
		if err != nil {
			return fmt.Errorf("re-embed pass failed: %w", err)
		}
		total += n
		if n == 0 {
			break
		}
	}

	log.Printf("re-embedded %d items with model %s", total, cfg.EmbeddingModel)
	return nil
}
