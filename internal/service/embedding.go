package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/veritext/veritext/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ReembedRepository defines the repository interface for the re-embed pass
type ReembedRepository interface {
	ListStaleEmbeddings(ctx context.Context, model string, limit int) ([]*domain.Content, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32, model string) error
}

// ReembedService recomputes embeddings for items whose stored vector was
// produced by a different model than the configured one. Because the
// embedding is a pure function of the item's textual fields, recomputation
// is always safe.
type ReembedService struct {
	repo      ReembedRepository
	embedder  EmbeddingClient
	model     string
	batchSize int
}

// NewReembedService creates a new ReembedService instance
func NewReembedService(repo ReembedRepository, embedder EmbeddingClient, model string) *ReembedService {
	return &ReembedService{
		repo:      repo,
		embedder:  embedder,
		model:     model,
		batchSize: 20,
	}
}

// Pass re-embeds one batch of stale items and returns how many were updated.
// A zero return means the store is fully up to date for the configured model.
func (s *ReembedService) Pass(ctx context.Context) (int, error) {
	items, err := s.repo.ListStaleEmbeddings(ctx, s.model, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale embeddings: %w", err)
	}

	updated := 0
	for _, item := range items {
		embedding, err := s.embedder.GenerateEmbedding(ctx, BuildEmbeddingText(item))
		if err != nil {
			return updated, fmt.Errorf("failed to re-embed %s: %w", item.ID, err)
		}
		if err := s.repo.UpdateEmbedding(ctx, item.ID, embedding, s.model); err != nil {
			return updated, fmt.Errorf("failed to store embedding for %s: %w", item.ID, err)
		}
		updated++
	}

	return updated, nil
}

// BuildEmbeddingText assembles the text fed to the embedding model from an
// item's textual fields. Deterministic: the same fields always produce the
// same input, which keeps stored embeddings a pure function of content.
func BuildEmbeddingText(c *domain.Content) string {
	var parts []string

	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if c.Excerpt != "" {
		parts = append(parts, c.Excerpt)
	}
	if c.Text != "" {
		parts = append(parts, c.Text)
	}

	return strings.Join(parts, "\n\n")
}
