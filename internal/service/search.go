package service

import (
	"context"
	"strings"

	"github.com/veritext/veritext/internal/domain"
	"github.com/veritext/veritext/internal/telemetry"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50

	// Minimum cosine similarity for a result to count as a match.
	defaultMatchThreshold = 0.1
)

// SearchRepository defines the repository interface for vector search
type SearchRepository interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, filters SearchFilters, threshold float64, limit int) ([]*SearchResult, error)
}

// SearchFilters narrows a similarity search.
type SearchFilters struct {
	Topics        []string
	Source        string
	ValidatedOnly bool
}

// SearchResult pairs a content item with its similarity to the query.
type SearchResult struct {
	Content    *domain.Content
	Similarity float64
}

type SearchInput struct {
	Query         string
	Topics        []string
	Source        string
	ValidatedOnly *bool
	Limit         int
}

type SearchOutput struct {
	Results []*SearchResult
	Query   string
}

// SearchService performs semantic search over stored content. The ranking is
// fully delegated to the database's nearest-neighbor query; this service only
// embeds the query and applies input validation.
type SearchService struct {
	repo      SearchRepository
	embedder  EmbeddingClient
	threshold float64
}

// NewSearchService creates a new SearchService instance
func NewSearchService(repo SearchRepository, embedder EmbeddingClient) *SearchService {
	return &SearchService{
		repo:      repo,
		embedder:  embedder,
		threshold: defaultMatchThreshold,
	}
}

// Search embeds the query and returns the closest stored items, best first.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	limit := clampLimit(input.Limit, defaultSearchLimit, maxSearchLimit)

	// Only validated content is searched unless the caller opts out.
	validatedOnly := true
	if input.ValidatedOnly != nil {
		validatedOnly = *input.ValidatedOnly
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewEmbeddingError(err)
	}

	filters := SearchFilters{
		Topics:        domain.NormalizeTopics(input.Topics),
		Source:        strings.TrimSpace(input.Source),
		ValidatedOnly: validatedOnly,
	}

	results, err := s.repo.SearchByEmbedding(ctx, embedding, filters, s.threshold, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &SearchOutput{
		Results: results,
		Query:   query,
	}, nil
}
