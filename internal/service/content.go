package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veritext/veritext/internal/domain"
	"github.com/veritext/veritext/internal/pagination"
	"github.com/veritext/veritext/internal/telemetry"
)

// ContentRepositoryInterface defines the repository interface for content persistence
type ContentRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Content, embedding []float32) error
	GetByID(ctx context.Context, id string) (*domain.Content, error)
	List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) (*ContentPageResult, error)
	Delete(ctx context.Context, id string) error
	ListTopics(ctx context.Context) ([]string, error)
}

// ListFilters narrows a content listing.
type ListFilters struct {
	Topic     string
	Source    string
	Validated *bool
}

type ContentPageResult struct {
	Items      []*domain.Content
	NextCursor string
	HasMore    bool
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ContentService handles business logic for content items
type ContentService struct {
	repo     ContentRepositoryInterface
	embedder EmbeddingClient
	model    string
	uuidGen  UUIDGenerator
}

// NewContentService creates a new ContentService instance. model names the
// embedding model so created rows record what produced their vector.
func NewContentService(repo ContentRepositoryInterface, embedder EmbeddingClient, model string) *ContentService {
	return &ContentService{
		repo:     repo,
		embedder: embedder,
		model:    model,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// NewContentServiceWithUUIDGen creates a ContentService with a custom UUID generator (for testing)
func NewContentServiceWithUUIDGen(repo ContentRepositoryInterface, embedder EmbeddingClient, model string, uuidGen UUIDGenerator) *ContentService {
	return &ContentService{
		repo:     repo,
		embedder: embedder,
		model:    model,
		uuidGen:  uuidGen,
	}
}

// CreateInput represents the input for creating a content item
type CreateInput struct {
	Title     string
	Excerpt   string
	Text      string
	Topics    []string
	Source    string
	URL       string
	Validated *bool
}

type ListInput struct {
	Topic     string
	Source    string
	Validated *bool
	Cursor    string
	Limit     int
}

type ListOutput struct {
	Items   []*domain.Content
	Cursor  string
	HasMore bool
}

// Create validates the input, computes the embedding and persists the item.
// The embedding is computed synchronously so a persisted row always carries
// one; embedding-provider failures fail the create.
func (s *ContentService) Create(ctx context.Context, input CreateInput) (*domain.Content, error) {
	ctx, span := telemetry.StartSpan(ctx, "ContentService.Create", telemetry.SpanAttributes{
		Operation: "create",
	})
	defer span.End()

	if strings.TrimSpace(input.Text) == "" {
		return nil, domain.ErrEmptyText
	}

	validated := true
	if input.Validated != nil {
		validated = *input.Validated
	}

	content := domain.NewContent(
		s.uuidGen.NewString(),
		strings.TrimSpace(input.Title),
		strings.TrimSpace(input.Excerpt),
		input.Text,
		input.Topics,
		strings.TrimSpace(input.Source),
		strings.TrimSpace(input.URL),
		validated,
		time.Now().UTC(),
	)

	if err := domain.ValidateContent(content); err != nil {
		return nil, err
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, BuildEmbeddingText(content))
	if err != nil {
		span.SetError(err)
		return nil, domain.NewEmbeddingError(err)
	}
	content.EmbeddingModel = s.model

	if err := s.repo.Create(ctx, content, embedding); err != nil {
		span.SetError(err)
		return nil, err
	}

	return content, nil
}

// GetByID fetches a single content item.
func (s *ContentService) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

// List returns a page of content items, newest first.
func (s *ContentService) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ContentService.List", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	limit := clampLimit(input.Limit, defaultListLimit, maxListLimit)

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}

	filters := ListFilters{
		Topic:     strings.TrimSpace(input.Topic),
		Source:    strings.TrimSpace(input.Source),
		Validated: input.Validated,
	}

	page, err := s.repo.List(ctx, filters, cursor, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &ListOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// Delete removes a content item by id.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return domain.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

// ListTopics returns the distinct topic labels across all stored items.
func (s *ContentService) ListTopics(ctx context.Context) ([]string, error) {
	return s.repo.ListTopics(ctx)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
