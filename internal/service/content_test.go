package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/veritext/veritext/internal/domain"
	"github.com/veritext/veritext/internal/pagination"
)

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, c *domain.Content, embedding []float32) error {
	args := m.Called(ctx, c, embedding)
	return args.Error(0)
}

func (m *MockContentRepository) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockContentRepository) List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) (*ContentPageResult, error) {
	args := m.Called(ctx, filters, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ContentPageResult), args.Error(1)
}

func (m *MockContentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContentRepository) ListTopics(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type FixedUUIDGenerator struct {
	IDs   []string
	index int
}

func (g *FixedUUIDGenerator) NewString() string {
	id := g.IDs[g.index%len(g.IDs)]
	g.index++
	return id
}

const testModel = "text-embedding-3-small"

func newContentService(repo *MockContentRepository, embedder *MockEmbeddingClient) *ContentService {
	gen := &FixedUUIDGenerator{IDs: []string{"3f1f8a58-6f53-4f45-a1b7-0f37f2a9d9c1"}}
	return NewContentServiceWithUUIDGen(repo, embedder, testModel, gen)
}

func TestContentService_Create_Success(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	embedding := []float32{0.1, 0.2}
	embedder.On("GenerateEmbedding", mock.Anything, "Distributed invariants\n\ninvariants in distributed systems").
		Return(embedding, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Content) bool {
		return c.Text == "invariants in distributed systems" &&
			c.Title == "Distributed invariants" &&
			c.EmbeddingModel == testModel &&
			c.Validated
	}), embedding).Return(nil)

	content, err := svc.Create(context.Background(), CreateInput{
		Title:  "Distributed invariants",
		Text:   "invariants in distributed systems",
		Topics: []string{"systems"},
	})

	require.NoError(t, err)
	assert.Equal(t, "3f1f8a58-6f53-4f45-a1b7-0f37f2a9d9c1", content.ID)
	assert.Equal(t, []string{"systems"}, content.Topics)
	assert.WithinDuration(t, time.Now().UTC(), content.CreatedAt, time.Minute)
	repo.AssertExpectations(t)
	embedder.AssertExpectations(t)
}

func TestContentService_Create_EmptyText(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	_, err := svc.Create(context.Background(), CreateInput{Text: "   "})

	assert.ErrorIs(t, err, domain.ErrEmptyText)
	repo.AssertNotCalled(t, "Create")
	embedder.AssertNotCalled(t, "GenerateEmbedding")
}

func TestContentService_Create_EmbeddingFailure(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream down"))

	_, err := svc.Create(context.Background(), CreateInput{Text: "some text"})

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeUpstream, domainErr.Code)
	// Nothing persisted when embedding fails.
	repo.AssertNotCalled(t, "Create")
}

func TestContentService_Create_ValidatedOverride(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{0.1}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Content) bool {
		return !c.Validated
	}), mock.Anything).Return(nil)

	notValidated := false
	_, err := svc.Create(context.Background(), CreateInput{Text: "draft text", Validated: &notValidated})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestContentService_List_DefaultsAndClamping(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	page := &ContentPageResult{Items: []*domain.Content{}, HasMore: false}
	repo.On("List", mock.Anything, ListFilters{}, (*pagination.Cursor)(nil), defaultListLimit).Return(page, nil).Once()
	repo.On("List", mock.Anything, ListFilters{}, (*pagination.Cursor)(nil), maxListLimit).Return(page, nil).Once()

	_, err := svc.List(context.Background(), ListInput{})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListInput{Limit: 10000})
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestContentService_List_InvalidCursor(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	_, err := svc.List(context.Background(), ListInput{Cursor: "!!not-a-cursor!!"})

	assert.ErrorIs(t, err, domain.ErrInvalidCursor)
	repo.AssertNotCalled(t, "List")
}

func TestContentService_List_PassesCursor(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cursor := pagination.EncodeCursor("last-id", ts)

	repo.On("List", mock.Anything, mock.Anything, mock.MatchedBy(func(c *pagination.Cursor) bool {
		return c != nil && c.LastID == "last-id" && c.Timestamp.Equal(ts)
	}), 10).Return(&ContentPageResult{}, nil)

	_, err := svc.List(context.Background(), ListInput{Cursor: cursor, Limit: 10})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestContentService_GetByID_InvalidID(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	_, err := svc.GetByID(context.Background(), "not-a-uuid")

	assert.ErrorIs(t, err, domain.ErrInvalidID)
	repo.AssertNotCalled(t, "GetByID")
}

func TestContentService_Delete_NotFound(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	id := "3f1f8a58-6f53-4f45-a1b7-0f37f2a9d9c1"
	repo.On("Delete", mock.Anything, id).Return(domain.ErrContentNotFound)

	err := svc.Delete(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrContentNotFound)
}

func TestContentService_ListTopics(t *testing.T) {
	repo := new(MockContentRepository)
	embedder := new(MockEmbeddingClient)
	svc := newContentService(repo, embedder)

	repo.On("ListTopics", mock.Anything).Return([]string{"A", "B"}, nil)

	topics, err := svc.ListTopics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, topics)
}
