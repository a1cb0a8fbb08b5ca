package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/veritext/veritext/internal/domain"
	"github.com/veritext/veritext/internal/service"
)

type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) Create(ctx context.Context, input service.CreateInput) (*domain.Content, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockContentService) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockContentService) List(ctx context.Context, input service.ListInput) (*service.ListOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListOutput), args.Error(1)
}

func (m *MockContentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestContent() *domain.Content {
	return &domain.Content{
		ID:             "7b8a2f8e-4c1d-4f3a-9a6b-2e5d8c0f1a23",
		Title:          "Consensus notes",
		Excerpt:        "Why quorums overlap",
		Text:           "Quorum intersection is what makes consensus safe.",
		Topics:         []string{"distributed-systems"},
		Source:         "notebook",
		URL:            "https://example.com/notes/consensus",
		Validated:      true,
		EmbeddingModel: "text-embedding-3-small",
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func requestWithID(method, url string, body []byte, id string) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestContentHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	expected := newTestContent()
	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(input service.CreateInput) bool {
		return input.Text == "Quorum intersection is what makes consensus safe." &&
			input.Title == "Consensus notes"
	})).Return(expected, nil)

	body := `{"title":"Consensus notes","excerpt":"Why quorums overlap","text":"Quorum intersection is what makes consensus safe.","topics":["distributed-systems"],"source":"notebook","url":"https://example.com/notes/consensus"}`
	req := httptest.NewRequest(http.MethodPost, "/content", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data ContentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, expected.ID, resp.Data.ID)
	assert.Equal(t, "2025-06-01T12:00:00Z", resp.Data.CreatedAt)
	assert.True(t, resp.Data.Validated)
	mockSvc.AssertExpectations(t)
}

func TestContentHandler_Create_InvalidJSON(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/content", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create")
}

func TestContentHandler_Create_MissingText(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/content", bytes.NewReader([]byte(`{"title":"no body"}`)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "text is required")
	mockSvc.AssertNotCalled(t, "Create")
}

func TestContentHandler_Create_EmbeddingDown(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrEmbeddingUnavailable)

	req := httptest.NewRequest(http.MethodPost, "/content", bytes.NewReader([]byte(`{"text":"some text"}`)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestContentHandler_Get_Success(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	expected := newTestContent()
	mockSvc.On("GetByID", mock.Anything, expected.ID).Return(expected, nil)

	req := requestWithID(http.MethodGet, "/content/"+expected.ID, nil, expected.ID)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestContentHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	id := "11111111-2222-3333-4444-555555555555"
	mockSvc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrContentNotFound)

	req := requestWithID(http.MethodGet, "/content/"+id, nil, id)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestContentHandler_Delete_Success(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	id := "7b8a2f8e-4c1d-4f3a-9a6b-2e5d8c0f1a23"
	mockSvc.On("Delete", mock.Anything, id).Return(nil)

	req := requestWithID(http.MethodDelete, "/content/"+id, nil, id)
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deleted")
	mockSvc.AssertExpectations(t)
}

func TestContentHandler_Delete_NotFound(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	id := "11111111-2222-3333-4444-555555555555"
	mockSvc.On("Delete", mock.Anything, id).Return(domain.ErrContentNotFound)

	req := requestWithID(http.MethodDelete, "/content/"+id, nil, id)
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestContentHandler_List_Success(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	expected := newTestContent()
	mockSvc.On("List", mock.Anything, mock.MatchedBy(func(input service.ListInput) bool {
		return input.Topic == "distributed-systems" && input.Limit == 10
	})).Return(&service.ListOutput{
		Items:   []*domain.Content{expected},
		Cursor:  "next-cursor",
		HasMore: true,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/content?topic=distributed-systems&limit=10", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ContentListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, expected.ID, resp.Data.Items[0].ID)
	assert.Equal(t, "next-cursor", resp.Data.Cursor)
	assert.True(t, resp.Data.HasMore)
	mockSvc.AssertExpectations(t)
}

func TestContentHandler_List_ValidatedFilter(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	mockSvc.On("List", mock.Anything, mock.MatchedBy(func(input service.ListInput) bool {
		return input.Validated != nil && *input.Validated == false
	})).Return(&service.ListOutput{Items: []*domain.Content{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/content?validated=false", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestContentHandler_List_BadValidatedParam(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/content?validated=maybe", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "List")
}

func TestContentHandler_List_InvalidCursor(t *testing.T) {
	mockSvc := new(MockContentService)
	handler := NewContentHandler(mockSvc)

	mockSvc.On("List", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCursor)

	req := httptest.NewRequest(http.MethodGet, "/content?cursor=garbage", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertExpectations(t)
}
