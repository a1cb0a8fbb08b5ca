package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/veritext/veritext/internal/domain"
	"github.com/veritext/veritext/internal/service"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchOutput), args.Error(1)
}

func TestSearchHandler_Success(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	content := newTestContent()
	mockSvc.On("Search", mock.Anything, mock.MatchedBy(func(input service.SearchInput) bool {
		return input.Query == "how do quorums overlap" && input.Limit == 3
	})).Return(&service.SearchOutput{
		Query: "how do quorums overlap",
		Results: []*service.SearchResult{
			{Content: content, Similarity: 0.87},
		},
	}, nil)

	body := `{"query":"how do quorums overlap","limit":3}`
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, content.ID, resp.Data.Results[0].Content.ID)
	assert.InDelta(t, 0.87, resp.Data.Results[0].Similarity, 1e-9)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_InvalidJSON(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte("{oops")))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Search")
}

func TestSearchHandler_MissingQuery(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte(`{"limit":5}`)))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "query is required")
	mockSvc.AssertNotCalled(t, "Search")
}

func TestSearchHandler_EmbeddingDown(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, mock.Anything).Return(nil, domain.NewEmbeddingError(assert.AnError))

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte(`{"query":"anything"}`)))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_NoResults(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, mock.Anything).Return(&service.SearchOutput{
		Query:   "nothing similar",
		Results: []*service.SearchResult{},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte(`{"query":"nothing similar"}`)))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Results)
	mockSvc.AssertExpectations(t)
}
