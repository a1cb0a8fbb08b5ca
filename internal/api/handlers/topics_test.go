package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTopicsService struct {
	mock.Mock
}

func (m *MockTopicsService) ListTopics(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestTopicsHandler_List_Success(t *testing.T) {
	mockSvc := new(MockTopicsService)
	handler := NewTopicsHandler(mockSvc)

	mockSvc.On("ListTopics", mock.Anything).Return([]string{"databases", "distributed-systems"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/topics", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data TopicsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"databases", "distributed-systems"}, resp.Data.Topics)
	mockSvc.AssertExpectations(t)
}

func TestTopicsHandler_List_Empty(t *testing.T) {
	mockSvc := new(MockTopicsService)
	handler := NewTopicsHandler(mockSvc)

	mockSvc.On("ListTopics", mock.Anything).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/topics", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"topics":[]`)
	mockSvc.AssertExpectations(t)
}

func TestTopicsHandler_List_Error(t *testing.T) {
	mockSvc := new(MockTopicsService)
	handler := NewTopicsHandler(mockSvc)

	mockSvc.On("ListTopics", mock.Anything).Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/topics", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockSvc.AssertExpectations(t)
}
