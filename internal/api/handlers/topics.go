package handlers

import (
	"context"
	"net/http"

	"github.com/veritext/veritext/internal/api"
)

type TopicsService interface {
	ListTopics(ctx context.Context) ([]string, error)
}

type TopicsHandler struct {
	svc TopicsService
}

func NewTopicsHandler(svc TopicsService) *TopicsHandler {
	return &TopicsHandler{svc: svc}
}

type TopicsResponse struct {
	Topics []string `json:"topics"`
}

func (h *TopicsHandler) List(w http.ResponseWriter, r *http.Request) {
	topics, err := h.svc.ListTopics(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if topics == nil {
		topics = []string{}
	}

	api.Success(w, http.StatusOK, TopicsResponse{Topics: topics})
}
