package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veritext/veritext/internal/api"
	"github.com/veritext/veritext/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query         string   `json:"query"`
	Topics        []string `json:"topics"`
	Source        string   `json:"source"`
	ValidatedOnly *bool    `json:"validated_only"`
	Limit         int      `json:"limit"`
}

type SearchResultResponse struct {
	Content    *ContentResponse `json:"content"`
	Similarity float64          `json:"similarity"`
}

type SearchResponse struct {
	Query   string                  `json:"query"`
	Results []*SearchResultResponse `json:"results"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	input := service.SearchInput{
		Query:         req.Query,
		Topics:        req.Topics,
		Source:        req.Source,
		ValidatedOnly: req.ValidatedOnly,
		Limit:         req.Limit,
	}

	output, err := h.svc.Search(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]*SearchResultResponse, len(output.Results))
	for i, res := range output.Results {
		results[i] = &SearchResultResponse{
			Content:    contentToResponse(res.Content),
			Similarity: res.Similarity,
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Query:   output.Query,
		Results: results,
	})
}
