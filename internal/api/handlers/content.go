package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/veritext/veritext/internal/api"
	"github.com/veritext/veritext/internal/domain"
	"github.com/veritext/veritext/internal/service"
)

type ContentService interface {
	Create(ctx context.Context, input service.CreateInput) (*domain.Content, error)
	GetByID(ctx context.Context, id string) (*domain.Content, error)
	List(ctx context.Context, input service.ListInput) (*service.ListOutput, error)
	Delete(ctx context.Context, id string) error
}

type ContentHandler struct {
	svc ContentService
}

func NewContentHandler(svc ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

type CreateContentRequest struct {
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Text      string   `json:"text"`
	Topics    []string `json:"topics"`
	Source    string   `json:"source"`
	URL       string   `json:"url"`
	Validated *bool    `json:"validated"`
}

type ContentResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title,omitempty"`
	Excerpt        string   `json:"excerpt,omitempty"`
	Text           string   `json:"text"`
	Topics         []string `json:"topics"`
	Source         string   `json:"source,omitempty"`
	URL            string   `json:"url,omitempty"`
	Validated      bool     `json:"validated"`
	EmbeddingModel string   `json:"embedding_model,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

func contentToResponse(c *domain.Content) *ContentResponse {
	topics := c.Topics
	if topics == nil {
		topics = []string{}
	}
	return &ContentResponse{
		ID:             c.ID,
		Title:          c.Title,
		Excerpt:        c.Excerpt,
		Text:           c.Text,
		Topics:         topics,
		Source:         c.Source,
		URL:            c.URL,
		Validated:      c.Validated,
		EmbeddingModel: c.EmbeddingModel,
		CreatedAt:      c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	input := service.CreateInput{
		Title:     req.Title,
		Excerpt:   req.Excerpt,
		Text:      req.Text,
		Topics:    req.Topics,
		Source:    req.Source,
		URL:       req.URL,
		Validated: req.Validated,
	}

	content, err := h.svc.Create(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, contentToResponse(content))
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	content, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, contentToResponse(content))
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

type ContentListResponse struct {
	Items   []*ContentResponse `json:"items"`
	Cursor  string             `json:"cursor,omitempty"`
	HasMore bool               `json:"has_more"`
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var validated *bool
	if v := query.Get("validated"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "validated must be a boolean")
			return
		}
		validated = &parsed
	}

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	input := service.ListInput{
		Topic:     query.Get("topic"),
		Source:    query.Get("source"),
		Validated: validated,
		Cursor:    query.Get("cursor"),
		Limit:     limit,
	}

	output, err := h.svc.List(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ContentResponse, len(output.Items))
	for i, c := range output.Items {
		responses[i] = contentToResponse(c)
	}

	api.Success(w, http.StatusOK, ContentListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}
