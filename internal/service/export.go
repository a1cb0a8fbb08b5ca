package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veritext/veritext/internal/domain"
)

const exportBatchSize = 200

// ExportRepository streams every stored content item in batches.
type ExportRepository interface {
	ForEach(ctx context.Context, batchSize int, fn func(*domain.Content) error) error
}

// ObjectStore uploads export snapshots to durable storage.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, contentType string, body []byte) error
}

// ExportService writes a JSONL snapshot of all content items to object
// storage. Embeddings are excluded; a snapshot restore re-embeds.
type ExportService struct {
	repo  ExportRepository
	store ObjectStore
	now   func() time.Time
}

func NewExportService(repo ExportRepository, store ObjectStore) *ExportService {
	return &ExportService{
		repo:  repo,
		store: store,
		now:   time.Now,
	}
}

type exportRecord struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Excerpt   string   `json:"excerpt,omitempty"`
	Text      string   `json:"text"`
	Topics    []string `json:"topics,omitempty"`
	Source    string   `json:"source,omitempty"`
	URL       string   `json:"url,omitempty"`
	Validated bool     `json:"validated"`
	CreatedAt string   `json:"created_at"`
}

// Export writes all content items as one JSONL object and returns the
// object key and item count.
func (s *ExportService) Export(ctx context.Context) (string, int, error) {
	if err := s.store.EnsureBucket(ctx); err != nil {
		return "", 0, fmt.Errorf("ensure bucket: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	count := 0

	err := s.repo.ForEach(ctx, exportBatchSize, func(c *domain.Content) error {
		record := exportRecord{
			ID:        c.ID,
			Title:     c.Title,
			Excerpt:   c.Excerpt,
			Text:      c.Text,
			Topics:    c.Topics,
			Source:    c.Source,
			URL:       c.URL,
			Validated: c.Validated,
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		count++
		return enc.Encode(record)
	})
	if err != nil {
		return "", 0, fmt.Errorf("stream content: %w", err)
	}

	key := fmt.Sprintf("snapshots/content-%s.jsonl", s.now().UTC().Format("20060102T150405Z"))
	if err := s.store.PutObject(ctx, key, "application/x-ndjson", buf.Bytes()); err != nil {
		return "", 0, err
	}

	return key, count, nil
}
