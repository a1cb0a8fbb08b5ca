package jobs

import (
	"context"
	"fmt"
	"log"
)

// Reembedder drains stale embeddings one batch at a time.
type Reembedder interface {
	Pass(ctx context.Context) (int, error)
}

// ReembedWorker keeps stored embeddings aligned with the configured model.
// Each tick it runs passes until a pass reports nothing left to update, so a
// model change converges without restarting the server.
type ReembedWorker struct {
	reembedder Reembedder
}

// NewReembedWorker creates a new ReembedWorker instance
func NewReembedWorker(reembedder Reembedder) *ReembedWorker {
	return &ReembedWorker{reembedder: reembedder}
}

// ProcessJobs implements the JobProcessor interface
func (w *ReembedWorker) ProcessJobs(ctx context.Context) error {
	total := 0
	for {
		updated, err := w.reembedder.Pass(ctx)
		total += updated
		if err != nil {
			if total > 0 {
				log.Printf("reembed: updated %d items before error", total)
			}
			return fmt.Errorf("reembed pass failed: %w", err)
		}
		if updated == 0 {
			break
		}
	}

	if total > 0 {
		log.Printf("reembed: updated %d items", total)
	}
	return nil
}
