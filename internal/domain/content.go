package domain

import (
	"fmt"
	"strings"
	"time"
)

// Content represents a stored content item with its embedding metadata.
type Content struct {
	ID             string
	Title          string
	Excerpt        string
	Text           string
	Topics         []string
	Source         string
	URL            string
	Validated      bool
	EmbeddingModel string
	CreatedAt      time.Time
}

// NewContent creates a new Content instance.
func NewContent(
	id, title, excerpt, text string,
	topics []string,
	source, url string,
	validated bool,
	createdAt time.Time,
) *Content {
	return &Content{
		ID:        id,
		Title:     title,
		Excerpt:   excerpt,
		Text:      text,
		Topics:    NormalizeTopics(topics),
		Source:    source,
		URL:       url,
		Validated: validated,
		CreatedAt: createdAt,
	}
}

// ValidateContent validates a Content instance.
func ValidateContent(c *Content) error {
	if c == nil {
		return fmt.Errorf("content cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("content ID is required")
	}

	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyText
	}

	for _, topic := range c.Topics {
		if strings.TrimSpace(topic) == "" {
			return ErrInvalidTopic
		}
	}

	return nil
}

// NormalizeTopics trims topic labels and drops empties and duplicates while
// preserving the original order.
func NormalizeTopics(topics []string) []string {
	if len(topics) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(topics))
	result := make([]string, 0, len(topics))
	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		result = append(result, topic)
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
