package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/veritext/veritext/internal/domain"
	"github.com/veritext/veritext/internal/pagination"
	"github.com/veritext/veritext/internal/service"
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const contentColumns = `id, title, excerpt, body_text, topics, source, url, validated, embedding_model, created_at`

type ContentRepository struct {
	db dbtx
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{db: pool}
}

func NewContentRepositoryWithTx(tx pgx.Tx) *ContentRepository {
	return &ContentRepository{db: tx}
}

// Create inserts a content item together with its embedding.
func (r *ContentRepository) Create(ctx context.Context, c *domain.Content, embedding []float32) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO content (id, title, excerpt, body_text, topics, source, url, validated, embedding, embedding_model, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, nullableString(c.Title), nullableString(c.Excerpt), c.Text, c.Topics,
		nullableString(c.Source), nullableString(c.URL), c.Validated,
		pgvector.NewVector(embedding), nullableString(c.EmbeddingModel), c.CreatedAt,
	)
	return err
}

func (r *ContentRepository) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM content WHERE id = $1`,
		id,
	)
	c, err := scanContent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContentNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns a page of content items, newest first, with keyset pagination
// on (created_at, id).
func (r *ContentRepository) List(ctx context.Context, filters service.ListFilters, cursor *pagination.Cursor, limit int) (*service.ContentPageResult, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + contentColumns + ` FROM content WHERE TRUE`
	args := []any{}

	if filters.Topic != "" {
		args = append(args, filters.Topic)
		query += fmt.Sprintf(" AND $%d = ANY(topics)", len(args))
	}
	if filters.Source != "" {
		args = append(args, filters.Source)
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if filters.Validated != nil {
		args = append(args, *filters.Validated)
		query += fmt.Sprintf(" AND validated = $%d", len(args))
	}
	if cursor != nil {
		args = append(args, cursor.Timestamp, cursor.LastID)
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanContentRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.ContentPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM content WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

// ListTopics returns the distinct set of topic labels across all items.
func (r *ContentRepository) ListTopics(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT unnest(topics) AS topic FROM content ORDER BY topic`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := make([]string, 0)
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// SearchByEmbedding runs a cosine nearest-neighbor query over stored
// embeddings, filtered in SQL and cut off below the similarity threshold.
func (r *ContentRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filters service.SearchFilters, threshold float64, limit int) ([]*service.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)

	query := `
		SELECT ` + contentColumns + `, 1 - (embedding <=> $1) AS similarity
		FROM content
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2`
	args := []any{vec, threshold}

	if filters.ValidatedOnly {
		query += " AND validated = TRUE"
	}
	if filters.Source != "" {
		args = append(args, filters.Source)
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if len(filters.Topics) > 0 {
		args = append(args, filters.Topics)
		query += fmt.Sprintf(" AND topics && $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.SearchResult, 0)
	for rows.Next() {
		var result service.SearchResult
		c, err := scanContentWith(rows, &result.Similarity)
		if err != nil {
			return nil, err
		}
		result.Content = c
		results = append(results, &result)
	}
	return results, rows.Err()
}

// ListStaleEmbeddings returns items whose stored embedding was produced by a
// different model than the one given (or never produced at all).
func (r *ContentRepository) ListStaleEmbeddings(ctx context.Context, model string, limit int) ([]*domain.Content, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+contentColumns+`
		 FROM content
		 WHERE embedding IS NULL OR embedding_model IS DISTINCT FROM $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		model, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContentRows(rows)
}

// UpdateEmbedding rewrites an item's embedding and records the model that
// produced it. Only the re-embed path calls this.
func (r *ContentRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32, model string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE content SET embedding = $1, embedding_model = $2 WHERE id = $3`,
		pgvector.NewVector(embedding), model, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrContentNotFound
	}
	return nil
}

// ForEach streams every content item, oldest first, in batches. Used by the
// snapshot export.
func (r *ContentRepository) ForEach(ctx context.Context, batchSize int, fn func(*domain.Content) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	var lastID string
	var more = true
	for more {
		query := `SELECT ` + contentColumns + ` FROM content`
		args := []any{}
		if lastID != "" {
			args = append(args, lastID)
			query += " WHERE id > $1"
		}
		args = append(args, batchSize)
		query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d", len(args))

		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		items, err := scanContentRows(rows)
		rows.Close()
		if err != nil {
			return err
		}

		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
			lastID = item.ID
		}
		more = len(items) == batchSize
	}
	return nil
}

func scanContentRows(rows pgx.Rows) ([]*domain.Content, error) {
	var results []*domain.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func scanContent(row pgx.Row) (*domain.Content, error) {
	return scanContentWith(row)
}

// scanContentWith scans the shared content columns plus any trailing extras
// (e.g. a similarity score).
func scanContentWith(row pgx.Row, extras ...any) (*domain.Content, error) {
	var c domain.Content
	var title, excerpt, source, url, model *string

	dest := []any{&c.ID, &title, &excerpt, &c.Text, &c.Topics, &source, &url, &c.Validated, &model, &c.CreatedAt}
	dest = append(dest, extras...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if title != nil {
		c.Title = *title
	}
	if excerpt != nil {
		c.Excerpt = *excerpt
	}
	if source != nil {
		c.Source = *source
	}
	if url != nil {
		c.URL = *url
	}
	if model != nil {
		c.EmbeddingModel = *model
	}
	return &c, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
