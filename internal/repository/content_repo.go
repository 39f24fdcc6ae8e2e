package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studysahayak-backend/internal/models"
)

type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

func (r *ContentRepo) Create(ctx context.Context, c *models.ContentRecord) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	structuredBytes, err := json.Marshal(c.StructuredContent)
	if err != nil {
		return fmt.Errorf("failed to marshal structured content: %w", err)
	}
	metaBytes, err := json.Marshal(c.RawMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal raw metadata: %w", err)
	}

	query := `INSERT INTO content (id, user_id, title, content_type, structured_content, raw_metadata)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.Title, c.ContentType, structuredBytes, metaBytes,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

// GetByID returns the record only if it belongs to userID.
func (r *ContentRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.ContentRecord, error) {
	c := &models.ContentRecord{}
	var structuredBytes, metaBytes []byte

	query := `SELECT id, user_id, title, content_type, structured_content, raw_metadata, created_at, updated_at
		FROM content WHERE id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&c.ID, &c.UserID, &c.Title, &c.ContentType, &structuredBytes, &metaBytes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(structuredBytes, &c.StructuredContent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal structured content: %w", err)
	}
	if err := json.Unmarshal(metaBytes, &c.RawMetadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw metadata: %w", err)
	}
	return c, nil
}

func (r *ContentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ContentListItem, error) {
	query := `SELECT id, title, content_type, COALESCE((raw_metadata->>'word_count')::int, 0), created_at
		FROM content WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.ContentListItem, 0)
	for rows.Next() {
		var item models.ContentListItem
		if err := rows.Scan(&item.ID, &item.Title, &item.ContentType, &item.WordCount, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Delete removes the record and reports whether a row was deleted.
func (r *ContentRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM content WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetArtifact stores a generated artifact under its cache key inside the
// record's artifacts column.
func (r *ContentRepo) SetArtifact(ctx context.Context, id, userID uuid.UUID, key string, artifact json.RawMessage) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE content
		SET artifacts = COALESCE(artifacts, '{}'::jsonb) || jsonb_build_object($3::text, $4::jsonb),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		id, userID, key, artifact,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("content %s not found", id)
	}
	return nil
}

// GetArtifact returns a previously stored artifact, or nil if none exists
// under that key.
func (r *ContentRepo) GetArtifact(ctx context.Context, id, userID uuid.UUID, key string) (json.RawMessage, error) {
	var artifact []byte
	err := r.pool.QueryRow(ctx,
		"SELECT artifacts->$3 FROM content WHERE id = $1 AND user_id = $2",
		id, userID, key,
	).Scan(&artifact)
	if err != nil {
		return nil, err
	}
	return artifact, nil
}
