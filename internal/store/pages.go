package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/session"
)

// SavePageMetadata records a document's page count and preview URLs.
// Rendering happens elsewhere; this table only serves the metadata back to
// editing sessions entering the placement step.
func (s *Store) SavePageMetadata(ctx context.Context, preview session.PagePreview) error {
	urls, err := json.Marshal(preview.PreviewURLs)
	if err != nil {
		return fmt.Errorf("failed to encode preview urls: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO document_pages (document_id, page_count, preview_urls, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (document_id) DO UPDATE SET
			page_count = EXCLUDED.page_count,
			preview_urls = EXCLUDED.preview_urls,
			updated_at = now()`,
		preview.DocumentID, preview.PageCount, urls,
	); err != nil {
		return fmt.Errorf("failed to save page metadata: %w", err)
	}
	return nil
}

// GetPageMetadata returns the stored page preview for a document.
func (s *Store) GetPageMetadata(ctx context.Context, documentID string) (session.PagePreview, bool, error) {
	var preview session.PagePreview
	var urls []byte

	err := s.pool.QueryRow(ctx,
		`SELECT document_id, page_count, preview_urls FROM document_pages WHERE document_id = $1`,
		documentID,
	).Scan(&preview.DocumentID, &preview.PageCount, &urls)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.PagePreview{}, false, nil
	}
	if err != nil {
		return session.PagePreview{}, false, fmt.Errorf("failed to load page metadata: %w", err)
	}

	if err := json.Unmarshal(urls, &preview.PreviewURLs); err != nil {
		return session.PagePreview{}, false, fmt.Errorf("failed to decode preview urls: %w", err)
	}
	return preview, true, nil
}
