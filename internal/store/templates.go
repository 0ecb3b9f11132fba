package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/session"
)

var _ session.TemplateStore = (*Store)(nil)

// LoadTemplate returns the template saved for the document.
func (s *Store) LoadTemplate(ctx context.Context, documentID string) (envelope.Template, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM templates WHERE document_id = $1`,
		documentID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return envelope.Template{}, false, nil
	}
	if err != nil {
		return envelope.Template{}, false, fmt.Errorf("failed to load template: %w", err)
	}

	var tpl envelope.Template
	if err := json.Unmarshal(payload, &tpl); err != nil {
		return envelope.Template{}, false, fmt.Errorf("failed to decode template payload: %w", err)
	}
	return tpl, true, nil
}

// SaveTemplate upserts the template definition.
func (s *Store) SaveTemplate(ctx context.Context, tpl envelope.Template) error {
	payload, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("failed to encode template payload: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO templates (document_id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (document_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = now()`,
		tpl.DocumentID, payload,
	); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}
