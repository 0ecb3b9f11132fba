package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/session"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/signlink"
)

var _ session.IssuanceService = (*Store)(nil)

// RequestRecord is a stored signature-request row.
type RequestRecord struct {
	UniqueID          string     `json:"uniqueId"`
	DocumentID        string     `json:"documentId"`
	RecipientName     string     `json:"recipientName"`
	RecipientEmail    string     `json:"recipientEmail"`
	Status            string     `json:"status"`
	SigningOrder      string     `json:"signingOrder"`
	SigningOrderIndex int        `json:"signingOrderIndex"`
	LinkToken         string     `json:"linkToken,omitempty"`
	ExpiresAt         time.Time  `json:"expiresAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

// CCRecord is a stored view-only CC row.
type CCRecord struct {
	UniqueID   string    `json:"uniqueId"`
	DocumentID string    `json:"documentId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	NotifyWhen string    `json:"notifyWhen"`
	LinkToken  string    `json:"linkToken,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Issue creates one signature-request record per recipient and one CC record
// per CC recipient, all in a single transaction.
//
// The envelope checksum is the idempotency key: re-posting an identical
// envelope returns the records created by the first call instead of issuing
// twice. Sequential envelopes mark only the first recipient pending; the
// rest wait until CompleteRequest advances them.
func (s *Store) Issue(ctx context.Context, req session.IssuanceRequest) (session.IssuanceResult, error) {
	if req.Checksum == "" {
		return session.IssuanceResult{}, fmt.Errorf("issuance request has no checksum")
	}

	expirationDays, err := strconv.Atoi(strings.TrimSpace(req.ExpirationDays))
	if err != nil || expirationDays <= 0 {
		return session.IssuanceResult{}, fmt.Errorf("invalid expiration days: %q", req.ExpirationDays)
	}
	expiresAt := time.Now().UTC().AddDate(0, 0, expirationDays)

	payload, err := json.Marshal(req)
	if err != nil {
		return session.IssuanceResult{}, fmt.Errorf("failed to encode issuance payload: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return session.IssuanceResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// idempotent replay: identical envelope content was already issued
	existing, err := s.loadIssued(ctx, tx, req.DocumentID, req.Checksum)
	if err != nil {
		return session.IssuanceResult{}, err
	}
	if len(existing.SignatureRequests) > 0 {
		return existing, nil
	}

	var result session.IssuanceResult
	for i, r := range req.Recipients {
		status := session.StatusPendingNotification
		if req.SigningOrder == envelope.SigningOrderSequential && i > 0 {
			status = session.StatusWaiting
		}

		uniqueID := uuid.NewString()
		linkToken, err := s.mintToken(uniqueID, r.Email, signlink.RoleSigner)
		if err != nil {
			return session.IssuanceResult{}, err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO signature_requests
				(unique_id, document_id, envelope_checksum, recipient_name,
				 recipient_email, status, signing_order, signing_order_index,
				 link_token, payload, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			uniqueID, req.DocumentID, req.Checksum, r.Name, r.Email,
			status, string(req.SigningOrder), i, linkToken, payload, expiresAt,
		); err != nil {
			if isUniqueViolation(err) {
				return session.IssuanceResult{}, fmt.Errorf("signature requests already issued for this envelope")
			}
			return session.IssuanceResult{}, fmt.Errorf("failed to insert signature request: %w", err)
		}

		result.SignatureRequests = append(result.SignatureRequests, session.IssuedRequest{
			Recipient:         r.Name,
			Email:             r.Email,
			UniqueID:          uniqueID,
			Status:            status,
			SigningOrderIndex: i,
			LinkToken:         linkToken,
		})
	}

	for _, cc := range req.CCRecipients {
		uniqueID := uuid.NewString()
		linkToken, err := s.mintToken(uniqueID, cc.Email, signlink.RoleCC)
		if err != nil {
			return session.IssuanceResult{}, err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO cc_recipients
				(unique_id, document_id, envelope_checksum, name, email,
				 notify_when, link_token)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uniqueID, req.DocumentID, req.Checksum, cc.Name, cc.Email,
			string(cc.NotifyWhen), linkToken,
		); err != nil {
			return session.IssuanceResult{}, fmt.Errorf("failed to insert cc recipient: %w", err)
		}

		result.CCRecipients = append(result.CCRecipients, session.IssuedCC{
			Name:      cc.Name,
			Email:     cc.Email,
			UniqueID:  uniqueID,
			LinkToken: linkToken,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return session.IssuanceResult{}, fmt.Errorf("failed to commit issuance: %w", err)
	}
	return result, nil
}

func (s *Store) mintToken(uniqueID, email string, role signlink.Role) (string, error) {
	if s.signer == nil {
		return "", nil
	}
	token, err := s.signer.Mint(uniqueID, email, role)
	if err != nil {
		return "", fmt.Errorf("failed to mint link token: %w", err)
	}
	return token, nil
}

// loadIssued returns records previously issued for the same envelope content.
func (s *Store) loadIssued(ctx context.Context, tx pgx.Tx, documentID, checksum string) (session.IssuanceResult, error) {
	var result session.IssuanceResult

	rows, err := tx.Query(ctx, `
		SELECT unique_id, recipient_name, recipient_email, status,
		       signing_order_index, link_token
		FROM signature_requests
		WHERE document_id = $1 AND envelope_checksum = $2
		ORDER BY signing_order_index`,
		documentID, checksum)
	if err != nil {
		return session.IssuanceResult{}, fmt.Errorf("failed to query issued requests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r session.IssuedRequest
		if err := rows.Scan(&r.UniqueID, &r.Recipient, &r.Email, &r.Status, &r.SigningOrderIndex, &r.LinkToken); err != nil {
			return session.IssuanceResult{}, fmt.Errorf("failed to scan issued request: %w", err)
		}
		result.SignatureRequests = append(result.SignatureRequests, r)
	}
	if err := rows.Err(); err != nil {
		return session.IssuanceResult{}, err
	}

	ccRows, err := tx.Query(ctx, `
		SELECT unique_id, name, email, link_token
		FROM cc_recipients
		WHERE document_id = $1 AND envelope_checksum = $2
		ORDER BY created_at`,
		documentID, checksum)
	if err != nil {
		return session.IssuanceResult{}, fmt.Errorf("failed to query issued cc recipients: %w", err)
	}
	defer ccRows.Close()
	for ccRows.Next() {
		var cc session.IssuedCC
		if err := ccRows.Scan(&cc.UniqueID, &cc.Name, &cc.Email, &cc.LinkToken); err != nil {
			return session.IssuanceResult{}, fmt.Errorf("failed to scan issued cc recipient: %w", err)
		}
		result.CCRecipients = append(result.CCRecipients, cc)
	}
	return result, ccRows.Err()
}

// GetRequestByToken resolves a signing-link token to its request record.
func (s *Store) GetRequestByToken(ctx context.Context, uniqueID string) (RequestRecord, bool, error) {
	var r RequestRecord
	err := s.pool.QueryRow(ctx, `
		SELECT unique_id, document_id, recipient_name, recipient_email,
		       status, signing_order, signing_order_index, link_token,
		       expires_at, created_at, completed_at
		FROM signature_requests
		WHERE unique_id = $1`,
		uniqueID,
	).Scan(&r.UniqueID, &r.DocumentID, &r.RecipientName, &r.RecipientEmail,
		&r.Status, &r.SigningOrder, &r.SigningOrderIndex, &r.LinkToken,
		&r.ExpiresAt, &r.CreatedAt, &r.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RequestRecord{}, false, nil
	}
	if err != nil {
		return RequestRecord{}, false, fmt.Errorf("failed to load signature request: %w", err)
	}
	return r, true, nil
}

// GetCCByToken resolves a view-only link token to its CC record.
func (s *Store) GetCCByToken(ctx context.Context, uniqueID string) (CCRecord, bool, error) {
	var cc CCRecord
	err := s.pool.QueryRow(ctx, `
		SELECT unique_id, document_id, name, email, notify_when, link_token, created_at
		FROM cc_recipients
		WHERE unique_id = $1`,
		uniqueID,
	).Scan(&cc.UniqueID, &cc.DocumentID, &cc.Name, &cc.Email, &cc.NotifyWhen, &cc.LinkToken, &cc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CCRecord{}, false, nil
	}
	if err != nil {
		return CCRecord{}, false, fmt.Errorf("failed to load cc recipient: %w", err)
	}
	return cc, true, nil
}

// CompleteRequest marks a signature request completed. On a sequential
// envelope the next waiting recipient (by signing order index) moves to
// pending so their notification goes out, all in one transaction.
func (s *Store) CompleteRequest(ctx context.Context, uniqueID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var documentID, checksum, signingOrder string
	var orderIndex int
	err = tx.QueryRow(ctx, `
		UPDATE signature_requests
		SET status = 'completed', completed_at = now()
		WHERE unique_id = $1 AND completed_at IS NULL
		RETURNING document_id, envelope_checksum, signing_order, signing_order_index`,
		uniqueID,
	).Scan(&documentID, &checksum, &signingOrder, &orderIndex)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("signature request %s not found or already completed", uniqueID)
	}
	if err != nil {
		return fmt.Errorf("failed to complete signature request: %w", err)
	}

	if signingOrder == string(envelope.SigningOrderSequential) {
		if _, err := tx.Exec(ctx, `
			UPDATE signature_requests
			SET status = $1
			WHERE document_id = $2 AND envelope_checksum = $3
			  AND status = $4 AND signing_order_index = $5`,
			session.StatusPendingNotification, documentID, checksum,
			session.StatusWaiting, orderIndex+1,
		); err != nil {
			return fmt.Errorf("failed to advance sequential envelope: %w", err)
		}
	}

	return tx.Commit(ctx)
}
