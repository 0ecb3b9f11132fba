package session

// remote.go implements the collaborator interfaces over HTTP against the
// hosting service's REST API. The session itself never cares whether it is
// talking to these or to the Postgres-backed implementations in the server.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
)

// RemoteClient talks to the hosting service's draft, template, issuance and
// page-metadata endpoints. It implements DraftStore, TemplateStore,
// IssuanceService and PageMetadataService.
type RemoteClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewRemoteClient creates a client for the hosting service at baseURL.
func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ DraftStore = (*RemoteClient)(nil)
var _ TemplateStore = (*RemoteClient)(nil)
var _ IssuanceService = (*RemoteClient)(nil)
var _ PageMetadataService = (*RemoteClient)(nil)

// Load fetches the draft for the document. A 404 means no draft exists.
func (c *RemoteClient) Load(ctx context.Context, documentID string) (envelope.Draft, bool, error) {
	var draft envelope.Draft
	status, err := c.do(ctx, http.MethodGet, "/api/v1/drafts/"+url.PathEscape(documentID), nil, &draft)
	if err != nil {
		return envelope.Draft{}, false, err
	}
	if status == http.StatusNotFound {
		return envelope.Draft{}, false, nil
	}
	return draft, true, nil
}

// Save upserts the draft and returns the server-assigned lastSaved time.
func (c *RemoteClient) Save(ctx context.Context, draft envelope.Draft) (time.Time, error) {
	var saved envelope.Draft
	status, err := c.do(ctx, http.MethodPut, "/api/v1/drafts/"+url.PathEscape(draft.DocumentID), draft, &saved)
	if err != nil {
		return time.Time{}, err
	}
	if status == http.StatusNotFound {
		return time.Time{}, fmt.Errorf("draft endpoint not found")
	}
	return saved.LastSaved, nil
}

// Discard deletes the draft. Deleting a missing draft is not an error.
func (c *RemoteClient) Discard(ctx context.Context, documentID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/drafts/"+url.PathEscape(documentID), nil, nil)
	return err
}

// LoadTemplate fetches the template saved for the document.
func (c *RemoteClient) LoadTemplate(ctx context.Context, documentID string) (envelope.Template, bool, error) {
	var tpl envelope.Template
	status, err := c.do(ctx, http.MethodGet, "/api/v1/templates/"+url.PathEscape(documentID), nil, &tpl)
	if err != nil {
		return envelope.Template{}, false, err
	}
	if status == http.StatusNotFound {
		return envelope.Template{}, false, nil
	}
	return tpl, true, nil
}

// SaveTemplate upserts the template definition.
func (c *RemoteClient) SaveTemplate(ctx context.Context, tpl envelope.Template) error {
	_, err := c.do(ctx, http.MethodPut, "/api/v1/templates/"+url.PathEscape(tpl.DocumentID), tpl, nil)
	return err
}

// Issue posts the issuance request and returns the issued records.
func (c *RemoteClient) Issue(ctx context.Context, req IssuanceRequest) (IssuanceResult, error) {
	var result IssuanceResult
	_, err := c.do(ctx, http.MethodPost, "/api/v1/signature-requests", req, &result)
	if err != nil {
		return IssuanceResult{}, err
	}
	return result, nil
}

// DocumentPages fetches the document's page preview metadata.
func (c *RemoteClient) DocumentPages(ctx context.Context, documentID string) (PagePreview, error) {
	var preview PagePreview
	status, err := c.do(ctx, http.MethodGet, "/api/v1/documents/"+url.PathEscape(documentID)+"/pages", nil, &preview)
	if err != nil {
		return PagePreview{}, err
	}
	if status == http.StatusNotFound {
		return PagePreview{}, fmt.Errorf("document %s not found", documentID)
	}
	return preview, nil
}

// Release frees the preview resource server-side.
func (c *RemoteClient) Release(ctx context.Context, documentID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/documents/"+url.PathEscape(documentID)+"/pages", nil, nil)
	return err
}

// do issues one JSON request. A 404 is returned to the caller via the status
// code; other non-2xx statuses become errors carrying the server's error
// body when it has one.
func (c *RemoteClient) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return resp.StatusCode, fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return resp.StatusCode, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
