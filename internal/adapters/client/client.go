// Package client talks to the eventdesk REST API. Client implements
// staging.Service so an import session can run against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventdesk/internal/adapters/spreadsheet"
	"eventdesk/internal/application/staging"
	"eventdesk/internal/domain/participant"
)

// DefaultTimeout bounds every request made by a Client created without an http.Client.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read into APIError.Message.
const maxErrorBody = 4 << 10

// APIError is a non-2xx response. Message is the server's plain-text body and
// may be empty.
type APIError struct {
	Status  int
	Message string
}

// Error returns the server's message so it can be shown to the organizer as is.
func (e *APIError) Error() string {
	return e.Message
}

// Account is the identity returned by Login.
type Account struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// ImportResult is the server's answer to an upload.
type ImportResult struct {
	Candidates []participant.Participant `json:"candidates"`
	RowErrors  []spreadsheet.RowError    `json:"rowErrors"`
}

// Client is a REST client for one eventdesk server.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ staging.Service = (*Client)(nil)

// New creates a client for the server at baseURL. When httpClient is nil a
// client with a cookie jar and DefaultTimeout is used, so the session cookie
// from Login is sent on later calls.
// PRE: baseURL is an absolute http(s) URL
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Jar: jar, Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

// Login authenticates and stores the session cookie in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (Account, error) {
	var acct Account
	err := c.doJSON(ctx, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, &acct)
	return acct, err
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// Import uploads a spreadsheet and returns the staged candidates with any row errors.
// PRE: file yields the whole upload
func (c *Client) Import(ctx context.Context, eventID int64, filename, contentType string, file io.Reader) (ImportResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return ImportResult{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return ImportResult{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return ImportResult{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, participantsPath(eventID)+"/import", &body)
	if err != nil {
		return ImportResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result ImportResult
	if err := c.do(req, &result); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

// ImportParticipants uploads a spreadsheet and returns its candidates.
// Rows the server could not read are logged and left out.
func (c *Client) ImportParticipants(ctx context.Context, eventID int64, filename, contentType string, file io.Reader) ([]participant.Participant, error) {
	result, err := c.Import(ctx, eventID, filename, contentType, file)
	if err != nil {
		return nil, err
	}
	for _, re := range result.RowErrors {
		slog.Warn("participants_import_row_skipped", "event_id", eventID, "file", filename, "row", re.Row, "reason", re.Message)
	}
	return result.Candidates, nil
}

// SaveParticipants posts records in one batch.
// POST: Returns the server's verdict; a rejected batch is an *APIError
func (c *Client) SaveParticipants(ctx context.Context, eventID int64, records []participant.Participant) (bool, error) {
	var ok bool
	if err := c.doJSON(ctx, http.MethodPost, participantsPath(eventID), records, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// GetParticipantsByEventID fetches one 0-indexed page of saved participants.
// sortKey has the form "key" or "key,asc|desc".
func (c *Client) GetParticipantsByEventID(ctx context.Context, eventID int64, page, size int, sortKey string) (staging.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if sortKey != "" {
		q.Set("sort", sortKey)
	}
	var p staging.Page
	err := c.doJSON(ctx, http.MethodGet, participantsPath(eventID)+"?"+q.Encode(), nil, &p)
	return p, err
}

// DeleteParticipant removes a saved participant.
func (c *Client) DeleteParticipant(ctx context.Context, eventID, participantID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", participantsPath(eventID), participantID), nil, nil)
}

func participantsPath(eventID int64) string {
	return fmt.Sprintf("/api/events/%d/participants", eventID)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON sends in as a JSON body (when non-nil) and decodes the response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
