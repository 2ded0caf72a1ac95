// Package gateway is the HTTP client for the cooperative backend. It is the
// only place the console talks to the network; everything above it works
// with records and typed errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"osiedle/internal/core/apperror"
	"osiedle/internal/schema"
)

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   string
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithClock replaces the clock used for cache-buster parameters.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Client for the given base URL (no trailing slash needed).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// errorBody matches the server's error envelope.
type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// do performs one request. Transport failures and 5xx responses map to
// network errors, 400/422 to validation errors; out may be nil when the
// response body is not needed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return apperror.NewNetwork("Błąd połączenia z serwerem").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.NewNetwork("Nieprawidłowa odpowiedź serwera").WithCause(err)
	}
	return nil
}

func (c *Client) mapError(resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &eb)
	msg := eb.Message
	if msg == "" {
		msg = fmt.Sprintf("serwer zwrócił status %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperror.NewUnauthorized(msg)
	case resp.StatusCode == http.StatusForbidden:
		return apperror.NewForbidden(msg)
	case resp.StatusCode == http.StatusNotFound:
		return &apperror.AppError{
			Code:       apperror.CodeNotFound,
			Message:    msg,
			HTTPStatus: http.StatusNotFound,
		}
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return apperror.NewValidation(msg)
	default:
		return apperror.NewNetwork(msg).WithDetail("status", resp.StatusCode)
	}
}

// cacheBuster returns the query values every read of table data carries so
// intermediaries never serve a stale list.
func (c *Client) cacheBuster() url.Values {
	return url.Values{"t": {strconv.FormatInt(c.now().UnixMilli(), 10)}}
}

// List fetches all rows of a table.
func (c *Client) List(ctx context.Context, table string) ([]*schema.Record, error) {
	var out []*schema.Record
	err := c.do(ctx, http.MethodGet, "/data/"+table, c.cacheBuster(), nil, &out)
	return out, err
}

// Search fetches rows of a table matching the query string.
func (c *Client) Search(ctx context.Context, table, query string) ([]*schema.Record, error) {
	q := c.cacheBuster()
	q.Set("q", query)
	var out []*schema.Record
	err := c.do(ctx, http.MethodGet, "/data/"+table+"/search", q, nil, &out)
	return out, err
}

// Insert creates a new row.
func (c *Client) Insert(ctx context.Context, table string, record *schema.Record) error {
	return c.do(ctx, http.MethodPost, "/data/"+table, nil,
		map[string]any{"data": record}, nil)
}

// Update modifies the row identified by idField/idValue.
func (c *Client) Update(ctx context.Context, table, idField, idValue string, record *schema.Record) error {
	path := fmt.Sprintf("/data/%s/%s/%s", table, idField, url.PathEscape(idValue))
	return c.do(ctx, http.MethodPut, path, nil, map[string]any{"data": record}, nil)
}

// Delete removes the row identified by idField/idValue.
func (c *Client) Delete(ctx context.Context, table, idField, idValue string) error {
	path := fmt.Sprintf("/data/%s/%s/%s", table, idField, url.PathEscape(idValue))
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// BulkDelete removes every listed row one by one. It never stops early; when
// some deletions fail the returned error reports how many.
func (c *Client) BulkDelete(ctx context.Context, table, idField string, idValues []string) error {
	var failed int
	for _, id := range idValues {
		if err := c.Delete(ctx, table, idField, id); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return apperror.NewValidation(
			fmt.Sprintf("Nie udało się usunąć %d z %d rekordów", failed, len(idValues)))
	}
	return nil
}

// AddFeeResult is the server confirmation for the add-fee operation.
type AddFeeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AddFee creates a complete fee record through the server-side procedure,
// which owns the amount calculation.
func (c *Client) AddFee(ctx context.Context, apartmentID, serviceID int64, consumption float64) (*AddFeeResult, error) {
	body := map[string]any{
		"id_mieszkania": apartmentID,
		"id_uslugi":     serviceID,
		"zuzycie":       consumption,
	}
	var out AddFeeResult
	if err := c.do(ctx, http.MethodPost, "/procedures/add-fee", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IncreaseFees indexes every service's unit price by percent.
func (c *Client) IncreaseFees(ctx context.Context, percent float64) (*AddFeeResult, error) {
	var out AddFeeResult
	err := c.do(ctx, http.MethodPost, "/procedures/increase-fees", nil,
		map[string]any{"procent": percent}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CountRecords returns the row count of a table.
func (c *Client) CountRecords(ctx context.Context, table string) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, "/functions/count-records/"+table, nil, nil, &out)
	return out.Count, err
}

// ApartmentFees returns the fee total of one apartment.
func (c *Client) ApartmentFees(ctx context.Context, apartmentID int64) (float64, error) {
	var out struct {
		Total float64 `json:"total"`
	}
	path := fmt.Sprintf("/functions/apartment-fees/%d", apartmentID)
	err := c.do(ctx, http.MethodGet, path, nil, nil, &out)
	return out.Total, err
}

// View fetches one of the predefined join views by name.
func (c *Client) View(ctx context.Context, name string) ([]*schema.Record, error) {
	var out []*schema.Record
	err := c.do(ctx, http.MethodGet, "/views/"+name, c.cacheBuster(), nil, &out)
	return out, err
}

// ReportSummary fetches the aggregated management report.
func (c *Client) ReportSummary(ctx context.Context) (map[string]json.RawMessage, error) {
	var out map[string]json.RawMessage
	err := c.do(ctx, http.MethodGet, "/reports/summary", nil, nil, &out)
	return out, err
}

// ResidentSummary is the resident dashboard payload.
type ResidentSummary struct {
	Fees      []*schema.Record `json:"oplaty"`
	Repairs   []*schema.Record `json:"naprawy"`
	Meetings  []*schema.Record `json:"spotkania"`
	Contracts []*schema.Record `json:"umowy"`
	FeesTotal float64          `json:"suma_oplat"`
}

// MyData fetches the resident dashboard for one apartment.
func (c *Client) MyData(ctx context.Context, apartmentID int64) (*ResidentSummary, error) {
	var out ResidentSummary
	path := fmt.Sprintf("/resident/my-data/%d", apartmentID)
	if err := c.do(ctx, http.MethodGet, path, c.cacheBuster(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResidentRecords fetches a resident-scoped dataset as records.
func (c *Client) ResidentRecords(ctx context.Context, kind string, apartmentID int64) ([]*schema.Record, error) {
	var out []*schema.Record
	path := fmt.Sprintf("/resident/%s/%d", kind, apartmentID)
	err := c.do(ctx, http.MethodGet, path, c.cacheBuster(), nil, &out)
	return out, err
}

// Meetings fetches the upcoming resident meetings.
func (c *Client) Meetings(ctx context.Context) ([]*schema.Record, error) {
	var out []*schema.Record
	err := c.do(ctx, http.MethodGet, "/resident/meetings", c.cacheBuster(), nil, &out)
	return out, err
}

// SubmitRepair files a new repair request for an apartment.
func (c *Client) SubmitRepair(ctx context.Context, apartmentID int64, description string) error {
	body := map[string]any{"id_mieszkania": apartmentID, "opis": description}
	return c.do(ctx, http.MethodPost, "/resident/repairs", nil, body, nil)
}

// AuditLogs fetches the most recent audit entries.
func (c *Client) AuditLogs(ctx context.Context) ([]*schema.Record, error) {
	var out []*schema.Record
	err := c.do(ctx, http.MethodGet, "/system/audit-logs", c.cacheBuster(), nil, &out)
	return out, err
}

// LoginResponse is the server reply to both login operations.
type LoginResponse struct {
	Success bool           `json:"success"`
	User    map[string]any `json:"user"`
	Role    string         `json:"role"`
	Token   string         `json:"token"`
}

// LoginAdmin authenticates an administrator. On success the returned token is
// installed on the client for subsequent calls.
func (c *Client) LoginAdmin(ctx context.Context, login, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"login": login, "haslo": password}
	if err := c.do(ctx, http.MethodPost, "/login", nil, body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// LoginResident authenticates a resident by email and apartment number.
func (c *Client) LoginResident(ctx context.Context, email, apartmentNumber string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "numer": apartmentNumber}
	if err := c.do(ctx, http.MethodPost, "/login/resident", nil, body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}
