// Package supabase talks to a Supabase project: PostgREST for rows and
// Realtime for insert events.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Swipeline/internal/backend"
)

// Client is a PostgREST client for one project
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Config holds client configuration
type Config struct {
	HTTPClient *http.Client
	URL        string
	APIKey     string
}

// New creates a client
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("supabase API key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
	}, nil
}

// APIError is the error body PostgREST returns
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest %d: %s", e.StatusCode, e.Message)
}

// From starts a query on table
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table, params: url.Values{}}
}

// Query builds one PostgREST request
type Query struct {
	client *Client
	params url.Values
	table  string
	single bool
}

// Select sets the returned columns, including embedded resources
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

// Eq filters column = value
func (q *Query) Eq(column, value string) *Query {
	q.params.Add(column, "eq."+value)
	return q
}

// Neq filters column <> value
func (q *Query) Neq(column, value string) *Query {
	q.params.Add(column, "neq."+value)
	return q
}

// In filters column to one of values
func (q *Query) In(column string, values []string) *Query {
	q.params.Add(column, "in."+list(values))
	return q
}

// NotIn filters out values. An empty list adds no filter.
func (q *Query) NotIn(column string, values []string) *Query {
	if len(values) == 0 {
		return q
	}
	q.params.Add(column, "not.in."+list(values))
	return q
}

// Or adds a raw PostgREST or=(...) expression
func (q *Query) Or(expr string) *Query {
	q.params.Add("or", "("+expr+")")
	return q
}

// Order sorts by column
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	if existing := q.params.Get("order"); existing != "" {
		q.params.Set("order", existing+","+column+"."+dir)
	} else {
		q.params.Set("order", column+"."+dir)
	}
	return q
}

// Limit caps the number of rows
func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// Single asks for exactly one row; zero rows is a NotFound error
func (q *Query) Single() *Query {
	q.single = true
	return q
}

// Execute runs a GET and decodes the rows into dest
func (q *Query) Execute(ctx context.Context, dest any) error {
	req, err := q.request(ctx, http.MethodGet, nil)
	if err != nil {
		return err
	}
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	return q.client.do(req, "select "+q.table, dest)
}

// Insert posts data. dest may be nil when the representation is not needed.
func (q *Query) Insert(ctx context.Context, data, dest any) error {
	return q.write(ctx, data, dest, "")
}

// Upsert posts data, merging on the onConflict columns
func (q *Query) Upsert(ctx context.Context, data any, onConflict string, dest any) error {
	q.params.Set("on_conflict", onConflict)
	return q.write(ctx, data, dest, "resolution=merge-duplicates")
}

func (q *Query) write(ctx context.Context, data, dest any, resolution string) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s row: %w", q.table, err)
	}

	req, err := q.request(ctx, http.MethodPost, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	prefer := "return=minimal"
	if dest != nil {
		prefer = "return=representation"
	}
	if resolution != "" {
		prefer = resolution + "," + prefer
	}
	req.Header.Set("Prefer", prefer)

	return q.client.do(req, "insert "+q.table, dest)
}

func (q *Query) request(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	reqURL := q.client.baseURL + "/rest/v1/" + q.table
	if len(q.params) > 0 {
		reqURL += "?" + q.params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", q.client.apiKey)
	req.Header.Set("Authorization", "Bearer "+q.client.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, op string, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return backend.Wrap(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return backend.Wrap(op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		return classifyResponse(op, resp.StatusCode, body)
	}

	if dest == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return backend.New(op, backend.KindUnknown, "", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// classifyResponse prefers the Postgres/PostgREST code over the HTTP status
func classifyResponse(op string, status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}

	kind := backend.KindFromCode(apiErr.Code)
	if kind == backend.KindUnknown {
		kind = backend.KindFromStatus(status)
	}
	return backend.New(op, kind, apiErr.Code, apiErr)
}

// list renders values as a PostgREST list, quoting each item
func list(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		quoted[i] = `"` + v + `"`
	}
	return "(" + strings.Join(quoted, ",") + ")"
}
