// Package remote implements the case store as a client of the caseseam
// HTTP API. Results and errors match the embedded store: validation runs
// locally before any request, and error codes from the server map back to
// the same sentinel errors.
package remote

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

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// Compile-time interface check.
var _ types.CaseGateway = (*Store)(nil)

// maxBody bounds how much of a response is read; maxErrorBody bounds how
// much of it is kept in a RemoteError.
const (
	maxBody      = 4 << 20
	maxErrorBody = 512
)

// Store is a case store reached over HTTP.
type Store struct {
	base   string
	client *http.Client
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout sets the per-request timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client. Apply it before WithTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

// New returns a Store for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Store, error) {
	if baseURL == "" {
		return nil, types.ErrRemoteURLEmpty
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url %q: scheme must be http or https", baseURL)
	}
	s := &Store{
		base:   u.String(),
		client: &http.Client{Timeout: types.DefaultRemoteTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListCases implements types.CaseGateway.
func (s *Store) ListCases(ctx context.Context, q types.ListQuery) (types.PagedResult, error) {
	if err := q.Validate(); err != nil {
		return types.PagedResult{}, err
	}

	endpoint, err := url.JoinPath(s.base, "cases")
	if err != nil {
		return types.PagedResult{}, fmt.Errorf("build url: %w", err)
	}
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("pageSize", strconv.Itoa(q.PageSize))

	var res types.PagedResult
	if err := s.do(ctx, "list cases", http.MethodGet, endpoint+"?"+params.Encode(), nil, &res); err != nil {
		return types.PagedResult{}, err
	}
	if res.Items == nil {
		res.Items = []types.Case{}
	}
	return res, nil
}

// UpdateStatus implements types.CaseGateway.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) (types.Case, error) {
	st, err := types.ParseStatus(status)
	if err != nil {
		return types.Case{}, err
	}

	endpoint, err := url.JoinPath(s.base, "cases", strconv.FormatInt(id, 10), "status")
	if err != nil {
		return types.Case{}, fmt.Errorf("build url: %w", err)
	}
	body, err := json.Marshal(map[string]string{"status": st.String()})
	if err != nil {
		return types.Case{}, fmt.Errorf("encode request: %w", err)
	}

	var c types.Case
	if err := s.do(ctx, "update status", http.MethodPut, endpoint, body, &c); err != nil {
		return types.Case{}, err
	}
	return c, nil
}

// errorBody is the API's error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// do sends one request and decodes a 200 response into v.
func (s *Store) do(ctx context.Context, op, method, endpoint string, body []byte, v any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return &types.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.client.Do(req)
	if err != nil {
		return &types.RemoteError{Op: op, Err: err}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return remoteError(op, res, resBody, err)
	}

	switch {
	case res.StatusCode == http.StatusOK:
		if err := json.Unmarshal(resBody, v); err != nil {
			return remoteError(op, res, resBody, fmt.Errorf("decode response: %w", err))
		}
		return nil
	case res.StatusCode == http.StatusNotFound:
		return types.ErrNotFound
	case res.StatusCode == http.StatusBadRequest:
		var eb errorBody
		if err := json.Unmarshal(resBody, &eb); err != nil {
			return remoteError(op, res, resBody, fmt.Errorf("decode error body: %w", err))
		}
		if sentinel := types.ErrorForCode(eb.Code); sentinel != nil {
			return sentinel
		}
		return fmt.Errorf("%w: %s", types.ErrValidation, eb.Error)
	default:
		return remoteError(op, res, resBody, nil)
	}
}

func remoteError(op string, res *http.Response, body []byte, err error) *types.RemoteError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &types.RemoteError{
		Op:         op,
		StatusCode: res.StatusCode,
		Reason:     http.StatusText(res.StatusCode),
		Body:       string(bytes.TrimSpace(body)),
		Err:        err,
	}
}
