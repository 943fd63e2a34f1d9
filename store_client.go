package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// HTTPUserStore talks to the remote user record store over HTTP. It is the
// only place that knows the store's routes and error envelope; everything it
// returns is already classified into the package taxonomy.
type HTTPUserStore struct {
	baseURL string
	client  *http.Client
	logger  Logger
}

// NewHTTPUserStore creates a store client for the given base URL.
func NewHTTPUserStore(baseURL string) *HTTPUserStore {
	return &HTTPUserStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  defLogger{},
	}
}

func (s *HTTPUserStore) WithHTTPClient(client *http.Client) *HTTPUserStore {
	s.client = client
	return s
}

func (s *HTTPUserStore) WithLogger(logger Logger) *HTTPUserStore {
	s.logger = logger
	return s
}

// FindUserByEmail looks a user up by email. Absence is a CategoryNotFound
// error.
func (s *HTTPUserStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	path := "/User?email=" + url.QueryEscape(email)
	if err := s.do(ctx, http.MethodGet, path, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser creates a new user record and returns it as stored.
func (s *HTTPUserStore) CreateUser(ctx context.Context, record *CreateUserRecord) (*User, error) {
	user := &User{}
	if err := s.do(ctx, http.MethodPost, "/User", record, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateActivationToken attaches an activation token record to a user.
func (s *HTTPUserStore) CreateActivationToken(ctx context.Context, userID string, token CreateActivationToken) error {
	path := fmt.Sprintf("/User/%s/ActivationToken", url.PathEscape(userID))
	return s.do(ctx, http.MethodPost, path, token, nil)
}

// FindUserByActivationToken resolves an activation token to its owning user.
// Absence is a CategoryNotFound error.
func (s *HTTPUserStore) FindUserByActivationToken(ctx context.Context, token string) (*User, error) {
	user := &User{}
	path := "/User/ActivationToken/" + url.PathEscape(token)
	if err := s.do(ctx, http.MethodGet, path, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// PatchUser applies a partial update to a user record.
func (s *HTTPUserStore) PatchUser(ctx context.Context, userID string, patch UserPatch) error {
	return s.do(ctx, http.MethodPatch, "/User/"+url.PathEscape(userID), patch, nil)
}

// DeleteUser removes a user record.
func (s *HTTPUserStore) DeleteUser(ctx context.Context, userID string) error {
	return s.do(ctx, http.MethodDelete, "/User/"+url.PathEscape(userID), nil, nil)
}

// serviceError is the remote store's error envelope.
type serviceError struct {
	Message string `json:"message"`
}

// do performs one request against the store. A non-2xx response becomes a
// taxonomy error carrying the remote message and status; a 2xx response is
// decoded into out when out is non-nil, with a JSON null treated as a
// missing record.
func (s *HTTPUserStore) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode store request")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build store request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "user store is unreachable")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read store response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return s.remoteError(resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return goerrors.New("record not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		s.logger.Error("store response decode error", "path", path, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode store response")
	}

	return nil
}

// remoteError maps a non-2xx store response onto the taxonomy, preserving
// the remote message and status code.
func (s *HTTPUserStore) remoteError(status int, payload []byte) error {
	message := http.StatusText(status)

	remote := serviceError{}
	if err := json.Unmarshal(payload, &remote); err == nil && remote.Message != "" {
		message = remote.Message
	}

	remoteErr := goerrors.New(message, categoryForStatus(status)).
		WithMetadata(map[string]any{"store_status": status})
	if status == http.StatusNotFound {
		remoteErr = remoteErr.WithCode(goerrors.CodeNotFound)
	}
	return remoteErr
}

func categoryForStatus(status int) goerrors.Category {
	switch status {
	case http.StatusNotFound:
		return goerrors.CategoryNotFound
	case http.StatusConflict:
		return goerrors.CategoryConflict
	case http.StatusBadRequest:
		return goerrors.CategoryBadInput
	case http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case http.StatusForbidden:
		return goerrors.CategoryAuthz
	case http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return goerrors.CategoryOperation
	default:
		return goerrors.CategoryInternal
	}
}
