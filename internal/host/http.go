package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/pricofy/langbly-node/internal/chunker"
	"github.com/pricofy/langbly-node/internal/credential"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPHelper is the host's authenticated HTTP helper. Credentials are
// registered by type name before the helper is handed to a node.
type HTTPHelper struct {
	client    Doer
	userAgent string
	logger    *zap.Logger
	auth      map[string]Authenticator
}

// APIError is returned when the remote service answers with a non-2xx status
type APIError struct {
	StatusCode int
	Message    string
}

const maxErrorBody = 512

var (
	ErrUnknownCredential = errors.New("credential type is not registered")
	ErrInvalidURL        = errors.New("request URL is invalid")
	ErrCredentialTest    = errors.New("credential test failed")
)

// NewHTTPHelper creates a helper that sends requests through client
func NewHTTPHelper(client Doer, userAgent string, logger *zap.Logger) *HTTPHelper {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHelper{
		client:    client,
		userAgent: userAgent,
		logger:    logger,
		auth:      map[string]Authenticator{},
	}
}

// Register makes a credential available under the given type name
func (h *HTTPHelper) Register(name string, a Authenticator) *HTTPHelper {
	h.auth[name] = a
	return h
}

// RequestWithAuthentication sends the request described by opts with the
// named credential applied and returns the response body
func (h *HTTPHelper) RequestWithAuthentication(
	ctx context.Context, credentialType string, opts credential.RequestOptions,
) ([]byte, error) {
	auth, ok := h.auth[credentialType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCredential, credentialType)
	}

	req, err := h.newRequest(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := auth.Authenticate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Redacted(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	h.logger.Debug("HTTP request completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.Status),
		}
	}
	return body, nil
}

// TestCredential fires a credential's test request. Any 2xx answer counts
// as a valid credential
func (h *HTTPHelper) TestCredential(
	ctx context.Context, credentialType string, opts credential.RequestOptions,
) error {
	_, err := h.RequestWithAuthentication(ctx, credentialType, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCredentialTest, err)
	}
	return nil
}

func (h *HTTPHelper) newRequest(
	ctx context.Context, opts credential.RequestOptions,
) (*http.Request, error) {
	url, err := resolveURL(opts.BaseURL, opts.URL)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func resolveURL(base, path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	if base == "" {
		return "", fmt.Errorf("%w: %q has no base URL", ErrInvalidURL, path)
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/"), nil
}

func errorMessage(body []byte, status string) string {
	for _, path := range []string{"error.message", "message", "error"} {
		if res := gjson.GetBytes(body, path); res.Type == gjson.String {
			return res.String()
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return status
	}
	return chunker.Sample(msg, maxErrorBody)
}

// Error implements the error interface for APIError
func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s",
		e.StatusCode, e.Message)
}
