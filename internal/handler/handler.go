// Package handler adapts host requests to the Langbly node. It is shared by
// the Lambda, HTTP and CLI entrypoints.
package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricofy/langbly-node/internal/config"
	"github.com/pricofy/langbly-node/internal/credential"
	"github.com/pricofy/langbly-node/internal/domain"
	"github.com/pricofy/langbly-node/internal/host"
	"github.com/pricofy/langbly-node/internal/node"
	"github.com/pricofy/langbly-node/internal/router"
)

// Actions a request may ask for
const (
	ActionExecute        = "execute"
	ActionTestCredential = "testCredential"
	ActionDescribe       = "describe"
)

// StatusOK is reported by a successful credential test
const StatusOK = "ok"

const (
	paramResource  = "resource"
	paramOperation = "operation"
)

// Request is the input to the handler.
type Request struct {
	Action         string                 `json:"action,omitempty" yaml:"action,omitempty"`
	Items          []domain.Item          `json:"items" yaml:"items"`
	Parameters     map[string]any         `json:"parameters" yaml:"parameters"`
	ContinueOnFail bool                   `json:"continueOnFail" yaml:"continueOnFail"`
	Credentials    *credential.Credential `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// Response is the output from the handler.
type Response struct {
	ExecutionID string                 `json:"executionId,omitempty" yaml:"executionId,omitempty"`
	Items       []domain.Item          `json:"items,omitempty" yaml:"items,omitempty"`
	Status      string                 `json:"status,omitempty" yaml:"status,omitempty"`
	Description *node.Description      `json:"description,omitempty" yaml:"description,omitempty"`
	Credential  *credential.Definition `json:"credential,omitempty" yaml:"credential,omitempty"`
	Error       string                 `json:"error,omitempty" yaml:"error,omitempty"`
	ItemIndex   *int                   `json:"itemIndex,omitempty" yaml:"itemIndex,omitempty"`
}

// Handler executes host requests against the Langbly node.
type Handler struct {
	cfg    config.LangblyConfig
	node   *node.Node
	client host.Doer
	logger *zap.Logger
}

// New creates a Handler. Outgoing calls go through client.
func New(cfg config.LangblyConfig, client host.Doer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:    cfg,
		client: client,
		logger: logger,
		node: node.New(
			node.WithBaseURL(cfg.BaseURL),
			node.WithUserAgent(cfg.UserAgent),
			node.WithLogger(logger),
		),
	}
}

// Handle processes a request. Failures are reported in Response.Error; the
// returned error is reserved for failures of the handler itself.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	switch req.Action {
	case "", ActionExecute:
		return h.execute(ctx, req)
	case ActionTestCredential:
		return h.testCredential(ctx, req)
	case ActionDescribe:
		return h.describe(), nil
	default:
		return &Response{
			Error: fmt.Sprintf("unknown action %q", req.Action),
		}, nil
	}
}

func (h *Handler) execute(ctx context.Context, req Request) (*Response, error) {
	// Validate request
	if err := h.validateRequest(req); err != nil {
		return &Response{Error: err.Error()}, nil
	}

	id := uuid.NewString()
	logger := h.logger.With(zap.String("execution_id", id))

	// Empty input - return immediately
	if len(req.Items) == 0 {
		return &Response{ExecutionID: id, Items: []domain.Item{}}, nil
	}

	cred, err := h.credential(req)
	if err != nil {
		return &Response{ExecutionID: id, Error: err.Error()}, nil
	}

	exec := &host.Execution{
		Items:      req.Items,
		Parameters: req.Parameters,
		Properties: h.node.Properties(),
		Client:     h.helper(cred, logger),
		Continue:   req.ContinueOnFail,
	}

	logger.Info("Executing node",
		zap.Int("items", len(req.Items)),
		zap.Bool("continue_on_fail", req.ContinueOnFail))

	items, err := h.node.Execute(ctx, exec)
	if err != nil {
		logger.Error("Execution failed", zap.Error(err))
		res := &Response{ExecutionID: id, Error: err.Error()}
		var opErr *node.OperationError
		if errors.As(err, &opErr) {
			res.ItemIndex = &opErr.ItemIndex
		}
		return res, nil
	}

	return &Response{ExecutionID: id, Items: items}, nil
}

func (h *Handler) testCredential(
	ctx context.Context, req Request,
) (*Response, error) {
	cred, err := h.credential(req)
	if err != nil {
		return &Response{Error: err.Error()}, nil
	}

	test := credential.TestRequest()
	test.BaseURL = h.cfg.BaseURL

	err = h.helper(cred, h.logger).TestCredential(ctx, credential.Name, test)
	if err != nil {
		h.logger.Warn("Credential test failed", zap.Error(err))
		return &Response{Error: err.Error()}, nil
	}
	return &Response{Status: StatusOK}, nil
}

func (h *Handler) describe() *Response {
	desc := h.node.Description()
	def := credential.Type()
	return &Response{Description: &desc, Credential: &def}
}

func (h *Handler) helper(
	cred credential.Credential, logger *zap.Logger,
) *host.HTTPHelper {
	return host.NewHTTPHelper(h.client, h.cfg.UserAgent, logger).
		Register(credential.Name, cred)
}

// credential picks the request's own credential, falling back to the
// configured key
func (h *Handler) credential(req Request) (credential.Credential, error) {
	if req.Credentials != nil {
		if key := strings.TrimSpace(req.Credentials.APIKey); key != "" {
			return credential.Credential{APIKey: key}, nil
		}
	}
	if h.cfg.APIKey != "" {
		return credential.Credential{APIKey: h.cfg.APIKey}, nil
	}
	return credential.Credential{}, credential.ErrMissingAPIKey
}

// validateRequest checks the request is valid. When resource and operation
// are static, the operation must exist and every parameter must be shown
// for it.
func (h *Handler) validateRequest(req Request) error {
	if req.Items == nil {
		return fmt.Errorf("items is required")
	}
	props := h.node.Properties()
	var unknown []string
	for name := range req.Parameters {
		if _, ok := props.Find(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown parameters: %v", unknown)
	}

	values := props.Defaults()
	for name, v := range req.Parameters {
		values[name] = v
	}
	resource, ok := staticString(values[paramResource])
	if !ok {
		return nil
	}
	operation, ok := staticString(values[paramOperation])
	if !ok {
		return nil
	}

	if !h.node.Supports(resource, operation) {
		return fmt.Errorf("%w: %s.%s (supported operations: %v)",
			router.ErrUnsupportedOperation, resource, operation,
			h.node.Operations(resource))
	}

	var unused []string
	for name := range req.Parameters {
		if !props.Visible(name, values) {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return fmt.Errorf("parameters not used by %s.%s: %v",
			resource, operation, unused)
	}
	return nil
}

// staticString returns v when it is a plain string rather than an
// expression resolved per item
func staticString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.HasPrefix(s, "=") {
		return "", false
	}
	return s, true
}
