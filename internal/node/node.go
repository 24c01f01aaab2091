// Package node implements the Langbly workflow node. The host calls Execute
// once per workflow run with the input items; every item is translated (or
// language-detected) with one call to the Langbly API, in input order.
package node

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/pricofy/langbly-node/internal/credential"
	"github.com/pricofy/langbly-node/internal/domain"
	"github.com/pricofy/langbly-node/internal/host"
	"github.com/pricofy/langbly-node/internal/router"
	"github.com/pricofy/langbly-node/internal/schema"
)

// DefaultUserAgent identifies the node to the Langbly API
const DefaultUserAgent = "langbly-node/1.0.0"

// Node is the Langbly translation node. It holds no per-run state and may
// execute concurrent runs.
type Node struct {
	baseURL   string
	userAgent string
	logger    *zap.Logger
	props     schema.Properties
	router    *router.Router
}

// Option configures a Node
type Option func(*Node)

// WithBaseURL points the node at another Langbly API origin
func WithBaseURL(url string) Option {
	return func(n *Node) {
		n.baseURL = strings.TrimRight(url, "/")
	}
}

// WithUserAgent overrides the User-Agent sent to the Langbly API
func WithUserAgent(ua string) Option {
	return func(n *Node) {
		n.userAgent = ua
	}
}

// WithLogger sets the node's logger
func WithLogger(logger *zap.Logger) Option {
	return func(n *Node) {
		n.logger = logger
	}
}

// New creates a Langbly node
func New(opts ...Option) *Node {
	n := &Node{
		baseURL:   credential.DefaultBaseURL,
		userAgent: DefaultUserAgent,
		logger:    zap.NewNop(),
		props:     properties(),
	}
	n.router = router.New().
		Handle(ResourceTranslation, OperationTranslate, n.translate).
		Handle(ResourceTranslation, OperationDetect, n.detect)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Description returns the node description presented to the host
func (n *Node) Description() Description {
	return GetDescription()
}

// Properties returns the node's parameter definitions
func (n *Node) Properties() schema.Properties {
	return n.props
}

// Supports reports whether the node implements operation on resource
func (n *Node) Supports(resource, operation string) bool {
	return n.router.IsSupported(resource, operation)
}

// Operations lists the operations implemented for resource, sorted
func (n *Node) Operations(resource string) []string {
	return n.router.Operations(resource)
}

// Execute processes the input items one at a time, in order. A failing item
// aborts the run with an *OperationError unless the host continues on
// failure, in which case it yields an error item and processing goes on.
func (n *Node) Execute(
	ctx context.Context, exec host.ExecuteFunctions,
) ([]domain.Item, error) {
	items := exec.InputData()
	batch := NewBatch(len(items))

	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := n.executeItem(ctx, exec, i)
		if res.Failed() {
			if !exec.ContinueOnFail() {
				return nil, &OperationError{ItemIndex: i, Err: res.Err}
			}
			n.logger.Warn("Item failed, continuing",
				zap.Int("item", i),
				zap.Error(res.Err))
		}
		batch.Add(res)
	}

	n.logger.Debug("Execution finished",
		zap.Int("items", len(items)),
		zap.Int("failures", batch.Failures()))
	return batch.Items(), nil
}

func (n *Node) executeItem(
	ctx context.Context, exec host.ExecuteFunctions, i int,
) ItemResult {
	resource, err := stringParam(exec, paramResource, i)
	if err != nil {
		return Failure(i, err)
	}
	operation, err := stringParam(exec, paramOperation, i)
	if err != nil {
		return Failure(i, err)
	}

	json, err := n.router.Route(ctx, exec, resource, operation, i)
	if err != nil {
		return Failure(i, err)
	}
	return Success(i, json)
}

// requestTranslation posts one translate request and returns the first
// translation in the response
func (n *Node) requestTranslation(
	ctx context.Context, client host.AuthenticatedClient,
	req domain.TranslateRequest,
) (domain.Translation, error) {
	if client == nil {
		return domain.Translation{}, ErrNoHTTPClient
	}
	body, err := client.RequestWithAuthentication(ctx, credential.Name,
		credential.RequestOptions{
			Method:  http.MethodPost,
			BaseURL: n.baseURL,
			URL:     credential.TranslatePath,
			Headers: map[string]string{
				"Content-Type": "application/json",
				"User-Agent":   n.userAgent,
			},
			Body: req,
		},
	)
	if err != nil {
		return domain.Translation{}, err
	}
	return firstTranslation(body)
}

func firstTranslation(body []byte) (domain.Translation, error) {
	translations := gjson.GetBytes(body, "data.translations")
	if !translations.IsArray() {
		return domain.Translation{}, ErrNoTranslations
	}
	all := translations.Array()
	if len(all) == 0 || !all[0].IsObject() {
		return domain.Translation{}, ErrNoTranslations
	}
	return domain.Translation{
		TranslatedText:         all[0].Get("translatedText").String(),
		DetectedSourceLanguage: all[0].Get("detectedSourceLanguage").String(),
	}, nil
}

func stringParam(p host.ParameterSource, name string, i int) (string, error) {
	v, err := p.NodeParameter(name, i)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64, int, bool:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidParameter, name)
	}
}

func collectionParam(
	p host.ParameterSource, name string, i int,
) (map[string]any, error) {
	v, err := p.NodeParameter(name, i)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a collection", ErrInvalidParameter, name)
	}
}

// optionValue reads a collection entry and checks it against the allowed
// values of the matching collection field, if it has any
func (n *Node) optionValue(opts map[string]any, name string) (string, error) {
	v, ok := opts[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidParameter, name)
	}
	if s == "" {
		return "", nil
	}

	coll, _ := n.props.Find(paramOptions)
	for _, f := range coll.Fields {
		if f.Name != name || len(f.Options) == 0 {
			continue
		}
		if !slices.Contains(f.OptionValues(), s) {
			return "", fmt.Errorf("%w: %s %q", ErrInvalidOption, name, s)
		}
	}
	return s, nil
}

// normalizeLanguage trims and lowercases a language code
func normalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
