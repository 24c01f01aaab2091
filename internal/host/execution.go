package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pricofy/langbly-node/internal/domain"
	"github.com/pricofy/langbly-node/internal/schema"
)

// Execution is an in-process ExecuteFunctions. Parameters are shared by all
// items; string values starting with "=" are templates whose {{ $json.path }}
// placeholders resolve against the current item. Parameters that are not
// set fall back to the property defaults.
type Execution struct {
	Items      []domain.Item
	Parameters map[string]any
	Properties schema.Properties
	Client     AuthenticatedClient
	Continue   bool
}

var (
	ErrItemIndex             = errors.New("item index out of range")
	ErrUnknownParameter      = errors.New("unknown node parameter")
	ErrUnsupportedExpression = errors.New("unsupported expression")
)

var placeholder = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

var _ ExecuteFunctions = (*Execution)(nil)

// InputData returns the items the node executes over
func (e *Execution) InputData() []domain.Item {
	return e.Items
}

// ContinueOnFail reports whether failing items become error items
func (e *Execution) ContinueOnFail() bool {
	return e.Continue
}

// HTTP returns the authenticated HTTP helper
func (e *Execution) HTTP() AuthenticatedClient {
	return e.Client
}

// NodeParameter resolves a parameter for the item at itemIndex
func (e *Execution) NodeParameter(name string, itemIndex int) (any, error) {
	if itemIndex < 0 || itemIndex >= len(e.Items) {
		return nil, fmt.Errorf("%w: %d", ErrItemIndex, itemIndex)
	}

	v, ok := e.Parameters[name]
	if !ok {
		prop, found := e.Properties.Find(name)
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
		}
		v = prop.DefaultValue()
	}

	item, err := json.Marshal(e.Items[itemIndex].JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item %d: %w", itemIndex, err)
	}
	return resolve(v, item)
}

func resolve(v any, item []byte) (any, error) {
	switch v := v.(type) {
	case string:
		if !strings.HasPrefix(v, "=") {
			return v, nil
		}
		return evaluate(v[1:], item)
	case map[string]any:
		res := make(map[string]any, len(v))
		for k, e := range v {
			r, err := resolve(e, item)
			if err != nil {
				return nil, err
			}
			res[k] = r
		}
		return res, nil
	default:
		return v, nil
	}
}

func evaluate(tmpl string, item []byte) (any, error) {
	matches := placeholder.FindAllStringSubmatchIndex(tmpl, -1)
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(tmpl) {
		res, err := lookup(tmpl[matches[0][2]:matches[0][3]], item)
		if err != nil {
			return nil, err
		}
		return res.Value(), nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(tmpl[last:m[0]])
		res, err := lookup(tmpl[m[2]:m[3]], item)
		if err != nil {
			return nil, err
		}
		sb.WriteString(res.String())
		last = m[1]
	}
	sb.WriteString(tmpl[last:])
	return sb.String(), nil
}

func lookup(expr string, item []byte) (gjson.Result, error) {
	path, ok := strings.CutPrefix(expr, "$json")
	if !ok {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrUnsupportedExpression, expr)
	}
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return gjson.ParseBytes(item), nil
	}
	return gjson.GetBytes(item, path), nil
}
