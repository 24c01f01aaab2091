package node_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pricofy/langbly-node/internal/credential"
	"github.com/pricofy/langbly-node/internal/domain"
	"github.com/pricofy/langbly-node/internal/host"
	"github.com/pricofy/langbly-node/internal/node"
	"github.com/pricofy/langbly-node/internal/router"
)

type (
	call struct {
		credentialType string
		opts           credential.RequestOptions
	}

	response struct {
		body string
		err  error
	}

	fakeClient struct {
		calls     []call
		responses []response
	}
)

const okBody = `{"data":{"translations":[` +
	`{"translatedText":"Hallo wereld","detectedSourceLanguage":"en"}]}}`

func (f *fakeClient) RequestWithAuthentication(
	_ context.Context, credentialType string, opts credential.RequestOptions,
) ([]byte, error) {
	f.calls = append(f.calls, call{credentialType, opts})
	idx := min(len(f.calls), len(f.responses)) - 1
	if idx < 0 {
		return []byte(okBody), nil
	}
	r := f.responses[idx]
	return []byte(r.body), r.err
}

func (f *fakeClient) request(t *testing.T, i int) domain.TranslateRequest {
	t.Helper()
	require.Greater(t, len(f.calls), i)
	req, ok := f.calls[i].opts.Body.(domain.TranslateRequest)
	require.True(t, ok)
	return req
}

func newExecution(
	client host.AuthenticatedClient, params map[string]any, items ...domain.JSON,
) *host.Execution {
	if len(items) == 0 {
		items = []domain.JSON{{}}
	}
	e := &host.Execution{
		Parameters: params,
		Properties: node.New().Properties(),
		Client:     client,
	}
	for _, it := range items {
		e.Items = append(e.Items, domain.Item{JSON: it})
	}
	return e
}

func newNode(t *testing.T) *node.Node {
	return node.New(
		node.WithBaseURL("https://langbly.test/"),
		node.WithLogger(zaptest.NewLogger(t)),
	)
}

func TestTranslate(t *testing.T) {
	client := &fakeClient{}
	exec := newExecution(client, map[string]any{
		"text":           "Hello world",
		"targetLanguage": " NL ",
		"options": map[string]any{
			"sourceLanguage": " EN ",
			"format":         "html",
			"formality":      "more",
		},
	})

	items, err := newNode(t).Execute(context.Background(), exec)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, domain.JSON{
		"translatedText":         "Hallo wereld",
		"detectedSourceLanguage": "en",
		"targetLanguage":         " NL ",
		"originalText":           "Hello world",
	}, items[0].JSON)
	assert.Equal(t, &domain.PairedItem{Item: 0}, items[0].PairedItem)

	require.Len(t, client.calls, 1)
	c := client.calls[0]
	assert.Equal(t, credential.Name, c.credentialType)
	assert.Equal(t, http.MethodPost, c.opts.Method)
	assert.Equal(t, "https://langbly.test", c.opts.BaseURL)
	assert.Equal(t, "/language/translate/v2", c.opts.URL)
	assert.Equal(t, node.DefaultUserAgent, c.opts.Headers["User-Agent"])
	assert.Equal(t, domain.TranslateRequest{
		Q:         "Hello world",
		Target:    "nl",
		Source:    "en",
		Format:    "html",
		Formality: "more",
	}, client.request(t, 0))
}

func TestTranslateOmitsDefaults(t *testing.T) {
	client := &fakeClient{responses: []response{
		{body: `{"data":{"translations":[{"translatedText":"Bonjour"}]}}`},
	}}
	exec := newExecution(client, map[string]any{
		"text":           "Hello",
		"targetLanguage": "fr",
		"options": map[string]any{
			"format":    "text",
			"formality": "default",
		},
	})

	items, err := newNode(t).Execute(context.Background(), exec)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, domain.TranslateRequest{Q: "Hello", Target: "fr"},
		client.request(t, 0))
	assert.Equal(t, "", items[0].JSON["detectedSourceLanguage"])

	data, err := json.Marshal(client.request(t, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"q":"Hello","target":"fr"}`, string(data))
}

func TestTranslateSourceFallback(t *testing.T) {
	client := &fakeClient{responses: []response{
		{body: `{"data":{"translations":[{"translatedText":"Hallo"}]}}`},
	}}
	exec := newExecution(client, map[string]any{
		"text":           "Hello",
		"targetLanguage": "nl",
		"options":        map[string]any{"sourceLanguage": " EN "},
	})

	items, err := newNode(t).Execute(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, "en", client.request(t, 0).Source)
	assert.Equal(t, " EN ", items[0].JSON["detectedSourceLanguage"])
}

func TestTranslateValidation(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]any
		expected error
	}{
		{"empty text", map[string]any{
			"text": "", "targetLanguage": "nl",
		}, node.ErrEmptyText},
		{"blank text", map[string]any{
			"text": " \n\t", "targetLanguage": "nl",
		}, node.ErrEmptyText},
		{"missing text", map[string]any{
			"targetLanguage": "nl",
		}, node.ErrEmptyText},
		{"empty target", map[string]any{
			"text": "Hello", "targetLanguage": "",
		}, node.ErrMissingTargetLanguage},
		{"blank target", map[string]any{
			"text": "Hello", "targetLanguage": "  ",
		}, node.ErrMissingTargetLanguage},
		{"unknown format", map[string]any{
			"text": "Hello", "targetLanguage": "nl",
			"options": map[string]any{"format": "pdf"},
		}, node.ErrInvalidOption},
		{"unknown formality", map[string]any{
			"text": "Hello", "targetLanguage": "nl",
			"options": map[string]any{"formality": "casual"},
		}, node.ErrInvalidOption},
		{"options not a collection", map[string]any{
			"text": "Hello", "targetLanguage": "nl", "options": "html",
		}, node.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			exec := newExecution(client, tt.params)

			items, err := newNode(t).Execute(context.Background(), exec)
			assert.Nil(t, items)
			assert.ErrorIs(t, err, tt.expected)

			var opErr *node.OperationError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, 0, opErr.ItemIndex)
			assert.Empty(t, client.calls)
		})
	}
}

func TestTranslateNoTranslations(t *testing.T) {
	bodies := map[string]string{
		"empty object":     `{}`,
		"no translations":  `{"data":{}}`,
		"empty list":       `{"data":{"translations":[]}}`,
		"not a list":       `{"data":{"translations":"Hallo"}}`,
		"not an object":    `{"data":{"translations":["Hallo"]}}`,
		"null":             `null`,
		"malformed json":   `{"data":`,
		"empty response":   ``,
		"translations nil": `{"data":{"translations":null}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := &fakeClient{responses: []response{{body: body}}}
			exec := newExecution(client, map[string]any{
				"text": "Hello", "targetLanguage": "nl",
			})

			_, err := newNode(t).Execute(context.Background(), exec)
			assert.ErrorIs(t, err, node.ErrNoTranslations)
			assert.Len(t, client.calls, 1)
		})
	}
}

func TestTranslateAPIError(t *testing.T) {
	client := &fakeClient{responses: []response{
		{err: &host.APIError{StatusCode: 401, Message: "Invalid API key"}},
	}}
	exec := newExecution(client, map[string]any{
		"text": "Hello", "targetLanguage": "nl",
	})

	_, err := newNode(t).Execute(context.Background(), exec)

	var apiErr *host.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestContinueOnFail(t *testing.T) {
	client := &fakeClient{responses: []response{
		{body: okBody},
		{err: &host.APIError{StatusCode: 500, Message: "boom"}},
		{body: okBody},
	}}
	exec := newExecution(client, map[string]any{
		"text":           "={{ $json.text }}",
		"targetLanguage": "nl",
	},
		domain.JSON{"text": "one"},
		domain.JSON{"text": ""},
		domain.JSON{"text": "three"},
		domain.JSON{"text": "four"},
	)
	exec.Continue = true

	items, err := newNode(t).Execute(context.Background(), exec)
	require.NoError(t, err)
	require.Len(t, items, 4)

	for i, it := range items {
		assert.Equal(t, i, it.PairedItem.Item)
	}
	assert.Equal(t, "Hallo wereld", items[0].JSON["translatedText"])
	assert.Equal(t, domain.JSON{"error": node.ErrEmptyText.Error()},
		items[1].JSON)
	assert.Equal(t,
		domain.JSON{"error": "request failed with status 500: boom"},
		items[2].JSON)
	assert.Equal(t, "four", items[3].JSON["originalText"])

	require.Len(t, client.calls, 3)
	assert.Equal(t, "one", client.request(t, 0).Q)
	assert.Equal(t, "three", client.request(t, 1).Q)
	assert.Equal(t, "four", client.request(t, 2).Q)
}

func TestAbortOnFirstFailure(t *testing.T) {
	client := &fakeClient{}
	exec := newExecution(client, map[string]any{
		"text":           "={{ $json.text }}",
		"targetLanguage": "nl",
	},
		domain.JSON{"text": "one"},
		domain.JSON{"text": " "},
		domain.JSON{"text": "three"},
	)

	items, err := newNode(t).Execute(context.Background(), exec)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, node.ErrEmptyText)
	assert.EqualError(t, err, "item 1: text to translate cannot be empty")

	var opErr *node.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, 1, opErr.ItemIndex)
	assert.Len(t, client.calls, 1)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		detected   string
		language   string
		confidence string
	}{
		{"detected", "fr", "fr", node.ConfidenceHigh},
		{"region code kept", "zh-CN", "zh-CN", node.ConfidenceHigh},
		{"not detected", "", "unknown", node.ConfidenceNone},
		{"reported unknown", "unknown", "unknown", node.ConfidenceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(map[string]any{
				"data": map[string]any{
					"translations": []map[string]string{{
						"translatedText":         "whatever",
						"detectedSourceLanguage": tt.detected,
					}},
				},
			})
			require.NoError(t, err)

			client := &fakeClient{responses: []response{{body: string(body)}}}
			text := strings.Repeat("é", 600)
			exec := newExecution(client, map[string]any{
				"operation": "detect",
				"text":      text,
			})

			items, err := newNode(t).Execute(context.Background(), exec)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, domain.JSON{
				"detectedLanguage": tt.language,
				"originalText":     text,
				"confidence":       tt.confidence,
			}, items[0].JSON)

			req := client.request(t, 0)
			assert.Equal(t, "en", req.Target)
			assert.Equal(t, strings.Repeat("é", 500), req.Q)
			assert.Empty(t, req.Source)
		})
	}
}

func TestDetectEmptyText(t *testing.T) {
	client := &fakeClient{}
	exec := newExecution(client, map[string]any{
		"operation": "detect",
		"text":      "",
	})

	_, err := newNode(t).Execute(context.Background(), exec)
	assert.ErrorIs(t, err, node.ErrEmptyText)
	assert.Empty(t, client.calls)
}

func TestUnsupportedOperation(t *testing.T) {
	exec := newExecution(&fakeClient{}, map[string]any{
		"operation": "summarize",
		"text":      "Hello",
	})

	_, err := newNode(t).Execute(context.Background(), exec)
	assert.ErrorIs(t, err, router.ErrUnsupportedOperation)
}

func TestExecuteCancelled(t *testing.T) {
	client := &fakeClient{}
	exec := newExecution(client, map[string]any{
		"text": "Hello", "targetLanguage": "nl",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newNode(t).Execute(ctx, exec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.calls)
}

func TestExecuteNoClient(t *testing.T) {
	exec := newExecution(nil, map[string]any{
		"text": "Hello", "targetLanguage": "nl",
	})

	_, err := newNode(t).Execute(context.Background(), exec)
	assert.ErrorIs(t, err, node.ErrNoHTTPClient)
}

func TestExecuteEmptyBatch(t *testing.T) {
	exec := &host.Execution{Client: &fakeClient{}}

	items, err := newNode(t).Execute(context.Background(), exec)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExecuteAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/language/translate/v2", r.URL.Path)
			assert.Equal(t, "Bearer langbly_key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req domain.TranslateRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "de", req.Target)

			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"translations": []domain.Translation{{
						TranslatedText:         strings.ToUpper(req.Q),
						DetectedSourceLanguage: "en",
					}},
				},
			})
		},
	))
	defer server.Close()

	helper := host.NewHTTPHelper(server.Client(), "", zaptest.NewLogger(t)).
		Register(credential.Name, credential.Credential{APIKey: "langbly_key"})
	exec := newExecution(helper, map[string]any{
		"text":           "={{ $json.title }}",
		"targetLanguage": "DE",
	},
		domain.JSON{"title": "first"},
		domain.JSON{"title": "second"},
	)

	n := node.New(node.WithBaseURL(server.URL))
	items, err := n.Execute(context.Background(), exec)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "FIRST", items[0].JSON["translatedText"])
	assert.Equal(t, "SECOND", items[1].JSON["translatedText"])
	assert.Equal(t, 1, items[1].PairedItem.Item)
}

func TestSupportedOperations(t *testing.T) {
	n := newNode(t)

	assert.Equal(t, []string{node.OperationDetect, node.OperationTranslate},
		n.Operations(node.ResourceTranslation))
	assert.True(t, n.Supports(node.ResourceTranslation, node.OperationDetect))
	assert.False(t, n.Supports(node.ResourceTranslation, "summarize"))
	assert.False(t, n.Supports("glossary", node.OperationTranslate))
}
