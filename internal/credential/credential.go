// Package credential defines the Langbly API credential: the stored API key,
// the rule that turns it into an Authorization header, and the request a
// host fires to check the key before a workflow uses it.
package credential

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pricofy/langbly-node/internal/schema"
)

const (
	// Name identifies the credential type to the host
	Name = "langblyApi"

	// DefaultBaseURL is the Langbly API origin
	DefaultBaseURL = "https://api.langbly.com"

	// TranslatePath is the translate endpoint, also used for key validation
	TranslatePath = "/language/translate/v2"

	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

// ErrMissingAPIKey is returned when a request is authenticated without a key
var ErrMissingAPIKey = errors.New("langbly API key is not configured")

// Definition describes a credential type to the host.
type Definition struct {
	Name             string            `json:"name" yaml:"name"`
	DisplayName      string            `json:"displayName" yaml:"displayName"`
	DocumentationURL string            `json:"documentationUrl" yaml:"documentationUrl"`
	Properties       schema.Properties `json:"properties" yaml:"properties"`
}

// RequestOptions describe an outgoing HTTP call relative to a base URL.
type RequestOptions struct {
	Method  string            `json:"method" yaml:"method"`
	BaseURL string            `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
}

// Credential holds a decrypted Langbly API key.
type Credential struct {
	APIKey string `json:"apiKey" yaml:"apiKey"`
}

// Type returns the Langbly credential definition.
func Type() Definition {
	return Definition{
		Name:             Name,
		DisplayName:      "Langbly API",
		DocumentationURL: "https://docs.langbly.com",
		Properties: schema.Properties{
			{
				DisplayName: "API Key",
				Name:        "apiKey",
				Type:        schema.TypeString,
				TypeOptions: &schema.PropertyTypeOptions{Password: true},
				Default:     "",
				Required:    true,
				Placeholder: "langbly_...",
				Description: "Your Langbly API key. Find it at https://langbly.com/dashboard/api-keys",
			},
		},
	}
}

// Authenticate applies the bearer token to an outgoing request.
func (c Credential) Authenticate(req *http.Request) error {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return ErrMissingAPIKey
	}
	req.Header.Set(headerAuthorization, bearerPrefix+key)
	return nil
}

// TestRequest returns the canned request used to validate a key. A valid
// key answers it with HTTP 200.
func TestRequest() RequestOptions {
	return RequestOptions{
		Method:  http.MethodPost,
		BaseURL: DefaultBaseURL,
		URL:     TranslatePath,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: map[string]string{
			"q":      "hello",
			"target": "nl",
			"source": "en",
		},
	}
}
