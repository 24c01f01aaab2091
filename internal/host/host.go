// Package host defines the capabilities a workflow host hands to a node when
// it executes: a source of per-item parameters, the input items, the
// continue-on-fail flag and an HTTP helper that authenticates requests with
// a stored credential. It also provides the in-process implementations used
// by this repository's Lambda, HTTP and CLI adapters.
package host

import (
	"context"
	"net/http"

	"github.com/pricofy/langbly-node/internal/credential"
	"github.com/pricofy/langbly-node/internal/domain"
)

type (
	// ParameterSource resolves a node parameter for one input item
	ParameterSource interface {
		NodeParameter(name string, itemIndex int) (any, error)
	}

	// AuthenticatedClient performs HTTP calls authenticated with the named
	// credential type and returns the raw response body
	AuthenticatedClient interface {
		RequestWithAuthentication(
			ctx context.Context, credentialType string,
			opts credential.RequestOptions,
		) ([]byte, error)
	}

	// ExecuteFunctions is everything a node may use while executing
	ExecuteFunctions interface {
		ParameterSource
		InputData() []domain.Item
		ContinueOnFail() bool
		HTTP() AuthenticatedClient
	}

	// Authenticator applies a credential to an outgoing request
	Authenticator interface {
		Authenticate(*http.Request) error
	}
)
