// Package auth signs upstream requests.
//
// Two strategies implement Authenticator: HmacSigner produces a per-request
// OAuth 1.0a HMAC-SHA1 Authorization header from a four-part Credential, and
// BearerToken attaches a fixed app-only token. Both are safe for concurrent
// use; neither keeps mutable state.
package auth

import (
	"errors"
	"net/http"
)

const (
	ModeOAuth1 = "oauth1"
	ModeBearer = "bearer"
)

var (
	ErrEmptyCredential = errors.New("auth: credential part is empty")
	ErrParamCollision  = errors.New("auth: request parameter collides with oauth parameter")
)

// Authenticator attaches credentials to an outgoing request. params are the
// query or form parameters that travel with the request; strategies that do
// not sign the request ignore them.
type Authenticator interface {
	Authorize(req *http.Request, params map[string]string) error
	Mode() string
}
