package auth

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// BearerToken authorizes every request with the same app-only token.
type BearerToken struct {
	source oauth2.TokenSource
}

func NewBearerToken(token string) (*BearerToken, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: bearer token", ErrEmptyCredential)
	}
	return &BearerToken{
		source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}),
	}, nil
}

func (b *BearerToken) Mode() string {
	return ModeBearer
}

func (b *BearerToken) Authorize(req *http.Request, _ map[string]string) error {
	tok, err := b.source.Token()
	if err != nil {
		return fmt.Errorf("bearer token: %w", err)
	}
	tok.SetAuthHeader(req)
	return nil
}

func (b *BearerToken) String() string {
	return redacted
}
