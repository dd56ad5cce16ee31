package auth

import (
	"fmt"
	"log/slog"
)

const redacted = "[REDACTED]"

// Credential is the OAuth 1.0a key material. It is a value type; nothing in
// this package mutates it after construction.
type Credential struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

func NewCredential(consumerKey, consumerSecret, accessToken, accessTokenSecret string) Credential {
	return Credential{
		ConsumerKey:       consumerKey,
		ConsumerSecret:    consumerSecret,
		AccessToken:       accessToken,
		AccessTokenSecret: accessTokenSecret,
	}
}

func (c Credential) Validate() error {
	parts := []struct {
		name  string
		value string
	}{
		{"consumer key", c.ConsumerKey},
		{"consumer secret", c.ConsumerSecret},
		{"access token", c.AccessToken},
		{"access token secret", c.AccessTokenSecret},
	}
	for _, p := range parts {
		if p.value == "" {
			return fmt.Errorf("%w: %s", ErrEmptyCredential, p.name)
		}
	}
	return nil
}

func (c Credential) String() string {
	return redacted
}

func (c Credential) GoString() string {
	return redacted
}

func (c Credential) LogValue() slog.Value {
	return slog.StringValue(redacted)
}
