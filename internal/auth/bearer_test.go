package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerTokenAuthorize(t *testing.T) {
	b, err := NewBearerToken("AAAA%2Ftoken")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://api.twitter.com/2/tweets/20", nil)
	require.NoError(t, err)
	require.NoError(t, b.Authorize(req, map[string]string{"ignored": "yes"}))

	assert.Equal(t, "Bearer AAAA%2Ftoken", req.Header.Get("Authorization"))
	assert.Equal(t, ModeBearer, b.Mode())
	assert.Equal(t, "[REDACTED]", b.String())
}

func TestBearerTokenRejectsEmpty(t *testing.T) {
	_, err := NewBearerToken("")
	assert.ErrorIs(t, err, ErrEmptyCredential)
}

func TestStrategiesSatisfyAuthenticator(t *testing.T) {
	var _ Authenticator = (*HmacSigner)(nil)
	var _ Authenticator = (*BearerToken)(nil)
}
