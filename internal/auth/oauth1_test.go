package auth

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Worked example from the X developer documentation, "Creating a signature".
var docCredential = Credential{
	ConsumerKey:       "xvz1evFS4wEEPTGEFPHBog",
	ConsumerSecret:    "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
	AccessToken:       "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
	AccessTokenSecret: "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
}

const (
	docNonce     = "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg"
	docTimestamp = 1318622958
	docURL       = "https://api.twitter.com/1.1/statuses/update.json"
)

var docParams = map[string]string{
	"include_entities": "true",
	"status":           "Hello Ladies + Gentlemen, a signed OAuth request!",
}

func fixedSigner(t *testing.T, cred Credential, nonce string, ts int64) *HmacSigner {
	t.Helper()
	s, err := NewHmacSigner(cred,
		WithNonceFunc(func() (string, error) { return nonce, nil }),
		WithClock(func() time.Time { return time.Unix(ts, 0) }),
	)
	require.NoError(t, err)
	return s
}

var headerPair = regexp.MustCompile(`^(oauth_[a-z_]+)="([^"]*)"$`)

func parseHeader(t *testing.T, header string) map[string]string {
	t.Helper()
	require.True(t, strings.HasPrefix(header, "OAuth "), "header %q", header)

	out := map[string]string{}
	for _, part := range strings.Split(strings.TrimPrefix(header, "OAuth "), ", ") {
		m := headerPair.FindStringSubmatch(part)
		require.NotNil(t, m, "malformed header part %q", part)
		out[m[1]] = m[2]
	}
	return out
}

func TestSignMatchesDocumentedExample(t *testing.T) {
	s := fixedSigner(t, docCredential, docNonce, docTimestamp)

	header, err := s.Sign("post", docURL, docParams)
	require.NoError(t, err)

	want := `OAuth oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog", ` +
		`oauth_nonce="kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg", ` +
		`oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D", ` +
		`oauth_signature_method="HMAC-SHA1", ` +
		`oauth_timestamp="1318622958", ` +
		`oauth_token="370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb", ` +
		`oauth_version="1.0"`
	assert.Equal(t, want, header)
}

func TestSignatureBaseStringDocumentedExample(t *testing.T) {
	all := map[string]string{
		"oauth_consumer_key":     docCredential.ConsumerKey,
		"oauth_nonce":            docNonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        "1318622958",
		"oauth_token":            docCredential.AccessToken,
		"oauth_version":          "1.0",
	}
	for k, v := range docParams {
		all[k] = v
	}

	want := "POST&https%3A%2F%2Fapi.twitter.com%2F1.1%2Fstatuses%2Fupdate.json&" +
		"include_entities%3Dtrue%26oauth_consumer_key%3Dxvz1evFS4wEEPTGEFPHBog%26" +
		"oauth_nonce%3DkYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg%26" +
		"oauth_signature_method%3DHMAC-SHA1%26oauth_timestamp%3D1318622958%26" +
		"oauth_token%3D370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb%26" +
		"oauth_version%3D1.0%26status%3DHello%2520Ladies%2520%252B%2520Gentlemen%252C" +
		"%2520a%2520signed%2520OAuth%2520request%2521"
	assert.Equal(t, want, SignatureBaseString("POST", docURL, ParameterString(all)))

	assert.Equal(t,
		"kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw&LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
		SigningKey(docCredential.ConsumerSecret, docCredential.AccessTokenSecret))
}

func TestParameterStringIgnoresInsertionOrder(t *testing.T) {
	a := map[string]string{}
	a["b"] = "2"
	a["a"] = "1"
	b := map[string]string{}
	b["a"] = "1"
	b["b"] = "2"

	assert.Equal(t, "a=1&b=2", ParameterString(a))
	assert.Equal(t, ParameterString(a), ParameterString(b))
}

func TestParameterStringSortsByteWise(t *testing.T) {
	params := map[string]string{"a": "1", "B": "2", "a_b": "3", "a.b": "4"}
	assert.Equal(t, "B=2&a=1&a.b=4&a_b=3", ParameterString(params))
}

func TestSignIsDeterministicWithFixedInputs(t *testing.T) {
	s := fixedSigner(t, docCredential, docNonce, docTimestamp)

	first, err := s.Sign("GET", "https://api.twitter.com/2/tweets/search/recent", map[string]string{"query": "golang"})
	require.NoError(t, err)
	second, err := s.Sign("GET", "https://api.twitter.com/2/tweets/search/recent", map[string]string{"query": "golang"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSignChangesWithAnyInput(t *testing.T) {
	const (
		method = "GET"
		target = "https://api.twitter.com/2/users/by/username/jack"
	)
	params := map[string]string{"user.fields": "id,name"}

	baseline := parseHeader(t, mustSign(t, fixedSigner(t, docCredential, docNonce, docTimestamp), method, target, params))["oauth_signature"]

	altered := func(mut func(c *Credential)) Credential {
		c := docCredential
		mut(&c)
		return c
	}

	cases := map[string]struct {
		cred   Credential
		method string
		url    string
		params map[string]string
	}{
		"method":          {docCredential, "POST", target, params},
		"url":             {docCredential, method, target + "x", params},
		"param key":       {docCredential, method, target, map[string]string{"user.field": "id,name"}},
		"param value":     {docCredential, method, target, map[string]string{"user.fields": "id,namf"}},
		"extra param":     {docCredential, method, target, map[string]string{"user.fields": "id,name", "a": ""}},
		"consumer secret": {altered(func(c *Credential) { c.ConsumerSecret += "x" }), method, target, params},
		"token secret":    {altered(func(c *Credential) { c.AccessTokenSecret += "x" }), method, target, params},
		"consumer key":    {altered(func(c *Credential) { c.ConsumerKey += "x" }), method, target, params},
		"token":           {altered(func(c *Credential) { c.AccessToken += "x" }), method, target, params},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			header := mustSign(t, fixedSigner(t, tc.cred, docNonce, docTimestamp), tc.method, tc.url, tc.params)
			assert.NotEqual(t, baseline, parseHeader(t, header)["oauth_signature"])
		})
	}

	t.Run("nonce", func(t *testing.T) {
		header := mustSign(t, fixedSigner(t, docCredential, docNonce+"x", docTimestamp), method, target, params)
		assert.NotEqual(t, baseline, parseHeader(t, header)["oauth_signature"])
	})
	t.Run("timestamp", func(t *testing.T) {
		header := mustSign(t, fixedSigner(t, docCredential, docNonce, docTimestamp+1), method, target, params)
		assert.NotEqual(t, baseline, parseHeader(t, header)["oauth_signature"])
	})
}

func mustSign(t *testing.T, s *HmacSigner, method, target string, params map[string]string) string {
	t.Helper()
	header, err := s.Sign(method, target, params)
	require.NoError(t, err)
	return header
}

func TestHeaderShape(t *testing.T) {
	s, err := NewHmacSigner(docCredential)
	require.NoError(t, err)

	header := mustSign(t, s, "GET", "https://api.twitter.com/2/tweets/20", nil)
	fields := parseHeader(t, header)

	assert.Len(t, fields, 7)
	for _, k := range []string{
		"oauth_consumer_key", "oauth_nonce", "oauth_signature", "oauth_signature_method",
		"oauth_timestamp", "oauth_token", "oauth_version",
	} {
		assert.Contains(t, fields, k)
	}
	assert.Equal(t, "HMAC-SHA1", fields["oauth_signature_method"])
	assert.Equal(t, "1.0", fields["oauth_version"])
	assert.Len(t, fields["oauth_nonce"], 32)
	assert.Regexp(t, `^[1-9][0-9]*$`, fields["oauth_timestamp"])
}

func TestSignFoldsQueryIntoParameters(t *testing.T) {
	s := fixedSigner(t, docCredential, docNonce, docTimestamp)

	withQuery := mustSign(t, s, "GET", "https://API.twitter.com:443/2/tweets?ids=1#frag", nil)
	withParams := mustSign(t, s, "GET", "https://api.twitter.com/2/tweets", map[string]string{"ids": "1"})

	assert.Equal(t, withParams, withQuery)
}

func TestSignRejectsOAuthCollision(t *testing.T) {
	s := fixedSigner(t, docCredential, docNonce, docTimestamp)

	_, err := s.Sign("GET", "https://api.twitter.com/2/tweets", map[string]string{"oauth_token": "evil"})
	assert.ErrorIs(t, err, ErrParamCollision)

	_, err = s.Sign("GET", "https://api.twitter.com/2/tweets?oauth_nonce=x", nil)
	assert.ErrorIs(t, err, ErrParamCollision)
}

func TestSignRejectsRelativeURL(t *testing.T) {
	s := fixedSigner(t, docCredential, docNonce, docTimestamp)
	_, err := s.Sign("GET", "/2/tweets", nil)
	assert.Error(t, err)
}

func TestNewHmacSignerRejectsEmptyParts(t *testing.T) {
	for _, mut := range []func(c *Credential){
		func(c *Credential) { c.ConsumerKey = "" },
		func(c *Credential) { c.ConsumerSecret = "" },
		func(c *Credential) { c.AccessToken = "" },
		func(c *Credential) { c.AccessTokenSecret = "" },
	} {
		c := docCredential
		mut(&c)
		_, err := NewHmacSigner(c)
		assert.ErrorIs(t, err, ErrEmptyCredential)
	}
}

func TestSignPropagatesNonceFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	s, err := NewHmacSigner(docCredential, WithNonceFunc(func() (string, error) { return "", boom }))
	require.NoError(t, err)

	_, err = s.Sign("GET", "https://api.twitter.com/2/tweets", nil)
	assert.ErrorIs(t, err, boom)
}

func TestAuthorizeSetsHeader(t *testing.T) {
	s := fixedSigner(t, docCredential, docNonce, docTimestamp)

	req, err := http.NewRequest(http.MethodPost, docURL, nil)
	require.NoError(t, err)
	require.NoError(t, s.Authorize(req, docParams))

	assert.Contains(t, req.Header.Get("Authorization"), `oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D"`)
	assert.Equal(t, ModeOAuth1, s.Mode())
}

func TestCredentialIsRedacted(t *testing.T) {
	assert.Equal(t, "[REDACTED]", docCredential.String())
	assert.NotContains(t, docCredential.GoString(), docCredential.ConsumerSecret)
	assert.Equal(t, "[REDACTED]", docCredential.LogValue().String())
}
