package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	oauthConsumerKey     = "oauth_consumer_key"
	oauthNonce           = "oauth_nonce"
	oauthSignature       = "oauth_signature"
	oauthSignatureMethod = "oauth_signature_method"
	oauthTimestamp       = "oauth_timestamp"
	oauthToken           = "oauth_token"
	oauthVersion         = "oauth_version"

	signatureMethod = "HMAC-SHA1"
	oauthVersion10  = "1.0"
	headerPrefix    = "OAuth "
)

var reservedOAuthKeys = map[string]bool{
	oauthConsumerKey:     true,
	oauthNonce:           true,
	oauthSignature:       true,
	oauthSignatureMethod: true,
	oauthTimestamp:       true,
	oauthToken:           true,
	oauthVersion:         true,
}

// HmacSigner implements OAuth 1.0a request signing with HMAC-SHA1.
type HmacSigner struct {
	cred  Credential
	nonce func() (string, error)
	now   func() time.Time
}

type SignerOption func(*HmacSigner)

// WithNonceFunc replaces the crypto/rand nonce source. Tests use it to pin
// the nonce to a known value.
func WithNonceFunc(fn func() (string, error)) SignerOption {
	return func(s *HmacSigner) { s.nonce = fn }
}

func WithClock(fn func() time.Time) SignerOption {
	return func(s *HmacSigner) { s.now = fn }
}

// NewHmacSigner rejects a credential with any empty part: an empty secret
// would silently produce a signature the upstream can never verify.
func NewHmacSigner(cred Credential, opts ...SignerOption) (*HmacSigner, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	s := &HmacSigner{
		cred:  cred,
		nonce: GenerateNonce,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HmacSigner) Mode() string {
	return ModeOAuth1
}

func (s *HmacSigner) Authorize(req *http.Request, params map[string]string) error {
	header, err := s.Sign(req.Method, req.URL.String(), params)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", header)
	return nil
}

// Sign returns the Authorization header value for one request. params are
// the request's query or form parameters; any query string on rawURL is
// folded into them before signing.
func (s *HmacSigner) Sign(method, rawURL string, params map[string]string) (string, error) {
	baseURL, requestParams, err := normalizeRequest(rawURL, params)
	if err != nil {
		return "", err
	}
	for k := range requestParams {
		if reservedOAuthKeys[k] {
			return "", fmt.Errorf("%w: %q", ErrParamCollision, k)
		}
	}

	nonce, err := s.nonce()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	oauthParams := map[string]string{
		oauthConsumerKey:     s.cred.ConsumerKey,
		oauthNonce:           nonce,
		oauthSignatureMethod: signatureMethod,
		oauthTimestamp:       strconv.FormatInt(s.now().UTC().Unix(), 10),
		oauthToken:           s.cred.AccessToken,
		oauthVersion:         oauthVersion10,
	}

	all := make(map[string]string, len(oauthParams)+len(requestParams))
	for k, v := range oauthParams {
		all[k] = v
	}
	for k, v := range requestParams {
		all[k] = v
	}

	base := SignatureBaseString(method, baseURL, ParameterString(all))
	oauthParams[oauthSignature] = hmacSHA1(SigningKey(s.cred.ConsumerSecret, s.cred.AccessTokenSecret), base)

	return renderHeader(oauthParams), nil
}

// ParameterString percent-encodes every key and value, sorts the pairs by
// encoded key in byte order and joins them as k=v with '&'.
func ParameterString(params map[string]string) string {
	type pair struct{ k, v string }
	pairs := make([]pair, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, pair{PercentEncode(k), PercentEncode(v)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}
		return pairs[i].v < pairs[j].v
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.k)
		b.WriteByte('=')
		b.WriteString(p.v)
	}
	return b.String()
}

func SignatureBaseString(method, baseURL, paramString string) string {
	return strings.ToUpper(method) + "&" + PercentEncode(baseURL) + "&" + PercentEncode(paramString)
}

func SigningKey(consumerSecret, tokenSecret string) string {
	return PercentEncode(consumerSecret) + "&" + PercentEncode(tokenSecret)
}

func hmacSHA1(key, message string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func renderHeader(oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + `="` + PercentEncode(oauthParams[k]) + `"`
	}
	return headerPrefix + strings.Join(parts, ", ")
}

// normalizeRequest splits rawURL into the base string URI of RFC 5849
// section 3.4.1.2 (lowercase scheme and host, default port dropped, no
// query or fragment) and the merged request parameters. Explicit params
// win over query values with the same key.
func normalizeRequest(rawURL string, params map[string]string) (string, map[string]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("parse request url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", nil, fmt.Errorf("request url %q is not absolute", rawURL)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
		host += ":" + port
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	merged := make(map[string]string, len(params))
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			merged[k] = vs[len(vs)-1]
		}
	}
	for k, v := range params {
		merged[k] = v
	}

	return scheme + "://" + host + path, merged, nil
}
