// Package config assembles the server configuration from defaults, an
// optional YAML file, a .env file and the process environment, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alucardeht/x-mcp/internal/auth"
)

const (
	AuthModeAuto = "auto"

	DefaultBaseURL        = "https://api.twitter.com/2"
	DefaultTimeout        = 30 * time.Second
	DefaultUserCacheSize  = 256
	DefaultUserCacheTTL   = 10 * time.Minute
	DefaultMaxTweetLength = 280
	DefaultEnvFile        = ".env"
)

const (
	EnvConsumerKey       = "X_CONSUMER_KEY"
	EnvConsumerSecret    = "X_CONSUMER_SECRET"
	EnvAccessToken       = "X_ACCESS_TOKEN"
	EnvAccessTokenSecret = "X_ACCESS_TOKEN_SECRET"
	EnvBearerToken       = "X_BEARER_TOKEN"
	EnvAuthMode          = "X_AUTH_MODE"
	EnvBaseURL           = "X_API_BASE_URL"
	EnvTimeout           = "X_HTTP_TIMEOUT"
	EnvLogLevel          = "X_MCP_LOG_LEVEL"
	EnvLogFormat         = "X_MCP_LOG_FORMAT"
	EnvTools             = "X_MCP_TOOLS"
	EnvUserCacheSize     = "X_MCP_USER_CACHE_SIZE"
	EnvUserCacheTTL      = "X_MCP_USER_CACHE_TTL"
	EnvMaxTweetLength    = "X_MCP_MAX_TWEET_LENGTH"
	EnvHTTPToken         = "X_MCP_HTTP_TOKEN"
)

var ErrMissingCredentials = errors.New("missing credentials")

type Config struct {
	Auth    AuthConfig    `yaml:"auth"`
	API     APIConfig     `yaml:"api"`
	Logging LoggingConfig `yaml:"logging"`
	Tools   ToolsConfig   `yaml:"tools"`
	Server  ServerConfig  `yaml:"server"`
}

type AuthConfig struct {
	Mode              string `yaml:"mode"`
	ConsumerKey       string `yaml:"consumer_key"`
	ConsumerSecret    string `yaml:"consumer_secret"`
	AccessToken       string `yaml:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret"`
	BearerToken       string `yaml:"bearer_token"`
}

type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ToolsConfig struct {
	// Enabled holds glob patterns; empty enables every tool.
	Enabled        []string        `yaml:"enabled"`
	UserCache      UserCacheConfig `yaml:"user_cache"`
	MaxTweetLength int             `yaml:"max_tweet_length"`
}

type UserCacheConfig struct {
	Size   int           `yaml:"size"`
	TTL    time.Duration `yaml:"-"`
	TTLRaw string        `yaml:"ttl"`
}

type ServerConfig struct {
	HTTPToken string `yaml:"http_token"`
}

func Default() *Config {
	return &Config{
		Auth: AuthConfig{Mode: AuthModeAuto},
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tools: ToolsConfig{
			UserCache: UserCacheConfig{
				Size: DefaultUserCacheSize,
				TTL:  DefaultUserCacheTTL,
			},
			MaxTweetLength: DefaultMaxTweetLength,
		},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error. Load does not validate credentials; call Validate before
// talking to the upstream.
func Load(path string) (*Config, error) {
	return load(path, DefaultEnvFile, os.LookupEnv)
}

type lookupFunc func(string) (string, bool)

func load(path, envFile string, lookupEnv lookupFunc) (*Config, error) {
	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	lookup := chainLookup(lookupEnv, dotenv)

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path, lookup); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	cfg.Auth.Mode = strings.ToLower(strings.TrimSpace(cfg.Auth.Mode))
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = AuthModeAuto
	}
	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// real environment wins over the .env file
func chainLookup(env lookupFunc, dotenv map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		if v, ok := env(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func (c *Config) loadFile(path string, lookup lookupFunc) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data), lookup)
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if err := c.parseDurations(); err != nil {
		return fmt.Errorf("parsing durations: %w", err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with its value, or with nothing when unset.
func expandEnvVars(s string, lookup lookupFunc) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		v, _ := lookup(name)
		return v
	})
}

func (c *Config) parseDurations() error {
	var err error

	if c.API.TimeoutRaw != "" {
		c.API.Timeout, err = time.ParseDuration(c.API.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing api.timeout %q: %w", c.API.TimeoutRaw, err)
		}
	}

	if c.Tools.UserCache.TTLRaw != "" {
		c.Tools.UserCache.TTL, err = time.ParseDuration(c.Tools.UserCache.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing tools.user_cache.ttl %q: %w", c.Tools.UserCache.TTLRaw, err)
		}
	}

	return nil
}

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		EnvConsumerKey:       &c.Auth.ConsumerKey,
		EnvConsumerSecret:    &c.Auth.ConsumerSecret,
		EnvAccessToken:       &c.Auth.AccessToken,
		EnvAccessTokenSecret: &c.Auth.AccessTokenSecret,
		EnvBearerToken:       &c.Auth.BearerToken,
		EnvAuthMode:          &c.Auth.Mode,
		EnvBaseURL:           &c.API.BaseURL,
		EnvLogLevel:          &c.Logging.Level,
		EnvLogFormat:         &c.Logging.Format,
		EnvHTTPToken:         &c.Server.HTTPToken,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		EnvUserCacheSize:  &c.Tools.UserCache.Size,
		EnvMaxTweetLength: &c.Tools.MaxTweetLength,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		EnvTimeout:      &c.API.Timeout,
		EnvUserCacheTTL: &c.Tools.UserCache.TTL,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
	}

	if v, ok := lookup(EnvTools); ok {
		c.Tools.Enabled = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks everything the server needs before it starts serving and
// reports the first problem found.
func (c *Config) Validate() error {
	if _, err := c.ResolveAuthMode(); err != nil {
		return err
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Tools.UserCache.Size < 0 {
		return fmt.Errorf("tools.user_cache.size must not be negative")
	}
	if c.Tools.MaxTweetLength < 0 {
		return fmt.Errorf("tools.max_tweet_length must not be negative")
	}
	return nil
}

// ResolveAuthMode turns "auto" into a concrete mode: OAuth 1.0a when any
// OAuth secret is configured, bearer when only a bearer token is.
func (c *Config) ResolveAuthMode() (string, error) {
	switch c.Auth.Mode {
	case auth.ModeOAuth1:
		return auth.ModeOAuth1, c.requireOAuth1()
	case auth.ModeBearer:
		if c.Auth.BearerToken == "" {
			return "", fmt.Errorf("%w: %s not found", ErrMissingCredentials, EnvBearerToken)
		}
		return auth.ModeBearer, nil
	case AuthModeAuto, "":
		if c.Auth.BearerToken != "" && !c.anyOAuth1() {
			return auth.ModeBearer, nil
		}
		return auth.ModeOAuth1, c.requireOAuth1()
	default:
		return "", fmt.Errorf("unknown auth mode %q (want %s, %s or %s)", c.Auth.Mode, auth.ModeOAuth1, auth.ModeBearer, AuthModeAuto)
	}
}

func (c *Config) anyOAuth1() bool {
	a := c.Auth
	return a.ConsumerKey != "" || a.ConsumerSecret != "" || a.AccessToken != "" || a.AccessTokenSecret != ""
}

func (c *Config) requireOAuth1() error {
	required := []struct {
		env   string
		value string
	}{
		{EnvConsumerKey, c.Auth.ConsumerKey},
		{EnvConsumerSecret, c.Auth.ConsumerSecret},
		{EnvAccessToken, c.Auth.AccessToken},
		{EnvAccessTokenSecret, c.Auth.AccessTokenSecret},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s not found", ErrMissingCredentials, r.env)
		}
	}
	return nil
}

func (c *Config) Credential() auth.Credential {
	return auth.NewCredential(c.Auth.ConsumerKey, c.Auth.ConsumerSecret, c.Auth.AccessToken, c.Auth.AccessTokenSecret)
}

// Authenticator builds the request authenticator for the resolved mode.
func (c *Config) Authenticator() (auth.Authenticator, error) {
	mode, err := c.ResolveAuthMode()
	if err != nil {
		return nil, err
	}
	if mode == auth.ModeBearer {
		bearer, err := auth.NewBearerToken(c.Auth.BearerToken)
		if err != nil {
			return nil, err
		}
		return bearer, nil
	}

	signer, err := auth.NewHmacSigner(c.Credential())
	if err != nil {
		return nil, err
	}
	return signer, nil
}

// LogValue reports which secrets are set without revealing them.
func (a AuthConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("mode", a.Mode),
		slog.Bool("consumer_key", a.ConsumerKey != ""),
		slog.Bool("consumer_secret", a.ConsumerSecret != ""),
		slog.Bool("access_token", a.AccessToken != ""),
		slog.Bool("access_token_secret", a.AccessTokenSecret != ""),
		slog.Bool("bearer_token", a.BearerToken != ""),
	)
}
