package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	PortKey          = "PORT"
	StaticBaseURLKey = "STATIC_BASE_URL"
	APIBaseURLKey    = "API_BASE_URL"

	EnableCacheKey = "ENABLE_CACHE"
	CacheTTLKey    = "CACHE_TTL"

	CodeResolverKey      = "CODE_RESOLVER"
	CodesConfigPathKey   = "CODES_CONFIG_PATH"
	CodeLookupURLKey     = "CODE_LOOKUP_URL"
	CodeLookupTimeoutKey = "CODE_LOOKUP_TIMEOUT"
	CodeLookupFieldKey   = "CODE_LOOKUP_FIELD"

	StylesheetMaxAgeKey = "STYLESHEET_MAX_AGE"
	CORSOriginsKey      = "CORS_ORIGINS"

	InvalidationHookKey        = "INVALIDATION_HOOK"
	InvalidationHookURLKey     = "INVALIDATION_HOOK_URL"
	InvalidationHookTimeoutKey = "INVALIDATION_HOOK_TIMEOUT"

	InvalidationTopicKey = "INVALIDATION_TOPIC_ARN"
	SNSEndpointKey       = "SNS_ENDPOINT"

	LogLevelKey  = "LOG_LEVEL"
	LogFormatKey = "LOG_FORMAT"

	CodeResolverStatic = "static"
	CodeResolverRemote = "remote"
)

// Settings is the process configuration read once at startup and passed explicitly to every
// component that needs it.
type Settings struct {
	Port int

	// StaticBaseURL prefixes every asset URL: {StaticBaseURL}/brands/{tenant}/...
	StaticBaseURL string
	// APIBaseURL prefixes the generated stylesheet endpoint URL.
	APIBaseURL string

	EnableCache bool
	// CacheTTL bounds how long an entry may live; 0 means entries only leave on invalidation.
	CacheTTL time.Duration

	CodeResolver      string
	CodesConfigPath   string
	CodeLookupURL     string
	CodeLookupTimeout time.Duration
	CodeLookupField   string

	StylesheetMaxAge time.Duration
	CORSOrigins      []string

	// InvalidationHook makes out-of-process writers (CLI, queue consumer) call the server's
	// invalidation endpoints under InvalidationHookURL after each write.
	InvalidationHook        bool
	InvalidationHookURL     string
	InvalidationHookTimeout time.Duration

	InvalidationTopicARN string
	SNSEndpoint          string

	LogLevel  string
	LogFormat string
}

// FromEnv reads Settings from the environment, applying defaults for anything unset.
func FromEnv() (Settings, error) {
	s := Settings{
		StaticBaseURL:        strings.TrimRight(Getenv(StaticBaseURLKey, "http://localhost:8000/static"), "/"),
		EnableCache:          ParseBoolean(Getenv(EnableCacheKey, "true")),
		CodeResolver:         strings.ToLower(Getenv(CodeResolverKey, CodeResolverStatic)),
		CodesConfigPath:      Getenv(CodesConfigPathKey, "./config/codes.yml"),
		CodeLookupURL:        strings.TrimRight(os.Getenv(CodeLookupURLKey), "/"),
		CodeLookupField:      Getenv(CodeLookupFieldKey, "customerName"),
		CORSOrigins:          splitList(Getenv(CORSOriginsKey, "*")),
		InvalidationHook:     ParseBoolean(Getenv(InvalidationHookKey, "true")),
		InvalidationTopicARN: os.Getenv(InvalidationTopicKey),
		SNSEndpoint:          os.Getenv(SNSEndpointKey),
		LogLevel:             Getenv(LogLevelKey, "info"),
		LogFormat:            Getenv(LogFormatKey, "text"),
	}
	s.APIBaseURL = strings.TrimRight(Getenv(APIBaseURLKey, strings.TrimSuffix(s.StaticBaseURL, "/static")), "/")
	s.InvalidationHookURL = strings.TrimRight(Getenv(InvalidationHookURLKey, s.APIBaseURL), "/")

	var err error
	if s.Port, err = strconv.Atoi(Getenv(PortKey, "8000")); err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", PortKey, err)
	}
	if s.CacheTTL, err = seconds(CacheTTLKey, "3600"); err != nil {
		return Settings{}, err
	}
	if s.StylesheetMaxAge, err = seconds(StylesheetMaxAgeKey, "3600"); err != nil {
		return Settings{}, err
	}
	if s.InvalidationHookTimeout, err = time.ParseDuration(Getenv(InvalidationHookTimeoutKey, "5s")); err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", InvalidationHookTimeoutKey, err)
	}
	if s.CodeLookupTimeout, err = time.ParseDuration(Getenv(CodeLookupTimeoutKey, "10s")); err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", CodeLookupTimeoutKey, err)
	}
	switch s.CodeResolver {
	case CodeResolverStatic:
	case CodeResolverRemote:
		if s.CodeLookupURL == "" {
			return Settings{}, fmt.Errorf("%s=%s requires %s", CodeResolverKey, CodeResolverRemote, CodeLookupURLKey)
		}
	default:
		return Settings{}, fmt.Errorf("invalid %s %q", CodeResolverKey, s.CodeResolver)
	}
	return s, nil
}

// Getenv retrieves the value of the environment variable named by the key, or def when unset.
func Getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func ParseBoolean(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func seconds(key, def string) (time.Duration, error) {
	n, err := strconv.Atoi(Getenv(key, def))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative number of seconds", key)
	}
	return time.Duration(n) * time.Second, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
