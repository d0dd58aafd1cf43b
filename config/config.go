package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Token string `json:"token" yaml:"token"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth      *AuthConfig      `json:"auth" yaml:"auth"`
	Firebase  *FirebaseConfig  `json:"firebase" yaml:"firebase"`
	Catalog   *CatalogConfig   `json:"catalog" yaml:"catalog"`
	Images    *ImagesConfig    `json:"images" yaml:"images"`
	RateLimit *RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// AuthConfig defines authentication-related configuration.
type AuthConfig struct {
	// TokenMaxAge bounds bearer token lifetime; verification is exclusive
	// at the boundary.
	TokenMaxAge time.Duration `json:"tokenMaxAge" yaml:"tokenMaxAge"`

	// ResetCodeTTL bounds the password-reset credential lifetime.
	ResetCodeTTL time.Duration `json:"resetCodeTtl" yaml:"resetCodeTtl"`

	// BootstrapPhone, when set, marks the phone number eligible for the
	// one-time admin promotion.
	BootstrapPhone string `json:"bootstrapPhone" yaml:"bootstrapPhone"`

	// SetupKey guards the out-of-band POST /admin/bootstrap endpoint.
	SetupKey string `json:"setupKey" yaml:"setupKey"`

	// AdminEmails and StaffEmails are allow-lists consulted by the
	// federation path. Entries are exact addresses or "@domain" suffixes.
	AdminEmails []string `json:"adminEmails" yaml:"adminEmails"`
	StaffEmails []string `json:"staffEmails" yaml:"staffEmails"`
}

// FirebaseConfig defines the external identity provider project.
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// CatalogConfig defines the menu resolution chain.
type CatalogConfig struct {
	// UpstreamURL, when set, makes the upstream the only source: a failed
	// fetch surfaces as an error instead of falling back to stale local data.
	UpstreamURL string        `json:"upstreamUrl" yaml:"upstreamUrl"`
	APIKey      string        `json:"apiKey" yaml:"apiKey"`
	LocalPath   string        `json:"localPath" yaml:"localPath"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// ImagesConfig defines the image resolution chain.
type ImagesConfig struct {
	// StorageDir (persistent uploads) is searched before BundledDir.
	StorageDir      string        `json:"storageDir" yaml:"storageDir"`
	BundledDir      string        `json:"bundledDir" yaml:"bundledDir"`
	UpstreamBaseURL string        `json:"upstreamBaseUrl" yaml:"upstreamBaseUrl"`
	APIKey          string        `json:"apiKey" yaml:"apiKey"`
	Timeout         time.Duration `json:"timeout" yaml:"timeout"`
}

// RateLimitConfig defines the default credential-endpoint limits.
type RateLimitConfig struct {
	Limit  int           `json:"limit" yaml:"limit"`
	Window time.Duration `json:"window" yaml:"window"`
}

// IsProduction reports whether the process runs with a production profile.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env.Env, "production")
}

// LoadWithEnv loads .yaml files through koanf with environment overrides.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to a path and align each segment with
			// existing YAML keys, e.g. CATALOG_UPSTREAMURL -> catalog.upstreamUrl.
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides.
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.TokenMaxAge <= 0 {
		cfg.Auth.TokenMaxAge = 7 * 24 * time.Hour
	}
	if cfg.Auth.ResetCodeTTL <= 0 {
		cfg.Auth.ResetCodeTTL = 15 * time.Minute
	}
	if cfg.Firebase == nil {
		cfg.Firebase = &FirebaseConfig{}
	}
	if cfg.Catalog == nil {
		cfg.Catalog = &CatalogConfig{}
	}
	if cfg.Catalog.Timeout <= 0 {
		cfg.Catalog.Timeout = 6 * time.Second
	}
	if cfg.Images == nil {
		cfg.Images = &ImagesConfig{}
	}
	if cfg.Images.Timeout <= 0 {
		cfg.Images.Timeout = 6 * time.Second
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = &RateLimitConfig{}
	}
	if cfg.RateLimit.Limit <= 0 {
		cfg.RateLimit.Limit = 10
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
