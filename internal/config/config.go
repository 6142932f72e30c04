package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/llmstxt/internal/model"
)

// EnvPrefix is the environment prefix for every setting, e.g. INPUT_DOMAIN.
const EnvPrefix = "INPUT"

// Backend names.
const (
	BackendJina      = "jina"
	BackendFirecrawl = "firecrawl"
)

// Pre-flight configuration errors. None of them involve network activity.
var (
	ErrMissingDomain     = eris.New("config: INPUT_DOMAIN is not set")
	ErrInvalidBackend    = eris.New("config: backend must be 'jina' or 'firecrawl'")
	ErrMissingBackendKey = eris.New("config: firecrawl backend selected but INPUT_FIRECRAWL_API_KEY is not set")
)

// Config holds the full application configuration.
type Config struct {
	Domain          string          `yaml:"domain" mapstructure:"domain"`
	OutputFile      string          `yaml:"outputfile" mapstructure:"outputfile"`
	Backend         string          `yaml:"backend" mapstructure:"backend"`
	JinaAPIKey      string          `yaml:"jina_api_key" mapstructure:"jina_api_key"`
	FirecrawlAPIKey string          `yaml:"firecrawl_api_key" mapstructure:"firecrawl_api_key"`
	Jina            JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Firecrawl       FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	HTTP            HTTPConfig      `yaml:"http" mapstructure:"http"`
	Sitemap         SitemapConfig   `yaml:"sitemap" mapstructure:"sitemap"`
	Scrape          ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Store           StoreConfig     `yaml:"store" mapstructure:"store"`
	Metrics         MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Log             LogConfig       `yaml:"log" mapstructure:"log"`
}

// JinaConfig configures the Jina Reader API client.
type JinaConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FirecrawlConfig configures the Firecrawl API client.
type FirecrawlConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// HTTPConfig configures the shared HTTP client.
type HTTPConfig struct {
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxRedirects int    `yaml:"max_redirects" mapstructure:"max_redirects"`
}

// SitemapConfig configures sitemap resolution. MaxDepth 0 disables the
// nesting limit.
type SitemapConfig struct {
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth"`
}

// ScrapeConfig configures page retrieval. MaxConcurrency 0 means one
// goroutine per page.
type ScrapeConfig struct {
	MaxConcurrency int      `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	IncludePaths   []string `yaml:"include_paths" mapstructure:"include_paths"`
	ExcludePaths   []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
	Sort           bool     `yaml:"sort" mapstructure:"sort"`
}

// StoreConfig configures the optional run ledger. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one so AutomaticEnv applies on Unmarshal.
	v.SetDefault("domain", "")
	v.SetDefault("outputfile", "public/llms.txt")
	v.SetDefault("backend", BackendJina)
	v.SetDefault("jina_api_key", "")
	v.SetDefault("firecrawl_api_key", "")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("http.timeout_secs", 60)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("http.max_redirects", 10)
	v.SetDefault("sitemap.max_depth", 10)
	v.SetDefault("scrape.max_concurrency", 0)
	v.SetDefault("scrape.include_paths", []string{})
	v.SetDefault("scrape.exclude_paths", []string{})
	v.SetDefault("scrape.sort", false)
	v.SetDefault("store.path", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a run needs before any network activity and
// normalizes the domain and backend name in place.
func (c *Config) Validate() error {
	c.Domain = model.NormalizeDomain(c.Domain)
	if c.Domain == "" {
		return ErrMissingDomain
	}

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendJina:
	case BackendFirecrawl:
		if strings.TrimSpace(c.FirecrawlAPIKey) == "" {
			return ErrMissingBackendKey
		}
	default:
		return eris.Wrapf(ErrInvalidBackend, "config: invalid backend %q", c.Backend)
	}

	if c.OutputFile == "" {
		c.OutputFile = "public/llms.txt"
	}
	if c.Scrape.MaxConcurrency < 0 {
		c.Scrape.MaxConcurrency = 0
	}
	return nil
}

// Redacted returns a copy with API keys masked, suitable for display.
func (c Config) Redacted() Config {
	c.JinaAPIKey = mask(c.JinaAPIKey)
	c.FirecrawlAPIKey = mask(c.FirecrawlAPIKey)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
