package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fireview/internal/core"
)

// Config holds all application configuration. It is read from a YAML file
// and can be overridden per-key through environment variables.
type Config struct {
	// HTTP Server
	ListenAddr string `yaml:"listen_addr"`

	// Upstream API
	APIBaseURL string `yaml:"api_base_url"`
	APIToken   string `yaml:"api_token"`

	// Reporting window: either a rolling month count ending at period.end
	// (default today), or an explicit period.
	Months int `yaml:"months"`
	Period struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"period"`

	// Cache. TTL <= 0 disables caching entirely.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes"`

	// Rankings
	TopN int `yaml:"top_n"`

	// Optional cron expression that forces a refresh to keep the cache warm.
	RefreshCron string `yaml:"refresh_cron"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; env vars alone can
// configure the app.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.ListenAddr = ":" + v
	}
	if v := os.Getenv("FIREFLY_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("FIREFLY_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("REPORT_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Months = n
		}
	}
	if v := os.Getenv("REPORT_PERIOD_START"); v != "" {
		cfg.Period.Start = v
	}
	if v := os.Getenv("REPORT_PERIOD_END"); v != "" {
		cfg.Period.End = v
	}
	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheTTLMinutes = n
		}
	}
	if v := os.Getenv("REPORT_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TopN = n
		}
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.RefreshCron = v
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if !hasYAMLKey(data, "cache_ttl_minutes") && os.Getenv("CACHE_TTL_MINUTES") == "" {
		cfg.CacheTTLMinutes = 10
	}
	if cfg.TopN == 0 {
		cfg.TopN = 5
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

// hasYAMLKey reports whether the raw document sets the given top-level key.
// Needed because cache_ttl_minutes: 0 is meaningful (cache disabled) and must
// not be replaced by the default.
func hasYAMLKey(data []byte, key string) bool {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw[key]
	return ok
}

// Validate checks the configuration and returns a single error describing
// every problem found. It fails fast, before any network call is made.
func (c *Config) Validate() error {
	var errs []string

	if c.APIBaseURL == "" {
		errs = append(errs, "api_base_url is required")
	} else if u, err := url.Parse(c.APIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api_base_url %q must be a valid http(s) URL", c.APIBaseURL))
	}
	if c.APIToken == "" {
		errs = append(errs, "api_token is required")
	}
	if c.Months < 0 {
		errs = append(errs, fmt.Sprintf("months must not be negative, got %d", c.Months))
	}
	if c.TopN < 1 {
		errs = append(errs, fmt.Sprintf("top_n must be at least 1, got %d", c.TopN))
	}
	if _, err := c.parseDate(c.Period.Start); err != nil {
		errs = append(errs, fmt.Sprintf("period.start: %v", err))
	}
	if _, err := c.parseDate(c.Period.End); err != nil {
		errs = append(errs, fmt.Sprintf("period.end: %v", err))
	}
	if _, err := c.Window(time.Now()); err != nil && len(errs) == 0 {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Window resolves the reporting window relative to now:
//   - end = period.end, or today when unset
//   - start = period.start when set; otherwise end's month start minus
//     (months-1) months when a rolling count is configured; otherwise
//     January 1st of end's year.
func (c *Config) Window(now time.Time) (core.Window, error) {
	end, err := c.parseDate(c.Period.End)
	if err != nil {
		return core.Window{}, err
	}
	if end.IsZero() {
		end = now
	}

	start, err := c.parseDate(c.Period.Start)
	if err != nil {
		return core.Window{}, err
	}
	if start.IsZero() {
		if c.Months > 0 {
			start = core.MonthStart(end).AddDate(0, -(c.Months - 1), 0)
		} else {
			start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		}
	}

	w, err := core.NewWindow(start, end)
	if err != nil {
		return core.Window{}, fmt.Errorf("period.end must not be earlier than period.start: %w", err)
	}
	return w, nil
}

// CacheTTL converts the configured minutes to a duration. Zero or negative
// means caching is disabled.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

func (c *Config) parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be in YYYY-MM-DD format", s)
	}
	return t, nil
}
