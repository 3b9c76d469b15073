package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Fetcher   FetcherConfig   `toml:"fetcher"`
	Browser   BrowserConfig   `toml:"browser"`
	Resolver  ResolverConfig  `toml:"resolver"`
	Fallback  FallbackConfig  `toml:"fallback"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                            // "stdout", "file"
}

// DiscoveryConfig controls the producer -> artist pipeline
type DiscoveryConfig struct {
	Mode                  string `toml:"mode" validate:"oneof=strict_real real_with_fallback fallback_only"`
	ArtistPath            string `toml:"artist_path" validate:"oneof=primary secondary cascade"`
	MatchStrategy         string `toml:"match_strategy" validate:"oneof=exact proximity"`
	ProducerCount         int    `toml:"producer_count" validate:"min=1,max=10"`          // Producers taken from discovery
	MaxPerQuery           int    `toml:"max_per_query" validate:"min=1"`                  // Accepted candidates per credit query
	MaxArtistsPerProducer int    `toml:"max_artists_per_producer" validate:"min=8,max=10"` // Unique artists kept per producer
	MaxResults            int    `toml:"max_results" validate:"min=1"`                    // Cap on the assembled lead list
	RequireContact        string `toml:"require_contact" validate:"omitempty,oneof=instagram twitter email website"`
	ProximityWindow       int    `toml:"proximity_window" validate:"min=0"` // Characters either side of the producer name
	QueryDelay            string `toml:"query_delay"`                       // Pause between successive queries
	ProducerDelay         string `toml:"producer_delay"`                    // Pause between producer searches
	Seed                  int64  `toml:"seed"`                              // Random seed for synthetic data, 0 = time based
}

// FetcherConfig controls the stateless HTTP fetcher
type FetcherConfig struct {
	UserAgent      string `toml:"user_agent" validate:"required"`
	Timeout        string `toml:"timeout"`
	CacheTTL       string `toml:"cache_ttl"` // 0 disables the in-process page cache
	MaxBodySize    int64  `toml:"max_body_size" validate:"min=1024"`
	VideoSearchURL string `toml:"video_search_url" validate:"required,url"`
	VideoBaseURL   string `toml:"video_base_url" validate:"required,url"`
}

// BrowserConfig controls the headless browser session
type BrowserConfig struct {
	Headless        bool   `toml:"headless"`
	NoSandbox       bool   `toml:"no_sandbox"`
	DisableImages   bool   `toml:"disable_images"`
	WindowWidth     int    `toml:"window_width" validate:"min=320"`
	WindowHeight    int    `toml:"window_height" validate:"min=240"`
	UserAgent       string `toml:"user_agent" validate:"required"`
	PageLoadTimeout string `toml:"page_load_timeout"`
	ImplicitWait    string `toml:"implicit_wait"` // Render settle time after navigation
	StartupTimeout  string `toml:"startup_timeout"`
	SettleDelay     string `toml:"settle_delay"` // Pause after a restart before navigating again
	MaxRetries      int    `toml:"max_retries" validate:"min=0,max=10"`
	ExecPath        string `toml:"exec_path"` // Optional Chrome binary path
	SearchURL       string `toml:"search_url" validate:"required,url"`
	ProfileBaseURL  string `toml:"profile_base_url" validate:"required,url"`
}

// ResolverConfig controls the audio platform profile resolver
type ResolverConfig struct {
	MaxProfileLinks int    `toml:"max_profile_links" validate:"min=1"` // Unique profile URLs collected across queries
	MaxProfiles     int    `toml:"max_profiles" validate:"min=1"`      // Profiles visited per producer
	ProfileDelay    string `toml:"profile_delay"`
}

// FallbackConfig controls synthetic data generation
type FallbackConfig struct {
	MinArtists    int                 `toml:"min_artists" validate:"min=1"`
	MaxArtists    int                 `toml:"max_artists" validate:"gtefield=MinArtists"`
	EmailProvider string              `toml:"email_provider" validate:"required,hostname"`
	ProducerTable map[string][]string `toml:"producer_table"` // Merged over the built-in genre table
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Discovery: DiscoveryConfig{
			Mode:                  "real_with_fallback",
			ArtistPath:            "primary",
			MatchStrategy:         "exact",
			ProducerCount:         3,
			MaxPerQuery:           4,
			MaxArtistsPerProducer: 8,
			MaxResults:            12,
			RequireContact:        "instagram",
			ProximityWindow:       10,
			QueryDelay:            "2s",
			ProducerDelay:         "2s",
		},
		Fetcher: FetcherConfig{
			UserAgent:      DefaultUserAgent,
			Timeout:        "15s",
			CacheTTL:       "10m",
			MaxBodySize:    8 * 1024 * 1024, // 8MB, search pages carry large inline JSON
			VideoSearchURL: "https://www.youtube.com/results",
			VideoBaseURL:   "https://www.youtube.com",
		},
		Browser: BrowserConfig{
			Headless:        true,
			NoSandbox:       true,
			DisableImages:   true,
			WindowWidth:     800,
			WindowHeight:    600,
			UserAgent:       DefaultUserAgent,
			PageLoadTimeout: "15s",
			ImplicitWait:    "5s",
			StartupTimeout:  "30s",
			SettleDelay:     "3s",
			MaxRetries:      3,
			SearchURL:       "https://soundcloud.com/search",
			ProfileBaseURL:  "https://soundcloud.com",
		},
		Resolver: ResolverConfig{
			MaxProfileLinks: 10,
			MaxProfiles:     8,
			ProfileDelay:    "2s",
		},
		Fallback: FallbackConfig{
			MinArtists:    3,
			MaxArtists:    6,
			EmailProvider: "gmail.com",
		},
	}
}

// DefaultUserAgent is the fixed desktop user agent sent by the fetcher and the browser
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> .env -> env
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Logging
	if level := os.Getenv("LEADHOUND_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LEADHOUND_LOG_OUTPUT"); output != "" {
		outputs := strings.Split(output, ",")
		for i := range outputs {
			outputs[i] = strings.TrimSpace(outputs[i])
		}
		config.Logging.Output = outputs
	}

	// Discovery
	if mode := os.Getenv("LEADHOUND_DISCOVERY_MODE"); mode != "" {
		config.Discovery.Mode = mode
	}
	if path := os.Getenv("LEADHOUND_DISCOVERY_ARTIST_PATH"); path != "" {
		config.Discovery.ArtistPath = path
	}
	if strategy := os.Getenv("LEADHOUND_DISCOVERY_MATCH_STRATEGY"); strategy != "" {
		config.Discovery.MatchStrategy = strategy
	}
	if count := os.Getenv("LEADHOUND_DISCOVERY_PRODUCER_COUNT"); count != "" {
		if c, err := strconv.Atoi(count); err == nil {
			config.Discovery.ProducerCount = c
		}
	}
	if maxResults := os.Getenv("LEADHOUND_DISCOVERY_MAX_RESULTS"); maxResults != "" {
		if m, err := strconv.Atoi(maxResults); err == nil {
			config.Discovery.MaxResults = m
		}
	}
	if require, ok := os.LookupEnv("LEADHOUND_DISCOVERY_REQUIRE_CONTACT"); ok {
		config.Discovery.RequireContact = require
	}
	if delay := os.Getenv("LEADHOUND_DISCOVERY_QUERY_DELAY"); delay != "" {
		config.Discovery.QueryDelay = delay
	}
	if delay := os.Getenv("LEADHOUND_DISCOVERY_PRODUCER_DELAY"); delay != "" {
		config.Discovery.ProducerDelay = delay
	}
	if seed := os.Getenv("LEADHOUND_DISCOVERY_SEED"); seed != "" {
		if s, err := strconv.ParseInt(seed, 10, 64); err == nil {
			config.Discovery.Seed = s
		}
	}

	// Fetcher
	if userAgent := os.Getenv("LEADHOUND_FETCHER_USER_AGENT"); userAgent != "" {
		config.Fetcher.UserAgent = userAgent
	}
	if timeout := os.Getenv("LEADHOUND_FETCHER_TIMEOUT"); timeout != "" {
		config.Fetcher.Timeout = timeout
	}
	if ttl := os.Getenv("LEADHOUND_FETCHER_CACHE_TTL"); ttl != "" {
		config.Fetcher.CacheTTL = ttl
	}

	// Browser
	if headless := os.Getenv("LEADHOUND_BROWSER_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Browser.Headless = h
		}
	}
	if execPath := os.Getenv("LEADHOUND_BROWSER_EXEC_PATH"); execPath != "" {
		config.Browser.ExecPath = execPath
	}
	if retries := os.Getenv("LEADHOUND_BROWSER_MAX_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			config.Browser.MaxRetries = r
		}
	}
	if timeout := os.Getenv("LEADHOUND_BROWSER_PAGE_LOAD_TIMEOUT"); timeout != "" {
		config.Browser.PageLoadTimeout = timeout
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config (highest priority).
// Empty / zero values leave the config untouched.
func ApplyFlagOverrides(config *Config, mode, artistPath, strategy string, producerCount, maxResults int, seed int64) {
	if mode != "" {
		config.Discovery.Mode = mode
	}
	if artistPath != "" {
		config.Discovery.ArtistPath = artistPath
	}
	if strategy != "" {
		config.Discovery.MatchStrategy = strategy
	}
	if producerCount > 0 {
		config.Discovery.ProducerCount = producerCount
	}
	if maxResults > 0 {
		config.Discovery.MaxResults = maxResults
	}
	if seed != 0 {
		config.Discovery.Seed = seed
	}
}

// Validate checks the resolved configuration
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for name, value := range map[string]string{
		"discovery.query_delay":     c.Discovery.QueryDelay,
		"discovery.producer_delay":  c.Discovery.ProducerDelay,
		"fetcher.timeout":           c.Fetcher.Timeout,
		"fetcher.cache_ttl":         c.Fetcher.CacheTTL,
		"browser.page_load_timeout": c.Browser.PageLoadTimeout,
		"browser.implicit_wait":     c.Browser.ImplicitWait,
		"browser.startup_timeout":   c.Browser.StartupTimeout,
		"browser.settle_delay":      c.Browser.SettleDelay,
		"resolver.profile_delay":    c.Resolver.ProfileDelay,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", name, err)
		}
	}

	return nil
}

// ParseDuration parses a duration string, returning fallback when empty or invalid
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
