package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/services/browser"
	"github.com/ternarybob/leadhound/internal/services/fetcher"
	"github.com/ternarybob/leadhound/internal/services/leads"
)

// CLI is the command line surface
type CLI struct {
	Config  []string         `help:"Configuration file path (repeatable, later files override earlier ones)" short:"c" type:"path"`
	Quiet   bool             `help:"Do not print the startup banner" short:"q"`
	Version kong.VersionFlag `help:"Print version information" short:"v"`

	Find FindCmd `cmd:"" help:"Discover artist leads for a style keyword"`
	Env  EnvCmd  `cmd:"" help:"Print the resolved configuration"`
}

// FindCmd runs one discovery
type FindCmd struct {
	Keyword    string `arg:"" help:"Artist or genre keyword, e.g. drake"`
	Mode       string `help:"Discovery mode: strict_real, real_with_fallback, fallback_only" short:"m"`
	Path       string `help:"Artist path: primary, secondary, cascade"`
	Strategy   string `help:"Credit match strategy: exact, proximity"`
	Count      int    `help:"Producers taken from discovery" short:"n"`
	MaxResults int    `help:"Cap on returned leads"`
	Seed       int64  `help:"Random seed for synthetic data (0 = time based)"`
	Output     string `help:"Write the JSON result to this file instead of stdout" short:"o" type:"path"`
}

// EnvCmd prints the configuration after files and environment are applied
type EnvCmd struct{}

func main() {
	defer common.RecoverWithCrashFile()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("leadhound"),
		kong.Description("Discover emerging artists through the producers they credit"),
		kong.UsageOnError(),
		kong.Vars{"version": common.GetFullVersion()},
	)

	// Auto-discover config file if not specified
	if len(cli.Config) == 0 {
		if _, err := os.Stat("leadhound.toml"); err == nil {
			cli.Config = append(cli.Config, "leadhound.toml")
		} else if _, err := os.Stat("deployments/local/leadhound.toml"); err == nil {
			cli.Config = append(cli.Config, "deployments/local/leadhound.toml")
		}
	}

	ctx.FatalIfErrorf(ctx.Run(&cli))
}

// Run loads configuration, wires the engine and runs one discovery
func (f *FindCmd) Run(cli *CLI) error {
	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	config, err := loadConfig(cli)
	if err != nil {
		return err
	}

	common.ApplyFlagOverrides(config, f.Mode, f.Path, f.Strategy, f.Count, f.MaxResults, f.Seed)
	if err := config.Validate(); err != nil {
		return err
	}

	logger := common.InitLogger(config)
	common.InstallCrashHandler("")

	if !cli.Quiet {
		common.PrintBanner(common.GetVersion())
	}

	logger.Debug().
		Strs("config_files", cli.Config).
		Str("mode", config.Discovery.Mode).
		Str("artist_path", config.Discovery.ArtistPath).
		Str("match_strategy", config.Discovery.MatchStrategy).
		Int("producer_count", config.Discovery.ProducerCount).
		Int("max_results", config.Discovery.MaxResults).
		Str("log_level", config.Logging.Level).
		Msg("Resolved configuration")

	seed := config.Discovery.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	service, err := leads.NewService(
		config,
		fetcher.NewHTTPFetcher(fetcher.NewHTTPFetcherConfig(config.Fetcher), logger),
		newSessionFactory(config.Browser, logger),
		rand.New(rand.NewSource(seed)),
		logger,
	)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := service.FindLeads(runCtx, f.Keyword)
	if err != nil {
		logger.Error().Err(err).Str("keyword", f.Keyword).Msg("Lead discovery failed")
		return err
	}

	return writeJSON(f.Output, result)
}

// Run prints the resolved configuration as JSON
func (e *EnvCmd) Run(cli *CLI) error {
	config, err := loadConfig(cli)
	if err != nil {
		return err
	}
	return writeJSON("", config)
}

func loadConfig(cli *CLI) (*common.Config, error) {
	config, err := common.LoadFromFiles(cli.Config...)
	if err != nil {
		// Use temporary logger for startup errors
		arbor.NewLogger().Error().Strs("paths", cli.Config).Err(err).Msg("Failed to load configuration")
		return nil, err
	}
	return config, nil
}

// newSessionFactory starts a fresh headless browser for each discovery that needs one
func newSessionFactory(config common.BrowserConfig, logger arbor.ILogger) leads.SessionFactory {
	return func(ctx context.Context) (leads.Session, error) {
		manager, err := browser.StartManager(ctx, config, logger)
		if err != nil {
			return nil, err
		}
		return manager, nil
	}
}

func writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result to %s: %w", path, err)
	}
	return nil
}
