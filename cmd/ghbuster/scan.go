package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nao1215/ghbuster/internal/cache"
	"github.com/nao1215/ghbuster/internal/config"
	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/heuristic"
	ghlog "github.com/nao1215/ghbuster/internal/log"
	"github.com/nao1215/ghbuster/internal/model"
	"github.com/nao1215/ghbuster/internal/report"
	"github.com/nao1215/ghbuster/internal/scanner"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <user|owner/repo>",
		Short: "Scan a GitHub user or repository for inauthentic activity",
		Long: `Scan runs every heuristic that applies to the target and prints which of
them triggered.

For users, a legitimacy pre-check runs first. If the account looks like a
normal, long-lived account the scan stops early unless --force is given.

Examples:
  # Scan a user
  ghbuster scan octocat

  # Scan a repository, pasted as a URL
  ghbuster scan https://github.com/octocat/hello-world

  # Run only two heuristics
  ghbuster scan octocat --include user.just_joined,user.missing_common_fields

  # Markdown report written to a file
  ghbuster scan octocat/hello-world --markdown -o report.md`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().String("github-token", "",
		"GitHub token (default: $"+config.TokenEnv+")")
	cmd.Flags().StringSlice("include", nil,
		"Run only these heuristic ids (repeatable or comma separated)")
	cmd.Flags().StringSlice("exclude", nil,
		"Skip these heuristic ids (repeatable or comma separated)")
	cmd.Flags().BoolP("force", "f", false,
		"Run all heuristics even if the user looks legitimate")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Heuristics and stargazer sub-scans run in parallel")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Deadline for the whole scan (0 disables it)")
	cmd.Flags().Bool("no-cache", false,
		"Do not read or write the response cache")
	cmd.Flags().String("proxy", "",
		"Proxy URL for API traffic (socks5://, http:// or https://)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .ghbuster in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args, os.Getenv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildConfig layers defaults, the dotfile, the environment and the flags
// that were set explicitly.
func buildConfig(cmd *cobra.Command, args []string, getenv func(string) string) (*config.Config, error) {
	cfg := config.NewConfig()
	if len(args) > 0 {
		cfg.Target = args[0]
	}

	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, config.NewConfigurationError(fmt.Errorf("%s: %w", path, err))
		}
		f.ApplyTo(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, config.NewConfigurationError(fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath))
	}

	cfg.Token = getenv(config.TokenEnv)

	if flags.Changed("github-token") {
		if cfg.Token, err = flags.GetString("github-token"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("include") {
		ids, err := flags.GetStringSlice("include")
		if err != nil {
			return nil, err
		}
		cfg.Include = cleanIDs(ids)
	}
	if flags.Changed("exclude") {
		ids, err := flags.GetStringSlice("exclude")
		if err != nil {
			return nil, err
		}
		cfg.Exclude = cleanIDs(ids)
	}
	if flags.Changed("force") {
		if cfg.Force, err = flags.GetBool("force"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-cache") {
		if cfg.CacheDisabled, err = flags.GetBool("no-cache"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	cfg.Verbose = getDebugFlag(cmd)

	return cfg, nil
}

// cleanIDs trims ids and drops empty entries left by stray commas.
func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// getDebugFlag retrieves the debug flag from the command or its parent.
func getDebugFlag(cmd *cobra.Command) bool {
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		debug, err = cmd.Root().PersistentFlags().GetBool("debug")
		if err != nil {
			return false
		}
	}
	return debug
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return ghlog.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return ghlog.NewSecureLogger(w, cfg.Verbose)
}

// runScan executes one scan and writes its report.
func runScan(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	target, err := model.ParseTarget(cfg.Target)
	if err != nil {
		return config.NewConfigurationError(err)
	}
	heuristics, err := heuristic.Resolve(cfg.Include, cfg.Exclude)
	if err != nil {
		return config.NewConfigurationError(err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	opts := []github.Option{
		github.WithBaseURL(cfg.APIBaseURL),
		github.WithToken(cfg.Token),
		github.WithUserAgent(userAgent()),
		github.WithProxy(cfg.Proxy),
		github.WithRateLimit(cfg.RequestsPerSecond),
		github.WithMaxRetries(cfg.MaxRetries),
		github.WithRequestTimeout(cfg.RequestTimeout),
		github.WithLogger(logger),
	}

	if !cfg.CacheDisabled {
		store, err := openCache(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, github.WithTransportWrapper(func(rt http.RoundTripper) http.RoundTripper {
			return cache.NewTransport(store, rt, cfg.CacheTTL, logger)
		}))
	}

	client, err := github.NewClient(opts...)
	if err != nil {
		return config.NewConfigurationError(err)
	}

	logger.Info("starting scan",
		"target", target.String(),
		"kind", target.Kind().String(),
		"heuristics", len(heuristics),
		"concurrency", cfg.Concurrency,
		"force", cfg.Force,
	)

	s := scanner.New(client, target, heuristics,
		scanner.WithLogger(logger),
		scanner.WithForce(cfg.Force),
		scanner.WithConcurrency(cfg.Concurrency),
	)
	scanReport, err := s.Run(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("scan did not finish within %s: %w", cfg.Timeout, err)
		}
		return err
	}

	return outputReport(cfg, scanReport, stdout)
}

// openCache opens the response store and drops rows older than the TTL.
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cache.Store, error) {
	dir := cfg.ResolvedCacheDir()
	store, err := cache.Open(dir, cache.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	purged, err := store.Purge(ctx, cfg.CacheTTL)
	if err != nil {
		logger.Warn("failed to purge response cache", "error", err)
	} else if purged > 0 {
		logger.Debug("purged expired responses", "count", purged)
	}
	logger.Debug("response cache opened", "path", store.Path())
	return store, nil
}

// outputReport writes the report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports name accounts under suspicion; keep them owner-readable.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	format := report.FormatSimple
	switch {
	case cfg.JSONReport:
		format = report.FormatJSON
	case cfg.MarkdownReport:
		format = report.FormatMarkdown
	}

	_, err := report.New(format, output, getVersion()).Write(scanReport)
	return err
}
