package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/database"
	applog "github.com/publintel/mfascan/internal/log"
	"github.com/publintel/mfascan/internal/model"
	"github.com/publintel/mfascan/internal/observation"
	"github.com/publintel/mfascan/internal/pipeline"
	"github.com/publintel/mfascan/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [observation.json]...",
		Short: "Score crawl observations for MFA risk",
		Long: `Scan scores recorded crawl observations for made-for-advertising risk.

Each input file is a crawl observation JSON document captured by a
browser-side recorder. The scan analyzes it for:
- Ad behavior abuse (density, stacking, viewability, auto-refresh,
  scroll injection, video stuffing, ad network patterns)
- Low-value content (AI-generated text, duplication, clickbait,
  staleness, commercial intent)

Raw HTML can be scored instead with --html-url, which parses the page
into an observation first. Behavioral signals (refresh, injection,
network calls) are unavailable in that mode.

Examples:
  # Score a single observation
  mfascan scan capture.json

  # Score several observations concurrently
  mfascan scan site1.json site2.json site3.json

  # Score a raw HTML page
  mfascan scan --html-url https://example.com/article page.html

  # Output JSON report to a file
  mfascan scan --json -o report.json capture.json

  # Use a custom configuration file
  mfascan scan -c myconfig.yaml capture.json

Configuration file (.mfascan) example:
  defaults:
    adDensityThreshold: 0.30
  sites:
    video-portal.example:
      maxAllowedVideoPlayers: 8`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Threshold flags
	cmd.Flags().Float64P("density-threshold", "d", config.DefaultAdDensityThreshold,
		"Maximum acceptable ad pixel coverage (0..1]")
	cmd.Flags().Float64P("visibility-ratio", "r", config.DefaultMinVisibilityRatio,
		"Fraction of an ad's area that must be in view to count as viewable")
	cmd.Flags().Int64P("refresh-threshold", "t", config.DefaultRefreshThresholdMs,
		"Maximum ms between ad-slot requests that counts as auto-refresh")
	cmd.Flags().IntP("max-video-players", "p", config.DefaultMaxAllowedVideoPlayers,
		"Number of video players tolerated before stuffing is flagged")

	// Batch scoring flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of observations scored concurrently")

	// Input flags
	cmd.Flags().String("html-url", "",
		"Treat the single input file as raw HTML for this page URL")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .mfascan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not save assessments to the audit history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	htmlURL, err := cmd.Flags().GetString("html-url")
	if err != nil {
		return err
	}
	if htmlURL != "" && len(cfg.Inputs) != 1 {
		return errors.New("--html-url requires exactly one input file")
	}

	logger := applog.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, htmlURL, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.AdDensityThreshold, err = cmd.Flags().GetFloat64("density-threshold")
	if err != nil {
		return nil, err
	}

	cfg.MinVisibilityRatio, err = cmd.Flags().GetFloat64("visibility-ratio")
	if err != nil {
		return nil, err
	}

	cfg.RefreshThresholdMs, err = cmd.Flags().GetInt64("refresh-threshold")
	if err != nil {
		return nil, err
	}

	cfg.MaxAllowedVideoPlayers, err = cmd.Flags().GetInt("max-video-players")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-site overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteOverride),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	if !noSave {
		cfg.SaveToDB = true
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the observation files
	cfg.Inputs = args

	return cfg, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, htmlURL string, logger *slog.Logger) error {
	logger.Info("starting scan",
		"inputs", len(cfg.Inputs),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.AuditDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	observations, err := loadObservations(cfg.Inputs, htmlURL)
	if err != nil {
		return err
	}

	// Use batch processor for parallel scoring if multiple inputs
	if len(observations) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, observations, db, logger)
	}

	return runSequentialScan(ctx, cfg, observations, db, logger)
}

// loadObservations reads all input files. When htmlURL is set, the
// single input is parsed as raw HTML for that page.
func loadObservations(inputs []string, htmlURL string) ([]*model.CrawlObservation, error) {
	if htmlURL != "" {
		f, err := os.Open(inputs[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open html file %s: %w", inputs[0], err)
		}
		defer f.Close()

		obs, err := observation.FromHTML(htmlURL, f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html file %s: %w", inputs[0], err)
		}
		return []*model.CrawlObservation{obs}, nil
	}

	observations := make([]*model.CrawlObservation, 0, len(inputs))
	for _, input := range inputs {
		obs, err := observation.Load(input)
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// runSequentialScan scores observations one at a time, applying
// per-site config overrides.
func runSequentialScan(ctx context.Context, cfg *config.Config, observations []*model.CrawlObservation, db *database.AuditDB, logger *slog.Logger) error {
	for _, obs := range observations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		siteCfg := cfg.ForSite(hostOf(obs.URL))
		p := pipeline.NewScoringPipeline(siteCfg, time.Now().UTC(), logger)
		scan := pipeline.NewScan(obs)

		fmt.Printf("Scoring %s...\n", obs.URL)
		startTime := time.Now()

		if err := p.Execute(ctx, scan); err != nil {
			logger.Error("scan failed", "url", obs.URL, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", obs.URL, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scored in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputAssessment(cfg, scan.Assessment); err != nil {
			logger.Error("report failed", "url", obs.URL, "error", err)
		}

		if err := saveAssessment(ctx, db, scan.Assessment, logger); err != nil {
			logger.Error("failed to save assessment", "url", obs.URL, "error", err)
		}
	}

	return nil
}

// runBatchScan scores multiple observations concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, observations []*model.CrawlObservation, db *database.AuditDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch scoring of %d observations (concurrency: %d)...\n\n",
		len(observations), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch scoring uses default thresholds only; per-site overrides are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Per-site overrides are ignored in batch mode. Use sequential mode (--batch 1) to apply them.\n\n")
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Batch mode shares one pipeline config; per-site overrides
			// would require per-observation pipeline creation.
			return pipeline.NewScoringPipeline(*cfg, time.Now().UTC(), logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, observations, func(scan *pipeline.Scan, index int) {
		mu.Lock()
		defer mu.Unlock()

		if scan.Error != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Scan error for %s: %s\n",
				index+1, len(observations), scan.Observation.URL, scan.ErrorMessage)
			return
		}

		fmt.Printf("[%d/%d] Scored %s: %.3f (%s)\n",
			index+1, len(observations), scan.Observation.URL,
			scan.Assessment.OverallRiskScore, scan.Assessment.RiskLevel)

		if err := outputAssessment(cfg, scan.Assessment); err != nil {
			logger.Error("report failed", "url", scan.Observation.URL, "error", err)
		}

		if err := saveAssessment(ctx, db, scan.Assessment, logger); err != nil {
			logger.Error("failed to save assessment", "url", scan.Observation.URL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scoring completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// hostOf extracts the hostname from a page URL for site-override
// lookup. Unparseable URLs match no override.
func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// outputAssessment outputs the assessment in the requested format.
func outputAssessment(cfg *config.Config, assessment *model.RiskAssessment) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(assessment)
	return err
}

// saveAssessment saves the assessment to the database if enabled.
// If db is nil, this function is a no-op.
func saveAssessment(ctx context.Context, db *database.AuditDB, assessment *model.RiskAssessment, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveAssessment(ctx, assessment); err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	logger.Info("assessment saved", "url", assessment.URL, "auditID", assessment.AuditID)
	return nil
}
