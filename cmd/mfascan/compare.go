package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/database"
)

// NewCompareCmd creates the compare command.
// This command compares audit results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [url]",
		Short: "Compare audits with historical data",
		Long: `Compare shows how a site's MFA risk moved across its audit history.

This command retrieves historical audits from the database and reports:
- The trend direction (improving, stable, or worsening)
- The overall score change between the first and latest audit
- Per-factor score deltas

The comparison requires at least two audits in the database for the
specified URL. Use 'mfascan scan' to perform audits and save results.

Examples:
  # Show the risk trend for a site
  mfascan compare https://example.com/article

  # List all audits for a site
  mfascan compare --list https://example.com/article

  # Output the trend in JSON format
  mfascan compare --json https://example.com/article

  # List all audited URLs in the database
  mfascan compare --list-urls`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List audit history for the specified URL")
	cmd.Flags().BoolP("list-urls", "L", false,
		"List all audited URLs in the database")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the trend in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listURLs, err := cmd.Flags().GetBool("list-urls")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a bad
	// invocation never takes the write lock.
	var targetURL string
	if !listURLs {
		if len(args) == 0 {
			return errors.New("url is required (use --list-urls to see audited sites)")
		}
		targetURL = args[0]
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listURLs {
		return listAuditedURLs(ctx, cmd, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listAuditHistory(ctx, cmd, db, targetURL)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	return runTrend(ctx, cmd, db, targetURL, jsonOutput)
}

// listAuditedURLs lists all URLs that have audit records in the database.
func listAuditedURLs(ctx context.Context, cmd *cobra.Command, db *database.AuditDB) error {
	urls, err := db.ListAuditedURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list audited urls: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(urls) == 0 {
		fmt.Fprintln(out, "No audited sites found in the database.")
		fmt.Fprintln(out, "\nUse 'mfascan scan <observation.json>' to audit a site.")
		return nil
	}

	fmt.Fprintf(out, "Audited sites (%d):\n\n", len(urls))
	for _, url := range urls {
		fmt.Fprintf(out, "  • %s\n", url)
	}
	fmt.Fprintln(out, "\nUse 'mfascan compare --list <url>' to see audit history for a site.")

	return nil
}

// listAuditHistory lists all audit records for a specific URL.
func listAuditHistory(ctx context.Context, cmd *cobra.Command, db *database.AuditDB, targetURL string) error {
	records, err := db.GetAuditHistory(ctx, targetURL)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintf(out, "No audit history found for %s\n", targetURL)
		fmt.Fprintln(out, "\nUse 'mfascan scan' to audit this site.")
		return nil
	}

	fmt.Fprintf(out, "Audit history for %s (%d audits):\n\n", targetURL, len(records))
	fmt.Fprintf(out, "  %-20s  %-8s  %-10s  %s\n", "Date", "Score", "Level", "Problems")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, record := range records {
		fmt.Fprintf(out, "  %-20s  %-8.3f  %-10s  %d (%d critical, %d high)\n",
			record.ScannedAt.Format("2006-01-02 15:04:05"),
			record.OverallRiskScore,
			record.RiskLevel,
			record.ProblemCount,
			record.CriticalProblems,
			record.HighProblems,
		)
	}

	return nil
}

// runTrend computes and prints the trend for a URL.
func runTrend(ctx context.Context, cmd *cobra.Command, db *database.AuditDB, targetURL string, jsonOutput bool) error {
	trend, err := db.Trend(ctx, targetURL)
	if errors.Is(err, database.ErrInsufficientHistory) {
		return fmt.Errorf("%w for %s (run 'mfascan scan' at least twice)", err, targetURL)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(trend)
	}

	fmt.Fprintf(out, "Risk trend for %s\n\n", trend.URL)
	fmt.Fprintf(out, "  Direction:  %s %s\n", trend.Direction, directionIndicator(trend.Direction))
	fmt.Fprintf(out, "  Change:     %+.3f (%.3f to %.3f)\n", trend.ChangeRate, trend.FirstScore, trend.LatestScore)
	fmt.Fprintf(out, "  Audits:     %d (%s to %s)\n\n",
		trend.Samples,
		trend.FirstScannedAt.Format("2006-01-02"),
		trend.LatestScannedAt.Format("2006-01-02"),
	)

	fmt.Fprintln(out, "  Factor changes:")
	factors := make([]string, 0, len(trend.FactorChanges))
	for name := range trend.FactorChanges {
		factors = append(factors, name)
	}
	sort.Strings(factors)
	for _, name := range factors {
		fmt.Fprintf(out, "    %-18s %+.3f\n", name, trend.FactorChanges[name])
	}

	return nil
}

// directionIndicator returns a terminal marker for a trend direction.
func directionIndicator(direction string) string {
	switch direction {
	case database.TrendWorsening:
		return "(risk rising)"
	case database.TrendImproving:
		return "(risk falling)"
	default:
		return "(no significant change)"
	}
}
