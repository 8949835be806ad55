package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ppiankov/naysayer/internal/pipeline"
	"github.com/ppiankov/naysayer/internal/report"
	"github.com/ppiankov/naysayer/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple products from a file in parallel",
	Long: `Batch analyzes many products concurrently:
- Read products from input file, one per line: "product | scenario | brand"
- Analyze products in parallel with configurable worker count
- Generate a JSON and Markdown report for each product

Example:
  naysayer batch products.txt
  naysayer batch products.txt --concurrency 4 --output-dir ./reports
  naysayer batch products.txt --timeout 20m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, fmt.Sprintf("number of concurrent workers (default: concurrency.workers, max %d)", runtime.NumCPU()))
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./naysayer-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&providerFlag, "provider", "", "reasoning backend (openai, deepseek, anthropic, ollama); overrides llm.provider")
	batchCmd.Flags().StringVar(&providerModel, "model", "", "model name; overrides llm.model")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg, logger, err := setup(providerFlag, providerModel)
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}
	if workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}

	analyzer, err := pipeline.NewFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("init analyzer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Naysayer Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Backend:      %s\n", analyzer.BackendName())
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(analyzer, workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		product := result.Request.ProductName
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", product, result.Error)
			continue
		}

		// Generate output file names
		slug := fmt.Sprintf("%02d-%s", result.Index+1, sanitizeFilename(product))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderOutputs(renderer, result.Report, jsonPath, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", product, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s: %s (%d/100, %s)\n", product,
			strings.ToUpper(string(result.Report.RiskLevel)), result.Report.RiskScore, result.Report.Mode)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d products\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename turns a product name into a safe file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".-")

	if s == "" {
		s = "product"
	}

	// Limit length without splitting a multi-byte character
	if len(s) > 100 {
		cut := 100
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}

	return s
}
