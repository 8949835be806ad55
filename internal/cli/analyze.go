package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/naysayer/internal/model"
	"github.com/ppiankov/naysayer/internal/pipeline"
	"github.com/ppiankov/naysayer/internal/report"
)

var (
	outJSON        string
	outMD          string
	analyzeTimeout time.Duration
	noFooter       bool
	userScenario   string
	brand          string
	budget         string
	priorities     []string
	providerFlag   string
	providerModel  string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <product name>",
	Short: "Analyze one product and generate a risk report",
	Long: `Analyze collects negative reviews, specs and incident history for a product to:
- Extract real defects with severity and mention counts
- Predict conflicts with your usage scenario
- List recalls, batch defects and rebrands
- Score the purchase risk from 0 (safe) to 100 (run)
- Suggest alternatives

Example:
  naysayer analyze "robot vacuum X10"
  naysayer analyze "robot vacuum X10" --scenario "two cats, 2cm door sills" --md report.md
  naysayer analyze "projector P1" --provider deepseek --json report.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Request flags
	analyzeCmd.Flags().StringVarP(&userScenario, "scenario", "s", "", "where and how you will use the product")
	analyzeCmd.Flags().StringVar(&brand, "brand", "", "brand name, narrows the history lookup")
	analyzeCmd.Flags().StringVar(&budget, "budget", "", "budget, passed to the report")
	analyzeCmd.Flags().StringSliceVar(&priorities, "priority", nil, "what matters most, in order (repeatable)")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 3*time.Minute, "overall analysis timeout")

	// Backend flags
	analyzeCmd.Flags().StringVar(&providerFlag, "provider", "", "reasoning backend (openai, deepseek, anthropic, ollama); overrides llm.provider")
	analyzeCmd.Flags().StringVar(&providerModel, "model", "", "model name; overrides llm.model")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	product := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	cfg, logger, err := setup(providerFlag, providerModel)
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	// Create analyzer
	analyzer, err := pipeline.NewFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("init analyzer: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", product)
		fmt.Fprintf(os.Stderr, "Backend:   %s\n", analyzer.BackendName())
		fmt.Fprintf(os.Stderr, "Timeout:   %v\n", analyzeTimeout)
		fmt.Fprintln(os.Stderr)
	}

	result, err := analyzer.Analyze(ctx, model.AnalysisRequest{
		ProductName:  product,
		UserScenario: userScenario,
		Budget:       budget,
		Priorities:   priorities,
		Brand:        brand,
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	// Render outputs
	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderOutputs(renderer, result, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	renderer.RenderSummary(cmd.OutOrStdout(), result)

	return nil
}

// renderOutputs writes the requested report files
func renderOutputs(renderer *report.Renderer, result *model.AnalysisReport, jsonPath, mdPath string) error {
	// Render JSON
	if jsonPath != "" {
		if err := renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	// Render Markdown
	if mdPath != "" {
		if err := renderer.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	return nil
}
