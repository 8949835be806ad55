// Package report renders analysis reports as JSON, Markdown and a terminal summary
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/naysayer/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// Footer is appended to Markdown reports unless disabled
const Footer = "Generated by naysayer. Scores are heuristic and built from public complaints; verify before you buy."

// Renderer writes reports in the supported formats
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// JSON returns the indented JSON encoding of a report
func (r *Renderer) JSON(report *model.AnalysisReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderJSON writes the report as JSON to path
func (r *Renderer) RenderJSON(report *model.AnalysisReport, path string) error {
	data, err := r.JSON(report)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.AnalysisReport, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown returns the Markdown rendering of a report
func (r *Renderer) Markdown(report *model.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Risk report: %s\n\n", report.ProductName)
	fmt.Fprintf(&b, "**Verdict:** %s (score %d/100)  \n", strings.ToUpper(string(report.RiskLevel)), report.RiskScore)
	fmt.Fprintf(&b, "**Mode:** %s  \n", report.Mode)
	fmt.Fprintf(&b, "**Generated:** %s  \n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**Request:** `%s`\n\n", report.RequestID)
	fmt.Fprintf(&b, "> %s\n\n", report.Summary)

	// Defects
	fmt.Fprintf(&b, "## Defects\n\n")
	if len(report.Defects) == 0 {
		b.WriteString("No defects were extracted.\n\n")
	} else {
		b.WriteString("| Category | Description | Severity | Mentions |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, d := range report.Defects {
			fmt.Fprintf(&b, "| %s | %s | %d/10 | %d |\n", d.Category.Label(), cell(d.Description), d.Severity, d.Frequency)
		}
		b.WriteString("\n")

		for _, d := range report.Defects {
			if len(d.Quotes) == 0 {
				continue
			}
			fmt.Fprintf(&b, "**%s**\n\n", d.Description)
			for _, q := range d.Quotes {
				fmt.Fprintf(&b, "- \"%s\"\n", q)
			}
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "%d reviews analyzed, %d filtered as noise (logistics, service, emotion).\n\n",
		report.AnalyzedReviewsCount, report.NoiseFiltered)

	// Heatmap
	if len(report.Heatmap) > 0 {
		b.WriteString("## Complaint heatmap\n\n")
		b.WriteString("| Dimension | Complaints | Avg severity | Share |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, h := range report.Heatmap {
			fmt.Fprintf(&b, "| %s | %d | %.1f | %.1f%% |\n", h.Dimension, h.ComplaintCount, h.SeverityAvg, h.Percentage)
		}
		b.WriteString("\n")
	}

	// Scenario warnings
	b.WriteString("## Scenario warnings\n\n")
	if len(report.ScenarioWarnings) == 0 {
		b.WriteString("No conflicts found for the described scenario.\n\n")
	}
	for _, w := range report.ScenarioWarnings {
		fmt.Fprintf(&b, "### %s (impact %d%%)\n\n", w.Scenario, w.ImpactPercentage)
		if w.Spec != "" {
			fmt.Fprintf(&b, "- Spec: %s\n", w.Spec)
		}
		fmt.Fprintf(&b, "- Warning: %s\n", w.Warning)
		if w.Recommendation != "" {
			fmt.Fprintf(&b, "- Recommendation: %s\n", w.Recommendation)
		}
		b.WriteString("\n")
	}

	// History
	b.WriteString("## History\n\n")
	b.WriteString("| Date | Type | Description | Source |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, e := range report.HistoryEvents {
		date := e.Date
		if date == "" {
			date = "unknown"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", date, e.EventType, cell(e.Description), cell(e.Source))
	}
	b.WriteString("\n")

	// Potential issues
	if len(report.PotentialIssues) > 0 {
		b.WriteString("## Potential issues from specs\n\n")
		for _, issue := range report.PotentialIssues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}

	// Alternatives
	if len(report.Alternatives) > 0 {
		b.WriteString("## Alternatives\n\n")
		for _, alt := range report.Alternatives {
			name := alt.Name
			if alt.Link != "" {
				name = fmt.Sprintf("[%s](%s)", alt.Name, alt.Link)
			}
			fmt.Fprintf(&b, "- **%s**", name)
			if alt.PriceRange != "" {
				fmt.Fprintf(&b, " (%s)", alt.PriceRange)
			}
			if alt.Advantage != "" {
				fmt.Fprintf(&b, ": %s", alt.Advantage)
			}
			if len(alt.SolvedDefects) > 0 {
				fmt.Fprintf(&b, ". Solves: %s", strings.Join(alt.SolvedDefects, "; "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(report.DataSources) > 0 {
		fmt.Fprintf(&b, "Sources: %s\n", strings.Join(report.DataSources, ", "))
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\n\n_%s_\n", Footer)
	}

	return b.String()
}

// RenderSummary prints a short verdict for the terminal
func (r *Renderer) RenderSummary(w io.Writer, report *model.AnalysisReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", report.ProductName)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Risk:         %s (%d/100)\n", strings.ToUpper(string(report.RiskLevel)), report.RiskScore)
	fmt.Fprintf(w, "  Mode:         %s\n", report.Mode)
	fmt.Fprintf(w, "  Reviews:      %d analyzed, %d noise\n", report.AnalyzedReviewsCount, report.NoiseFiltered)
	fmt.Fprintf(w, "  Warnings:     %d\n", len(report.ScenarioWarnings))
	fmt.Fprintf(w, "  History:      %d events\n", len(report.HistoryEvents))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", report.Summary)

	if top := topDefects(report.Defects, 3); len(top) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Top defects:")
		for _, d := range top {
			fmt.Fprintf(w, "    - [%s] %s (severity %d, %d mentions)\n", d.Category, d.Description, d.Severity, d.Frequency)
		}
	}

	if len(report.Alternatives) > 0 {
		names := make([]string, 0, len(report.Alternatives))
		for _, alt := range report.Alternatives {
			names = append(names, alt.Name)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Consider instead: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintln(w)
}

// topDefects returns up to n defects by severity × frequency, stable on ties
func topDefects(defects []model.Defect, n int) []model.Defect {
	sorted := append([]model.Defect(nil), defects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return weight(sorted[i]) > weight(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func weight(d model.Defect) int {
	return d.Severity * d.Frequency
}

// cell escapes text for a Markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
