package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/naysayer/internal/model"
)

func sampleReport() *model.AnalysisReport {
	return &model.AnalysisReport{
		RequestID:   "req-1",
		ProductName: "robot vacuum X10",
		Mode:        model.ModeDemo,
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		RiskLevel:   model.RiskDanger,
		RiskScore:   72,
		Summary:     "Think twice.",
		Defects: []model.Defect{
			{Category: model.CategoryDesign, Description: "Brush | tangles", Severity: 6, Frequency: 10, Quotes: []string{"hair everywhere"}},
			{Category: model.CategoryHardware, Description: "Motor noise", Severity: 8, Frequency: 9},
			{Category: model.CategoryValue, Description: "Pricey", Severity: 2, Frequency: 1},
			{Category: model.CategorySoftware, Description: "App crashes", Severity: 7, Frequency: 2},
		},
		NoiseFiltered: 12,
		ScenarioWarnings: []model.ScenarioWarning{
			{Scenario: "two cats", Spec: "obstacle_avoidance: infrared", Warning: "Pet waste is invisible", ImpactPercentage: 100, Recommendation: "Pick camera AI"},
		},
		HistoryEvents: []model.HistoryEvent{
			{EventType: model.EventRecall, Description: "Battery recall", Source: "Regulator notice", RelatedModels: []string{}},
		},
		Heatmap: []model.HeatmapEntry{
			{Dimension: "Design flaws", Category: model.CategoryDesign, ComplaintCount: 10, SeverityAvg: 6, Percentage: 45.5},
		},
		Alternatives: []model.AlternativeProduct{
			{Name: "Roborock G20", PriceRange: "3000-4000", Advantage: "Camera avoidance", SolvedDefects: []string{"pets", "tangles"}, Link: "https://example.com/g20"},
		},
		PotentialIssues:      []string{"Runtime is a nominal value"},
		AnalyzedReviewsCount: 34,
		DataSources:          []string{"smzdm", "zhihu"},
	}
}

func TestRenderer_JSON(t *testing.T) {
	r := NewRenderer(true)

	data, err := r.JSON(sampleReport())
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"request_id", "risk_level", "risk_score", "defects", "heatmap", "generated_at", "analyzed_reviews_count"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if decoded["risk_level"] != "danger" {
		t.Errorf("unexpected risk_level: %v", decoded["risk_level"])
	}
}

func TestRenderer_Markdown(t *testing.T) {
	md := NewRenderer(true).Markdown(sampleReport())

	for _, want := range []string{
		"# Risk report: robot vacuum X10",
		"**Verdict:** DANGER (score 72/100)",
		"> Think twice.",
		`| Design flaws | Brush \| tangles | 6/10 | 10 |`,
		`- "hair everywhere"`,
		"34 reviews analyzed, 12 filtered as noise",
		"| Design flaws | 10 | 6.0 | 45.5% |",
		"### two cats (impact 100%)",
		"| unknown | recall | Battery recall | Regulator notice |",
		"- Runtime is a nominal value",
		"- **[Roborock G20](https://example.com/g20)** (3000-4000): Camera avoidance. Solves: pets; tangles",
		"Sources: smzdm, zhihu",
		Footer,
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestRenderer_MarkdownNoFooter(t *testing.T) {
	md := NewRenderer(false).Markdown(sampleReport())
	if strings.Contains(md, Footer) {
		t.Error("footer rendered although disabled")
	}
}

func TestRenderer_MarkdownEmptySections(t *testing.T) {
	report := sampleReport()
	report.Defects = nil
	report.Heatmap = nil
	report.ScenarioWarnings = nil
	report.Alternatives = nil
	report.PotentialIssues = nil

	md := NewRenderer(false).Markdown(report)

	if !strings.Contains(md, "No defects were extracted.") {
		t.Error("expected empty defects note")
	}
	if strings.Contains(md, "## Complaint heatmap") || strings.Contains(md, "## Alternatives") {
		t.Error("empty sections should be omitted")
	}
}

func TestRenderer_RenderFiles(t *testing.T) {
	r := NewRenderer(true)
	dir := filepath.Join(t.TempDir(), "reports")

	jsonPath := filepath.Join(dir, "x10.json")
	mdPath := filepath.Join(dir, "x10.md")

	if err := r.RenderJSON(sampleReport(), jsonPath); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}
	if err := r.RenderMarkdown(sampleReport(), mdPath); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}

	for _, path := range []string{jsonPath, mdPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}
}

func TestRenderer_RenderSummary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(true).RenderSummary(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{"robot vacuum X10", "DANGER (72/100)", "Think twice.", "Consider instead: Roborock G20"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}

	// Motor noise (72) ranks above Brush (60); App crashes (14) is third
	motor := strings.Index(out, "Motor noise")
	brush := strings.Index(out, "Brush | tangles")
	app := strings.Index(out, "App crashes")
	if motor < 0 || brush < 0 || app < 0 || !(motor < brush && brush < app) {
		t.Errorf("unexpected top defect order:\n%s", out)
	}
	if strings.Contains(out, "Pricey") {
		t.Error("only the top three defects should be listed")
	}
}
