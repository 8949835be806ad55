package llm

import (
	"strings"
	"testing"

	"github.com/ppiankov/naysayer/internal/model"
)

func TestDefectPrompt_CapsReviews(t *testing.T) {
	reviews := []string{"one", "two", "three", "four"}

	prompt := DefectPrompt("X500", reviews, 2)

	if !strings.Contains(prompt, "Product: X500") {
		t.Error("expected product name in prompt")
	}
	if !strings.Contains(prompt, "(4 total)") {
		t.Error("expected total review count in prompt")
	}
	if !strings.Contains(prompt, "- two") || strings.Contains(prompt, "- three") {
		t.Errorf("expected only the first two reviews, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "2 more not shown") {
		t.Error("expected truncation marker")
	}
}

func TestScenarioPrompt_SortedSpecs(t *testing.T) {
	prompt := ScenarioPrompt("X500", "two cats", map[string]string{"runtime": "180min", "climbing": "2cm"})

	climbing := strings.Index(prompt, "climbing: 2cm")
	runtime := strings.Index(prompt, "runtime: 180min")
	if climbing < 0 || runtime < 0 || climbing > runtime {
		t.Errorf("expected specs in key order, got:\n%s", prompt)
	}
	if !strings.Contains(ScenarioPrompt("X500", "s", nil), "- unknown") {
		t.Error("expected unknown marker for empty specs")
	}
}

func TestReportPrompt(t *testing.T) {
	req := model.AnalysisRequest{ProductName: "X500", Budget: "2000", Priorities: []string{"quiet", "battery"}}
	defects := []model.Defect{{Category: model.CategoryHardware, Description: "Brush motor dies", Severity: 8, Frequency: 28}}

	prompt := ReportPrompt(req, defects, nil, nil, []string{"runtime is nominal"})

	for _, want := range []string{
		"Budget: 2000",
		"Priorities: quiet, battery",
		"[hardware] Brush motor dies (severity 8, mentioned 28 times)",
		"runtime is nominal",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected %q in prompt:\n%s", want, prompt)
		}
	}
	if HistoryPrompt("X500", "") != "Product: X500\n\nList recalls, known defects, rebrands and brand history relevant to this product.\n" {
		t.Error("unexpected history prompt without brand")
	}
}

func TestDefectSystemPrompt_ListsCategories(t *testing.T) {
	if strings.Contains(DefectSystemPrompt, "{categor") {
		t.Fatal("unexpanded placeholder in defect contract")
	}
	if !strings.Contains(DefectSystemPrompt, "hardware, software, design, durability, performance, safety, value") {
		t.Error("expected the readable category list")
	}
	if !strings.Contains(DefectSystemPrompt, `"category": "hardware|software|design|durability|performance|safety|value"`) {
		t.Error("expected the category enum in the JSON shape")
	}
	for _, c := range model.DefectCategories() {
		if model.ParseDefectCategory(string(c)) != c {
			t.Errorf("category %q does not round-trip through ParseDefectCategory", c)
		}
	}
}
