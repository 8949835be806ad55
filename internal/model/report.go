package model

import (
	"strings"
	"time"
)

// AnalysisReport is the complete product risk report.
// It is built once per request and never updated in place.
type AnalysisReport struct {
	RequestID   string    `json:"request_id"`
	ProductName string    `json:"product_name"`
	Mode        Mode      `json:"mode"`         // live or demo
	GeneratedAt time.Time `json:"generated_at"` // When the report was assembled

	RiskLevel RiskLevel `json:"risk_level"`
	RiskScore int       `json:"risk_score"` // 0-100, higher is worse
	Summary   string    `json:"summary"`

	Defects          []Defect             `json:"defects"`
	NoiseFiltered    int                  `json:"noise_filtered"` // Reviews dropped as logistics/service/emotion noise
	ScenarioWarnings []ScenarioWarning    `json:"scenario_warnings"`
	HistoryEvents    []HistoryEvent       `json:"history_events"`
	Heatmap          []HeatmapEntry       `json:"heatmap"` // Derived from Defects
	Alternatives     []AlternativeProduct `json:"alternatives"`
	PotentialIssues  []string             `json:"potential_issues,omitempty"` // From spec analysis

	AnalyzedReviewsCount int      `json:"analyzed_reviews_count"`
	DataSources          []string `json:"data_sources"`
}

// Mode records which path produced the report
type Mode string

const (
	ModeLive Mode = "live" // Reasoning backend was consulted
	ModeDemo Mode = "demo" // Fixture data with deterministic scoring
)

// RiskLevel is the banded classification of a risk score
type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"    // [0,20)
	RiskCaution RiskLevel = "caution" // [20,40)
	RiskWarning RiskLevel = "warning" // [40,60)
	RiskDanger  RiskLevel = "danger"  // [60,80)
	RiskRun     RiskLevel = "run"     // [80,100]
)

// Score bounds
const (
	MinScore = 0
	MaxScore = 100
)

// LevelForScore maps a score to its band. Scores outside [0,100] are clamped first.
func LevelForScore(score int) RiskLevel {
	score = ClampInt(score, MinScore, MaxScore)
	switch {
	case score < 20:
		return RiskSafe
	case score < 40:
		return RiskCaution
	case score < 60:
		return RiskWarning
	case score < 80:
		return RiskDanger
	default:
		return RiskRun
	}
}

// ParseRiskLevel maps a raw tag to a risk level
func ParseRiskLevel(raw string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case RiskSafe:
		return RiskSafe, true
	case RiskCaution:
		return RiskCaution, true
	case RiskWarning:
		return RiskWarning, true
	case RiskDanger:
		return RiskDanger, true
	case RiskRun:
		return RiskRun, true
	default:
		return "", false
	}
}

// ScenarioWarning predicts where a product will fail in the user's environment
type ScenarioWarning struct {
	Scenario         string `json:"scenario" yaml:"scenario"`
	Spec             string `json:"spec" yaml:"spec"`
	Warning          string `json:"warning" yaml:"warning"`
	ImpactPercentage int    `json:"impact_percentage" yaml:"impact_percentage"` // 0-100
	Recommendation   string `json:"recommendation" yaml:"recommendation"`
}

// NormalizeScenarioWarning clamps the impact to [0,100]
func NormalizeScenarioWarning(w ScenarioWarning) ScenarioWarning {
	return ScenarioWarning{
		Scenario:         strings.TrimSpace(w.Scenario),
		Spec:             strings.TrimSpace(w.Spec),
		Warning:          strings.TrimSpace(w.Warning),
		ImpactPercentage: ClampInt(w.ImpactPercentage, 0, 100),
		Recommendation:   strings.TrimSpace(w.Recommendation),
	}
}

// HeatmapEntry is the per-category complaint aggregate.
// Always recomputed from the current defect list.
type HeatmapEntry struct {
	Dimension      string         `json:"dimension"`
	Category       DefectCategory `json:"category"`
	ComplaintCount int            `json:"complaint_count"`
	SeverityAvg    float64        `json:"severity_avg"` // Frequency-weighted, 1 decimal
	Percentage     float64        `json:"percentage"`   // Share of all complaints, 1 decimal
}

// AlternativeProduct is a recommended replacement
type AlternativeProduct struct {
	Name          string   `json:"name" yaml:"name"`
	PriceRange    string   `json:"price_range" yaml:"price_range"`
	Advantage     string   `json:"advantage" yaml:"advantage"`
	SolvedDefects []string `json:"solved_defects" yaml:"solved_defects"` // At most MaxSolvedDefects
	Link          string   `json:"link,omitempty" yaml:"link,omitempty"`
}

// MaxSolvedDefects bounds AlternativeProduct.SolvedDefects
const MaxSolvedDefects = 5

// NormalizeAlternative trims fields and keeps at most MaxSolvedDefects entries
func NormalizeAlternative(a AlternativeProduct) AlternativeProduct {
	solved := a.SolvedDefects
	if len(solved) > MaxSolvedDefects {
		solved = solved[:MaxSolvedDefects]
	}
	return AlternativeProduct{
		Name:          strings.TrimSpace(a.Name),
		PriceRange:    strings.TrimSpace(a.PriceRange),
		Advantage:     strings.TrimSpace(a.Advantage),
		SolvedDefects: append(make([]string, 0, len(solved)), solved...),
		Link:          strings.TrimSpace(a.Link),
	}
}
