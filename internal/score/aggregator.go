package score

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/naysayer/internal/fixture"
	"github.com/ppiankov/naysayer/internal/llm"
	"github.com/ppiankov/naysayer/internal/model"
)

// Scoring weights
const (
	defectDivisor = 10.0 // severity × frequency / 10 per defect
	impactWeight  = 0.3  // per scenario impact percentage point
)

// eventWeights is the fixed contribution of each history event type
var eventWeights = map[model.EventType]float64{
	model.EventRecall:       20,
	model.EventDefect:       15,
	model.EventRebrand:      10,
	model.EventBrandHistory: 5,
}

// Input is everything the aggregator scores
type Input struct {
	ProductName string
	Defects     []model.Defect
	Warnings    []model.ScenarioWarning
	Events      []model.HistoryEvent
}

// Proposal is the backend's suggested verdict. Any field may be missing or invalid.
type Proposal struct {
	Score        *int // nil when absent or not an integer in [0,100]
	Level        string
	Summary      string
	Alternatives []model.AlternativeProduct
}

// Result is the final verdict
type Result struct {
	Score        int
	Level        model.RiskLevel
	Summary      string
	Heatmap      []model.HeatmapEntry
	Alternatives []model.AlternativeProduct

	// Fallbacks names the proposal fields replaced by deterministic values
	Fallbacks []string
}

// Aggregator combines extracted findings into a risk verdict
type Aggregator struct {
	tables *fixture.Tables
}

// NewAggregator creates a new aggregator
func NewAggregator(tables *fixture.Tables) *Aggregator {
	return &Aggregator{tables: tables}
}

// Score computes the deterministic risk score in [0,100]
func (a *Aggregator) Score(in Input) int {
	total := 0.0

	// 1. Defects: severity × frequency / 10
	for _, d := range in.Defects {
		total += float64(d.Severity) * float64(d.Frequency) / defectDivisor
	}

	// 2. Scenario conflicts: impact × 0.3
	for _, w := range in.Warnings {
		total += float64(w.ImpactPercentage) * impactWeight
	}

	// 3. History: fixed weight per event type
	for _, e := range in.Events {
		eventType, _ := model.ParseEventType(string(e.EventType))
		total += eventWeights[eventType]
	}

	total = math.Max(model.MinScore, math.Min(model.MaxScore, total))
	return int(math.Round(total))
}

// Aggregate produces the final verdict, keeping each valid proposal field
// and replacing invalid or missing ones with deterministic values.
// A nil proposal yields a fully deterministic result.
func (a *Aggregator) Aggregate(in Input, p *Proposal) Result {
	if p == nil {
		p = &Proposal{}
	}

	var res Result

	// 1. Score
	if p.Score != nil && *p.Score >= model.MinScore && *p.Score <= model.MaxScore {
		res.Score = *p.Score
	} else {
		res.Score = a.Score(in)
		res.Fallbacks = append(res.Fallbacks, "risk_score")
	}

	// 2. Level must agree with the final score's band
	band := model.LevelForScore(res.Score)
	if level, ok := model.ParseRiskLevel(p.Level); ok && level == band {
		res.Level = level
	} else {
		res.Level = band
		res.Fallbacks = append(res.Fallbacks, "risk_level")
	}

	// 3. Summary
	if summary := strings.TrimSpace(p.Summary); summary != "" {
		res.Summary = summary
	} else {
		res.Summary = Summary(in.ProductName, res.Level, in.Defects)
		res.Fallbacks = append(res.Fallbacks, "summary")
	}

	// 4. Alternatives
	if alts := validAlternatives(p.Alternatives); len(alts) > 0 {
		res.Alternatives = alts
	} else {
		res.Alternatives = a.Alternatives(in.ProductName)
		res.Fallbacks = append(res.Fallbacks, "alternatives")
	}

	// 5. Heatmap is always derived from the defects
	res.Heatmap = Heatmap(in.Defects)

	return res
}

// Alternatives returns the alternatives table entry for a product
func (a *Aggregator) Alternatives(product string) []model.AlternativeProduct {
	alts := a.tables.Alternatives(product)
	out := make([]model.AlternativeProduct, 0, len(alts))
	for _, alt := range alts {
		out = append(out, model.NormalizeAlternative(alt))
	}
	return out
}

// validAlternatives keeps named entries only
func validAlternatives(alts []model.AlternativeProduct) []model.AlternativeProduct {
	var out []model.AlternativeProduct
	for _, alt := range alts {
		alt = model.NormalizeAlternative(alt)
		if alt.Name != "" {
			out = append(out, alt)
		}
	}
	return out
}

// Heatmap groups defects by category in first-seen order and sorts by
// complaint count, descending. Ties keep first-seen order.
func Heatmap(defects []model.Defect) []model.HeatmapEntry {
	type stats struct {
		count       int
		severitySum int
	}

	var order []model.DefectCategory
	byCategory := make(map[model.DefectCategory]*stats)
	total := 0

	for _, d := range defects {
		s, ok := byCategory[d.Category]
		if !ok {
			s = &stats{}
			byCategory[d.Category] = s
			order = append(order, d.Category)
		}
		s.count += d.Frequency
		s.severitySum += d.Severity * d.Frequency
		total += d.Frequency
	}

	heatmap := make([]model.HeatmapEntry, 0, len(order))
	for _, category := range order {
		s := byCategory[category]

		entry := model.HeatmapEntry{
			Dimension:      category.Label(),
			Category:       category,
			ComplaintCount: s.count,
		}
		if s.count > 0 {
			entry.SeverityAvg = round1(float64(s.severitySum) / float64(s.count))
		}
		if total > 0 {
			entry.Percentage = round1(float64(s.count) / float64(total) * 100)
		}
		heatmap = append(heatmap, entry)
	}

	sort.SliceStable(heatmap, func(i, j int) bool {
		return heatmap[i].ComplaintCount > heatmap[j].ComplaintCount
	})

	return heatmap
}

// Summary builds the canned one-line verdict for a level, naming the
// biggest complaint (highest severity × frequency, first wins on ties)
func Summary(product string, level model.RiskLevel, defects []model.Defect) string {
	var base string
	switch level {
	case model.RiskSafe:
		base = fmt.Sprintf("%q performs well overall with no major flaws found; it is safe to buy.", product)
	case model.RiskCaution:
		base = fmt.Sprintf("%q has some minor issues that do not affect its core function; know them before you buy.", product)
	case model.RiskWarning:
		base = fmt.Sprintf("%q has clear weak spots; compare it with similar products before deciding.", product)
	case model.RiskDanger:
		base = fmt.Sprintf("%q has many problems; unless you really need it, look at the alternatives.", product)
	default:
		base = fmt.Sprintf("%q has serious problems; walk away and pick something else.", product)
	}

	if len(defects) == 0 {
		return base
	}

	top := defects[0]
	for _, d := range defects[1:] {
		if d.Severity*d.Frequency > top.Severity*top.Frequency {
			top = d
		}
	}

	return base + " Biggest complaint: " + top.Description
}

// ProposalFromResponse reads a parsed report response into a Proposal
func ProposalFromResponse(obj map[string]any) Proposal {
	p := Proposal{
		Level:   llm.String(obj, "risk_level", "level"),
		Summary: llm.String(obj, "summary"),
	}

	if f, ok := llm.Number(obj, "risk_score", "score"); ok && f == math.Trunc(f) &&
		f >= model.MinScore && f <= model.MaxScore {
		score := int(f)
		p.Score = &score
	}

	for _, item := range llm.Objects(obj, "alternatives") {
		p.Alternatives = append(p.Alternatives, model.AlternativeProduct{
			Name:          llm.String(item, "name"),
			PriceRange:    llm.String(item, "price_range"),
			Advantage:     llm.String(item, "advantage"),
			SolvedDefects: llm.Strings(item, "solved_defects"),
			Link:          llm.String(item, "link"),
		})
	}

	return p
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
