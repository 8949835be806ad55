package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/naysayer/internal/model"
)

// DefectSystemPrompt is the output contract for defect extraction.
// The category list comes from model.DefectCategories.
var DefectSystemPrompt = strings.NewReplacer(
	"{categories}", categoryList(", "),
	"{category_enum}", categoryList("|"),
).Replace(defectSystemTemplate)

const defectSystemTemplate = `You are a product defect analyst. You read raw negative reviews and keep only real problems with the product itself.

Ignore noise:
1. Logistics: slow shipping, damaged parcel, wrong address
2. Customer service: rude support, slow refund, exchange refused
3. Pure venting with no concrete problem ("garbage", "never again")
4. Subjective taste: color, "bigger than I thought"
5. Price changes: "price dropped after I bought it"
6. Complaints about fake reviews

Keep real defects, one of these categories:
{categories}

Severity scale:
1-3 minor, core function unaffected
4-6 noticeably hurts the experience
7-8 breaks a core function
9-10 safety hazard or product basically unusable

Answer with a single JSON object and nothing else:
{
  "defects": [
    {
      "category": "{category_enum}",
      "description": "short description of the defect",
      "severity": 1-10,
      "frequency": number of reviews mentioning it,
      "quotes": ["verbatim excerpt", "verbatim excerpt"]
    }
  ],
  "noise_filtered": number of reviews discarded as noise
}

If there are no real defects, answer {"defects": [], "noise_filtered": N}.`

func categoryList(sep string) string {
	categories := model.DefectCategories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, sep)
}

// ScenarioSystemPrompt is the output contract for scenario conflict prediction
const ScenarioSystemPrompt = `You predict where a product will hit a wall in the buyer's actual usage scenario, based on physical and technical constraints of its specs.

Typical conflicts:
- Environment: projector brightness vs ambient light, operating temperature, room size, noise tolerance
- Intensity: continuous runtime vs cooling, daily use vs durability, load vs power
- Compatibility: interfaces, protocols, network coverage, availability of consumables

Only report warnings backed by a physical or technical reason. Estimate impact_percentage from that reason. Recommendations must be concrete; "don't buy it" is not a recommendation.

Answer with a single JSON object and nothing else:
{
  "warnings": [
    {
      "scenario": "the part of the scenario that conflicts",
      "spec": "the relevant spec value",
      "warning": "why it will hit a wall",
      "impact_percentage": 0-100,
      "recommendation": "specific advice"
    }
  ]
}

If there is no clear conflict, answer {"warnings": []}.`

// HistorySystemPrompt is the output contract for brand and product history
const HistorySystemPrompt = `You investigate the track record of a product and its brand.

Event types:
- recall: official recalls, batch returns caused by quality problems
- defect: quality problems exposed by media, collective complaints, regulator notices
- rebrand: the product is a reshelled version of a problematic model, or a white-label ODM design
- brand_history: past quality incidents, after-sales scandals, false advertising penalties

Only report documented events and prefer the last three years. Mark speculation as such.

Answer with a single JSON object and nothing else:
{
  "events": [
    {
      "event_type": "recall|defect|rebrand|brand_history",
      "date": "YYYY-MM or YYYY or empty",
      "description": "what happened",
      "source": "where this is documented",
      "related_models": ["model", "model"]
    }
  ]
}

If nothing is found, answer {"events": []}.`

// ReportSystemPrompt is the output contract for the final risk verdict
const ReportSystemPrompt = `You are a consumer advocate writing the final pre-purchase risk verdict from structured findings.

Risk levels by score:
0-19 safe, 20-39 caution, 40-59 warning, 60-79 danger, 80-100 run

Suggest up to three alternative products that avoid the main defects.

Answer with a single JSON object and nothing else:
{
  "risk_score": integer 0-100,
  "risk_level": "safe|caution|warning|danger|run",
  "summary": "one or two sentences in plain language",
  "alternatives": [
    {
      "name": "product name",
      "price_range": "price range",
      "advantage": "why it is better",
      "solved_defects": ["defect it avoids"],
      "link": "optional URL"
    }
  ]
}`

// DefectPrompt builds the user instruction for defect extraction
func DefectPrompt(product string, reviews []string, maxReviews int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Product: %s\n\n", product)
	fmt.Fprintf(&b, "Collected reviews (%d total):\n\n", len(reviews))

	for i, review := range reviews {
		if maxReviews > 0 && i >= maxReviews {
			fmt.Fprintf(&b, "... (%d more not shown)\n", len(reviews)-maxReviews)
			break
		}
		fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(review))
	}

	b.WriteString("\nExtract the real product defects from these reviews.\n")
	return b.String()
}

// ScenarioPrompt builds the user instruction for scenario prediction
func ScenarioPrompt(product, scenario string, specs map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Product: %s\n\n", product)
	b.WriteString("Specs:\n")
	writeSpecs(&b, specs)
	fmt.Fprintf(&b, "\nBuyer's scenario:\n%s\n\n", scenario)
	b.WriteString("Predict where this product will hit a wall in this scenario.\n")

	return b.String()
}

// HistoryPrompt builds the user instruction for history investigation
func HistoryPrompt(product, brand string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Product: %s\n", product)
	if brand != "" {
		fmt.Fprintf(&b, "Brand: %s\n", brand)
	}
	b.WriteString("\nList recalls, known defects, rebrands and brand history relevant to this product.\n")

	return b.String()
}

// ReportPrompt builds the user instruction for the final verdict
func ReportPrompt(req model.AnalysisRequest, defects []model.Defect, warnings []model.ScenarioWarning, events []model.HistoryEvent, issues []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Product: %s\n", req.ProductName)
	if req.UserScenario != "" {
		fmt.Fprintf(&b, "Scenario: %s\n", req.UserScenario)
	}
	if req.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s\n", req.Budget)
	}
	if len(req.Priorities) > 0 {
		fmt.Fprintf(&b, "Priorities: %s\n", strings.Join(req.Priorities, ", "))
	}

	b.WriteString("\nDefects:\n")
	if len(defects) == 0 {
		b.WriteString("- none found\n")
	}
	for _, d := range defects {
		fmt.Fprintf(&b, "- [%s] %s (severity %d, mentioned %d times)\n", d.Category, d.Description, d.Severity, d.Frequency)
	}

	b.WriteString("\nScenario warnings:\n")
	if len(warnings) == 0 {
		b.WriteString("- none\n")
	}
	for _, w := range warnings {
		fmt.Fprintf(&b, "- %s (impact %d%%)\n", w.Warning, w.ImpactPercentage)
	}

	b.WriteString("\nHistory:\n")
	if len(events) == 0 {
		b.WriteString("- none\n")
	}
	for _, e := range events {
		fmt.Fprintf(&b, "- [%s] %s %s\n", e.EventType, e.Date, e.Description)
	}

	if len(issues) > 0 {
		b.WriteString("\nPotential issues from specs:\n")
		for _, issue := range issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	b.WriteString("\nWrite the final risk verdict.\n")
	return b.String()
}

func writeSpecs(b *strings.Builder, specs map[string]string) {
	if len(specs) == 0 {
		b.WriteString("- unknown\n")
		return
	}

	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %s\n", k, specs[k])
	}
}
