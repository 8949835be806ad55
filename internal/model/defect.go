package model

import "strings"

// Defect is a product problem extracted from review text
type Defect struct {
	Category    DefectCategory `json:"category" yaml:"category"`
	Description string         `json:"description" yaml:"description"`
	Severity    int            `json:"severity" yaml:"severity"`   // 1-10
	Frequency   int            `json:"frequency" yaml:"frequency"` // Number of mentions, >= 1
	Quotes      []string       `json:"quotes" yaml:"quotes"`       // Original review snippets, at most MaxQuotes
}

// DefectCategory classifies a defect
type DefectCategory string

const (
	CategoryHardware    DefectCategory = "hardware"    // Broken parts, noise, overheating
	CategorySoftware    DefectCategory = "software"    // Firmware, app crashes, lag
	CategoryDesign      DefectCategory = "design"      // Structure, ergonomics
	CategoryDurability  DefectCategory = "durability"  // Wear, aging materials
	CategoryPerformance DefectCategory = "performance" // Overstated specs, weak output
	CategorySafety      DefectCategory = "safety"      // Overheating, leakage, harmful materials
	CategoryValue       DefectCategory = "value"       // Price/performance
)

// Defect limits
const (
	MinSeverity  = 1
	MaxSeverity  = 10
	MinFrequency = 1
	MaxFrequency = 100000
	MaxQuotes    = 5
)

// DefectCategories lists every category in display order
func DefectCategories() []DefectCategory {
	return []DefectCategory{
		CategoryHardware,
		CategorySoftware,
		CategoryDesign,
		CategoryDurability,
		CategoryPerformance,
		CategorySafety,
		CategoryValue,
	}
}

// ParseDefectCategory maps a raw tag to a category.
// Unknown or empty tags collapse to CategoryDesign.
func ParseDefectCategory(raw string) DefectCategory {
	switch DefectCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryHardware:
		return CategoryHardware
	case CategorySoftware:
		return CategorySoftware
	case CategoryDesign:
		return CategoryDesign
	case CategoryDurability:
		return CategoryDurability
	case CategoryPerformance:
		return CategoryPerformance
	case CategorySafety:
		return CategorySafety
	case CategoryValue:
		return CategoryValue
	default:
		return CategoryDesign
	}
}

// Label returns the heatmap dimension label for the category
func (c DefectCategory) Label() string {
	switch c {
	case CategoryHardware:
		return "Hardware failure"
	case CategorySoftware:
		return "Software bugs"
	case CategoryDesign:
		return "Design flaws"
	case CategoryDurability:
		return "Durability"
	case CategoryPerformance:
		return "Performance"
	case CategorySafety:
		return "Safety hazards"
	case CategoryValue:
		return "Value for money"
	default:
		return string(c)
	}
}

// NormalizeDefect clamps severity to [1,10], frequency to [1,MaxFrequency], collapses
// unknown categories and keeps at most MaxQuotes quotes.
// Normalizing an already normalized defect returns an identical defect.
func NormalizeDefect(d Defect) Defect {
	out := Defect{
		Category:    ParseDefectCategory(string(d.Category)),
		Description: strings.TrimSpace(d.Description),
		Severity:    ClampInt(d.Severity, MinSeverity, MaxSeverity),
		Frequency:   ClampInt(d.Frequency, MinFrequency, MaxFrequency),
	}

	quotes := d.Quotes
	if len(quotes) > MaxQuotes {
		quotes = quotes[:MaxQuotes]
	}
	out.Quotes = append(make([]string, 0, len(quotes)), quotes...)

	return out
}

// ClampInt bounds v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
