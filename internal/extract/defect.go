// Package extract turns unstructured inputs into normalized domain records:
// defects from reviews, scenario warnings, history events and spec issues.
package extract

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/naysayer/internal/fixture"
	"github.com/ppiankov/naysayer/internal/llm"
	"github.com/ppiankov/naysayer/internal/model"
)

// DefaultMaxReviews caps the reviews sent to the backend in one call
const DefaultMaxReviews = 100

// Defect defaults for fields the model left out
const (
	defaultSeverity  = 5
	defaultFrequency = 1
)

// DefectResult is the outcome of one defect extraction
type DefectResult struct {
	Defects       []model.Defect
	NoiseFiltered int
	FromFixture   bool // Demo table was used instead of the backend
}

// DefectExtractor extracts product defects from raw reviews
type DefectExtractor struct {
	backend    llm.Completer
	tables     *fixture.Tables
	maxReviews int
	logger     logrus.FieldLogger
}

// NewDefectExtractor creates a new defect extractor.
// A nil backend always serves the demo tables.
func NewDefectExtractor(backend llm.Completer, tables *fixture.Tables, maxReviews int, logger logrus.FieldLogger) *DefectExtractor {
	if maxReviews <= 0 {
		maxReviews = DefaultMaxReviews
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DefectExtractor{
		backend:    backend,
		tables:     tables,
		maxReviews: maxReviews,
		logger:     logger,
	}
}

// Extract returns normalized defects and the noise-filtered count.
// Backend errors are returned; unparseable output yields an empty result.
func (e *DefectExtractor) Extract(ctx context.Context, product string, reviews []string) (DefectResult, error) {
	if len(reviews) == 0 || e.backend == nil {
		return e.Demo(product), nil
	}

	raw, err := e.backend.Complete(ctx, llm.DefectSystemPrompt, llm.DefectPrompt(product, reviews, e.maxReviews))
	if err != nil {
		return DefectResult{}, err
	}

	obj := llm.ParseResponse(raw)
	if len(obj) == 0 {
		e.logger.WithField("product", product).Warn("Defect extraction returned no parseable object")
		return DefectResult{Defects: []model.Defect{}}, nil
	}

	defects := DecodeDefects(obj)

	noise, ok := llm.Int(obj, "noise_filtered", "noise")
	if !ok || noise < 0 {
		noise = DerivedNoise(len(reviews), defects)
	}

	return DefectResult{Defects: defects, NoiseFiltered: noise}, nil
}

// Demo returns the demo table entry for a product
func (e *DefectExtractor) Demo(product string) DefectResult {
	set, _ := e.tables.Defects(product)

	defects := make([]model.Defect, 0, len(set.Defects))
	for _, d := range set.Defects {
		defects = append(defects, model.NormalizeDefect(d))
	}

	return DefectResult{
		Defects:       defects,
		NoiseFiltered: set.NoiseFiltered,
		FromFixture:   true,
	}
}

// DecodeDefects reads the "defects" list of a parsed model response.
// Entries without a description are dropped; the rest are normalized.
func DecodeDefects(obj map[string]any) []model.Defect {
	items := llm.Objects(obj, "defects")
	defects := make([]model.Defect, 0, len(items))

	for _, item := range items {
		description := llm.String(item, "description", "issue")
		if description == "" {
			continue
		}

		severity, ok := llm.Int(item, "severity")
		if !ok {
			severity = defaultSeverity
		}
		frequency, ok := llm.Int(item, "frequency", "count")
		if !ok {
			frequency = defaultFrequency
		}

		defects = append(defects, model.NormalizeDefect(model.Defect{
			Category:    model.DefectCategory(llm.String(item, "category")),
			Description: description,
			Severity:    severity,
			Frequency:   frequency,
			Quotes:      llm.Strings(item, "quotes", "original_quotes"),
		}))
	}

	return defects
}

// DerivedNoise estimates the noise count as reviews not accounted for by defect mentions
func DerivedNoise(reviewCount int, defects []model.Defect) int {
	mentioned := 0
	for _, d := range defects {
		mentioned += d.Frequency
	}
	return max(0, reviewCount-mentioned)
}
