package extract

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/naysayer/internal/llm"
	"github.com/ppiankov/naysayer/internal/model"
)

// GenericWarning is returned when the buyer did not describe a usage scenario
func GenericWarning() model.ScenarioWarning {
	return model.ScenarioWarning{
		Scenario:         "No usage scenario provided",
		Spec:             "",
		Warning:          "Without a usage scenario only general risks can be assessed",
		ImpactPercentage: 0,
		Recommendation:   "Describe where and how you will use the product (home layout, pets, lighting, daily hours) for scenario-specific warnings",
	}
}

// ScenarioExtractor predicts conflicts between the product and the buyer's environment
type ScenarioExtractor struct {
	backend llm.Completer
	logger  logrus.FieldLogger
}

// NewScenarioExtractor creates a new scenario extractor.
// A nil backend uses the rule tables only.
func NewScenarioExtractor(backend llm.Completer, logger logrus.FieldLogger) *ScenarioExtractor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ScenarioExtractor{backend: backend, logger: logger}
}

// Extract returns scenario warnings. It never fails: an empty scenario
// yields exactly one generic warning, and backend trouble falls back to
// the rule tables. Zero warnings is a valid result.
func (e *ScenarioExtractor) Extract(ctx context.Context, product, scenario string, specs map[string]string) []model.ScenarioWarning {
	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return []model.ScenarioWarning{GenericWarning()}
	}

	if e.backend != nil {
		warnings, err := e.extractWithBackend(ctx, product, scenario, specs)
		if err == nil && len(warnings) > 0 {
			return warnings
		}
		if err != nil {
			e.logger.WithError(err).WithField("product", product).Warn("Scenario backend failed, using rule tables")
		}
	}

	return ruleWarnings(product, scenario, specs)
}

// Rules evaluates only the rule tables
func (e *ScenarioExtractor) Rules(product, scenario string, specs map[string]string) []model.ScenarioWarning {
	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return []model.ScenarioWarning{GenericWarning()}
	}
	return ruleWarnings(product, scenario, specs)
}

func (e *ScenarioExtractor) extractWithBackend(ctx context.Context, product, scenario string, specs map[string]string) ([]model.ScenarioWarning, error) {
	raw, err := e.backend.Complete(ctx, llm.ScenarioSystemPrompt, llm.ScenarioPrompt(product, scenario, specs))
	if err != nil {
		return nil, err
	}
	return DecodeWarnings(llm.ParseResponse(raw), scenario), nil
}

// DecodeWarnings reads the "warnings" list of a parsed model response.
// Entries without warning text are dropped.
func DecodeWarnings(obj map[string]any, scenario string) []model.ScenarioWarning {
	items := llm.Objects(obj, "warnings")
	warnings := make([]model.ScenarioWarning, 0, len(items))

	for _, item := range items {
		text := llm.String(item, "warning", "warning_message")
		if text == "" {
			continue
		}

		impact, _ := llm.Int(item, "impact_percentage", "impact")
		itemScenario := llm.String(item, "scenario", "user_scenario")
		if itemScenario == "" {
			itemScenario = scenario
		}

		warnings = append(warnings, model.NormalizeScenarioWarning(model.ScenarioWarning{
			Scenario:         itemScenario,
			Spec:             llm.String(item, "spec", "product_spec"),
			Warning:          text,
			ImpactPercentage: impact,
			Recommendation:   llm.String(item, "recommendation"),
		}))
	}

	return warnings
}
