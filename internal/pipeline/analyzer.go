// Package pipeline runs product analyses end to end: collection, defect
// extraction, report generation and the demo fallback.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/naysayer/internal/extract"
	"github.com/ppiankov/naysayer/internal/fixture"
	"github.com/ppiankov/naysayer/internal/llm"
	"github.com/ppiankov/naysayer/internal/model"
	"github.com/ppiankov/naysayer/internal/score"
	"github.com/ppiankov/naysayer/internal/source"
)

// Stage is a step of one analysis
type Stage string

const (
	StageCollecting        Stage = "collecting"
	StageExtractingDefects Stage = "extracting_defects"
	StageGeneratingReport  Stage = "generating_report"
	StageBuildingResponse  Stage = "building_response"
	StageDone              Stage = "done"
	StageDemoFallback      Stage = "demo_fallback"
)

// Options wires an Analyzer. Every field is optional.
type Options struct {
	Backend llm.Backend         // nil runs every analysis in demo mode
	Reviews source.ReviewSource // Defaults to the fixture review table
	Specs   source.SpecSource   // Defaults to the fixture spec table
	Tables  *fixture.Tables     // Defaults to the embedded tables
	Config  *model.Config       // Defaults to model.DefaultConfig()
	Logger  logrus.FieldLogger

	// OnStage is called as an analysis enters each stage
	OnStage func(requestID string, stage Stage)

	// Now and NewID are replaceable for deterministic tests
	Now   func() time.Time
	NewID func() string
}

// Analyzer orchestrates product analyses
type Analyzer struct {
	backend    llm.Backend
	reviews    source.ReviewSource
	specs      source.SpecSource
	tables     *fixture.Tables
	defects    *extract.DefectExtractor
	scenarios  *extract.ScenarioExtractor
	history    *extract.HistoryExtractor
	aggregator *score.Aggregator
	convo      *Conversation
	config     *model.Config
	logger     logrus.FieldLogger
	onStage    func(string, Stage)
	now        func() time.Time
	newID      func() string
}

// New creates a new analyzer
func New(opts Options) *Analyzer {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	tables := opts.Tables
	if tables == nil {
		tables = fixture.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	a := &Analyzer{
		backend:    opts.Backend,
		reviews:    opts.Reviews,
		specs:      opts.Specs,
		tables:     tables,
		aggregator: score.NewAggregator(tables),
		convo:      NewConversation(cfg.Analysis.HistorySize),
		config:     cfg,
		logger:     logger,
		onStage:    opts.OnStage,
		now:        opts.Now,
		newID:      opts.NewID,
	}

	if a.reviews == nil {
		a.reviews = source.NewFixtureReviews(tables)
	}
	if a.specs == nil {
		a.specs = source.NewFixtureSpecs(tables)
	}
	if a.now == nil {
		a.now = func() time.Time { return time.Now().UTC() }
	}
	if a.newID == nil {
		a.newID = uuid.NewString
	}

	// Extractors only see the backend as a Completer; a nil Backend stays nil
	var completer llm.Completer
	if opts.Backend != nil {
		completer = opts.Backend
	}
	a.defects = extract.NewDefectExtractor(completer, tables, cfg.Analysis.MaxReviews, logger)
	a.scenarios = extract.NewScenarioExtractor(completer, logger)
	a.history = extract.NewHistoryExtractor(completer, tables, logger)

	return a
}

// Conversation returns the shared conversation buffer
func (a *Analyzer) Conversation() *Conversation {
	return a.convo
}

// Live reports whether a reasoning backend is configured
func (a *Analyzer) Live() bool {
	return a.backend != nil
}

// BackendName returns the configured backend name, or "demo"
func (a *Analyzer) BackendName() string {
	if a.backend == nil {
		return string(model.ModeDemo)
	}
	return a.backend.Name()
}

// Analyze produces a risk report for one product.
// Only an invalid request is returned as an error; every other failure
// degrades to a partial or demo report.
func (a *Analyzer) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = normalizeRequest(req)

	requestID := a.newID()
	log := a.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"product":    req.ProductName,
	})

	a.convo.Append(model.Message{Role: model.RoleUser, Content: RequestText(req)})

	report, err := a.run(ctx, req, requestID, log)
	if err != nil {
		log.WithError(err).Error("Analysis failed, serving demo report")
		report = nil
	}
	if report == nil {
		report = a.demo(req, requestID, log)
	}

	a.enter(requestID, StageDone, log)
	a.convo.Append(model.Message{Role: model.RoleAssistant, Content: report.Summary})

	return report, nil
}

// run executes the live stages. A nil report without error means the
// backend cannot be used and the caller should serve the demo report.
func (a *Analyzer) run(ctx context.Context, req model.AnalysisRequest, requestID string, log logrus.FieldLogger) (report *model.AnalysisReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if a.backend == nil {
		log.Debug("No reasoning backend configured")
		return nil, nil
	}
	if !a.backend.Available(ctx) {
		log.WithField("backend", a.backend.Name()).Warn("Reasoning backend unavailable")
		return nil, nil
	}

	// 1. Collect reviews, specs, history and scenario warnings concurrently
	a.enter(requestID, StageCollecting, log)
	collected, err := a.collect(ctx, req, log)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	// 2. Extract defects
	a.enter(requestID, StageExtractingDefects, log)
	defects, err := a.defects.Extract(ctx, req.ProductName, collected.reviews)
	if err != nil {
		log.WithError(err).Warn("Defect extraction failed, continuing without defects")
		defects = extract.DefectResult{Defects: []model.Defect{}}
	}

	// 3. Spec analysis
	issues := extract.AnalyzeSpecs(collected.specs)

	// 4. Generate the report verdict
	a.enter(requestID, StageGeneratingReport, log)
	in := score.Input{
		ProductName: req.ProductName,
		Defects:     defects.Defects,
		Warnings:    collected.warnings,
		Events:      collected.events,
	}
	proposal := a.propose(ctx, req, in, issues, log)
	result := a.aggregator.Aggregate(in, proposal)
	if len(result.Fallbacks) > 0 {
		log.WithField("fields", result.Fallbacks).Debug("Report fields replaced by deterministic values")
	}

	// 5. Build response
	a.enter(requestID, StageBuildingResponse, log)
	return a.build(req, requestID, model.ModeLive, defects, in, result, issues), nil
}

type collection struct {
	reviews  []string
	specs    map[string]string
	warnings []model.ScenarioWarning
	events   []model.HistoryEvent
}

// collect fans out to the collectors. Collector failures are absorbed into
// empty values; only a panic inside a collector is returned.
func (a *Analyzer) collect(ctx context.Context, req model.AnalysisRequest, log logrus.FieldLogger) (*collection, error) {
	c := &collection{}
	g, gctx := errgroup.WithContext(ctx)

	goSafe(g, "reviews", func() error {
		reviews, err := a.reviews.Search(gctx, source.ReviewQuery{
			Product:  req.ProductName,
			Platform: a.config.Analysis.ReviewPlatform,
			Polarity: a.config.Analysis.ReviewPolarity,
			Limit:    a.config.Analysis.MaxReviews,
		})
		if err != nil {
			log.WithError(err).Warn("Review collection failed")
			reviews = []string{}
		}
		c.reviews = reviews
		return nil
	})

	// Scenario warnings need the spec map, so they share a goroutine
	goSafe(g, "specs", func() error {
		specs, err := a.specs.Lookup(gctx, req.ProductName)
		if err != nil {
			log.WithError(err).Warn("Spec lookup failed")
			specs = source.UnknownSpecs()
		}
		c.specs = specs
		c.warnings = a.scenarios.Extract(gctx, req.ProductName, req.UserScenario, specs)
		return nil
	})

	goSafe(g, "history", func() error {
		c.events = a.history.Extract(gctx, req.ProductName, req.Brand)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// goSafe runs fn in the group, converting a panic into the group's error
func goSafe(g *errgroup.Group, name string, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s collector panic: %v", name, r)
			}
		}()
		return fn()
	})
}

// propose asks the backend for a verdict. Any failure yields nil, which
// makes the aggregator use deterministic values for every field.
func (a *Analyzer) propose(ctx context.Context, req model.AnalysisRequest, in score.Input, issues []string, log logrus.FieldLogger) *score.Proposal {
	raw, err := a.backend.Complete(ctx, llm.ReportSystemPrompt, llm.ReportPrompt(req, in.Defects, in.Warnings, in.Events, issues))
	if err != nil {
		log.WithError(err).Warn("Report generation failed, using deterministic scoring")
		return nil
	}

	obj := llm.ParseResponse(raw)
	if len(obj) == 0 {
		log.Warn("Report response had no parseable object, using deterministic scoring")
		return nil
	}

	p := score.ProposalFromResponse(obj)
	return &p
}

// demo builds the fixture-backed report with deterministic scoring
func (a *Analyzer) demo(req model.AnalysisRequest, requestID string, log logrus.FieldLogger) *model.AnalysisReport {
	a.enter(requestID, StageDemoFallback, log)

	specs, ok := a.tables.Specs(req.ProductName)
	if !ok {
		specs = source.UnknownSpecs()
	}

	defects := a.defects.Demo(req.ProductName)
	in := score.Input{
		ProductName: req.ProductName,
		Defects:     defects.Defects,
		Warnings:    a.scenarios.Rules(req.ProductName, req.UserScenario, specs),
		Events:      a.history.Demo(req.ProductName, req.Brand),
	}
	issues := extract.AnalyzeSpecs(specs)
	result := a.aggregator.Aggregate(in, nil)

	a.enter(requestID, StageBuildingResponse, log)
	return a.build(req, requestID, model.ModeDemo, defects, in, result, issues)
}

// build normalizes every entity and assembles the final report
func (a *Analyzer) build(req model.AnalysisRequest, requestID string, mode model.Mode, defects extract.DefectResult, in score.Input, result score.Result, issues []string) *model.AnalysisReport {
	report := &model.AnalysisReport{
		RequestID:        requestID,
		ProductName:      req.ProductName,
		Mode:             mode,
		GeneratedAt:      a.now(),
		RiskLevel:        result.Level,
		RiskScore:        result.Score,
		Summary:          result.Summary,
		Defects:          make([]model.Defect, 0, len(in.Defects)),
		NoiseFiltered:    max(defects.NoiseFiltered, 0),
		ScenarioWarnings: make([]model.ScenarioWarning, 0, len(in.Warnings)),
		HistoryEvents:    make([]model.HistoryEvent, 0, len(in.Events)),
		Heatmap:          result.Heatmap,
		Alternatives:     make([]model.AlternativeProduct, 0, len(result.Alternatives)),
		PotentialIssues:  issues,
		DataSources:      append([]string{}, a.config.Analysis.DataSources...),
	}

	for _, d := range in.Defects {
		report.Defects = append(report.Defects, model.NormalizeDefect(d))
	}
	for _, w := range in.Warnings {
		report.ScenarioWarnings = append(report.ScenarioWarnings, model.NormalizeScenarioWarning(w))
	}
	for _, e := range in.Events {
		report.HistoryEvents = append(report.HistoryEvents, model.NormalizeHistoryEvent(e))
	}
	for _, alt := range result.Alternatives {
		report.Alternatives = append(report.Alternatives, model.NormalizeAlternative(alt))
	}
	if report.Heatmap == nil {
		report.Heatmap = []model.HeatmapEntry{}
	}

	report.AnalyzedReviewsCount = report.NoiseFiltered
	for _, d := range report.Defects {
		report.AnalyzedReviewsCount += d.Frequency
	}

	return report
}

func (a *Analyzer) enter(requestID string, stage Stage, log logrus.FieldLogger) {
	log.WithField("stage", stage).Debug("Entering stage")
	if a.onStage != nil {
		a.onStage(requestID, stage)
	}
}

// RequestText renders a request as the user's conversation message
func RequestText(req model.AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("Analyze ")
	b.WriteString(req.ProductName)
	if req.Brand != "" {
		fmt.Fprintf(&b, " (brand: %s)", req.Brand)
	}
	if req.UserScenario != "" {
		fmt.Fprintf(&b, "; scenario: %s", req.UserScenario)
	}
	if req.Budget != "" {
		fmt.Fprintf(&b, "; budget: %s", req.Budget)
	}
	if len(req.Priorities) > 0 {
		fmt.Fprintf(&b, "; priorities: %s", strings.Join(req.Priorities, ", "))
	}
	return b.String()
}

func normalizeRequest(req model.AnalysisRequest) model.AnalysisRequest {
	priorities := make([]string, 0, len(req.Priorities))
	for _, p := range req.Priorities {
		if p = strings.TrimSpace(p); p != "" {
			priorities = append(priorities, p)
		}
	}
	return model.AnalysisRequest{
		ProductName:  strings.TrimSpace(req.ProductName),
		UserScenario: strings.TrimSpace(req.UserScenario),
		Budget:       strings.TrimSpace(req.Budget),
		Priorities:   priorities,
		Brand:        strings.TrimSpace(req.Brand),
	}
}
