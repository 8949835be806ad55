package extract

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/naysayer/internal/fixture"
	"github.com/ppiankov/naysayer/internal/llm"
	"github.com/ppiankov/naysayer/internal/model"
)

// NoHistoryEvent is the placeholder for products with no known incidents
func NoHistoryEvent() model.HistoryEvent {
	return model.HistoryEvent{
		EventType:     model.EventBrandHistory,
		Description:   "No known issues were found for this product or brand. Keep an eye on recent owner feedback.",
		Source:        "Aggregated search results",
		RelatedModels: []string{},
	}
}

// HistoryExtractor looks up recalls, defects, rebrands and brand history
type HistoryExtractor struct {
	backend llm.Completer
	tables  *fixture.Tables
	logger  logrus.FieldLogger
}

// NewHistoryExtractor creates a new history extractor.
// A nil backend serves the demo tables.
func NewHistoryExtractor(backend llm.Completer, tables *fixture.Tables, logger logrus.FieldLogger) *HistoryExtractor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HistoryExtractor{backend: backend, tables: tables, logger: logger}
}

// Extract returns normalized history events; it always returns at least one event
func (e *HistoryExtractor) Extract(ctx context.Context, product, brand string) []model.HistoryEvent {
	if e.backend != nil {
		raw, err := e.backend.Complete(ctx, llm.HistorySystemPrompt, llm.HistoryPrompt(product, brand))
		if err != nil {
			e.logger.WithError(err).WithField("product", product).Warn("History backend failed, using demo tables")
		} else if events := e.decode(llm.ParseResponse(raw), product); len(events) > 0 {
			return events
		}
	}

	return e.Demo(product, brand)
}

// Demo returns the demo table entry, or the no-history placeholder
func (e *HistoryExtractor) Demo(product, brand string) []model.HistoryEvent {
	text := strings.TrimSpace(product + " " + brand)

	events, ok := e.tables.History(text)
	if !ok {
		return []model.HistoryEvent{NoHistoryEvent()}
	}

	out := make([]model.HistoryEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, model.NormalizeHistoryEvent(ev))
	}
	return out
}

func (e *HistoryExtractor) decode(obj map[string]any, product string) []model.HistoryEvent {
	items := llm.Objects(obj, "events", "history_events", "history")
	events := make([]model.HistoryEvent, 0, len(items))

	for _, item := range items {
		description := llm.String(item, "description")
		if description == "" {
			continue
		}

		rawType := llm.String(item, "event_type", "type")
		eventType, known := model.ParseEventType(rawType)
		if !known {
			e.logger.WithFields(logrus.Fields{
				"product":    product,
				"event_type": rawType,
			}).Debug("Unknown history event type, recording as brand_history")
		}

		date := llm.String(item, "date", "event_date")
		if strings.EqualFold(date, "null") {
			date = ""
		}

		events = append(events, model.NormalizeHistoryEvent(model.HistoryEvent{
			EventType:     eventType,
			Date:          date,
			Description:   description,
			Source:        llm.String(item, "source", "source_url"),
			RelatedModels: llm.Strings(item, "related_models"),
		}))
	}

	return events
}
