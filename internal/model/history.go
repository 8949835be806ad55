package model

import (
	"sort"
	"strings"
)

// HistoryEvent is a past incident attached to a product or its brand
type HistoryEvent struct {
	EventType     EventType `json:"event_type" yaml:"event_type"`
	Date          string    `json:"date,omitempty" yaml:"date,omitempty"` // YYYY, YYYY-MM or empty when unknown
	Description   string    `json:"description" yaml:"description"`
	Source        string    `json:"source" yaml:"source"`
	RelatedModels []string  `json:"related_models" yaml:"related_models"` // Deduplicated, never nil
}

// EventType classifies a history event
type EventType string

const (
	EventRecall       EventType = "recall"        // Official recall or free replacement program
	EventDefect       EventType = "defect"        // Known batch defect, collective complaints
	EventRebrand      EventType = "rebrand"       // Re-shelled predecessor sold as a new model
	EventBrandHistory EventType = "brand_history" // Brand-level incidents, or the no-findings placeholder
)

// ParseEventType maps a raw tag to an event type. The second return value
// reports whether the tag was recognized; unrecognized tags map to
// EventBrandHistory.
func ParseEventType(raw string) (EventType, bool) {
	switch EventType(strings.ToLower(strings.TrimSpace(raw))) {
	case EventRecall:
		return EventRecall, true
	case EventDefect:
		return EventDefect, true
	case EventRebrand:
		return EventRebrand, true
	case EventBrandHistory:
		return EventBrandHistory, true
	default:
		return EventBrandHistory, false
	}
}

// NormalizeHistoryEvent collapses unknown event types and turns related
// models into a sorted set
func NormalizeHistoryEvent(e HistoryEvent) HistoryEvent {
	eventType, _ := ParseEventType(string(e.EventType))
	return HistoryEvent{
		EventType:     eventType,
		Date:          strings.TrimSpace(e.Date),
		Description:   strings.TrimSpace(e.Description),
		Source:        strings.TrimSpace(e.Source),
		RelatedModels: modelSet(e.RelatedModels),
	}
}

func modelSet(models []string) []string {
	seen := make(map[string]bool, len(models))
	out := make([]string, 0, len(models))
	for _, m := range models {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
