package llm

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	jsonFencePattern = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	anyFencePattern  = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*\\s*(.*?)```")
)

// ParseResponse recovers a JSON object from raw model output.
// Strategies run in order and the first one yielding an object wins:
// the whole text, a ```json fenced block, any fenced block, and the span
// from the first '{' to the last '}'. It never fails; when nothing parses
// the result is an empty map.
func ParseResponse(text string) map[string]any {
	strategies := []func(string) (map[string]any, bool){
		parseWhole,
		parseJSONFence,
		parseAnyFence,
		parseBraceSpan,
	}

	for _, strategy := range strategies {
		if obj, ok := strategy(text); ok {
			return obj
		}
	}

	return map[string]any{}
}

func parseWhole(text string) (map[string]any, bool) {
	return decodeObject(text)
}

func parseJSONFence(text string) (map[string]any, bool) {
	m := jsonFencePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return decodeObject(m[1])
}

func parseAnyFence(text string) (map[string]any, bool) {
	for _, m := range anyFencePattern.FindAllStringSubmatch(text, -1) {
		if obj, ok := decodeObject(m[1]); ok {
			return obj, true
		}
	}
	return nil, false
}

func parseBraceSpan(text string) (map[string]any, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return decodeObject(text[start : end+1])
}

// decodeObject accepts only JSON objects; arrays and scalars do not count
func decodeObject(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// String returns the first non-blank string stored under any of the keys
func String(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// Number returns the first numeric value stored under any of the keys.
// Numeric strings such as "72" are accepted.
func Number(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v, true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%")), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// intLimit bounds Int results so conversions never overflow
const intLimit = 1 << 30

// Int is Number rounded to the nearest integer, clamped to ±2^30
func Int(m map[string]any, keys ...string) (int, bool) {
	f, ok := Number(m, keys...)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	f = math.Max(-intLimit, math.Min(intLimit, f))
	return int(math.Round(f)), true
}

// Strings returns the non-blank strings of the first list stored under any of the keys.
// A bare string is treated as a one-element list.
func Strings(m map[string]any, keys ...string) []string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			return out
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return []string{s}
			}
		}
	}
	return nil
}

// Objects returns the object elements of the first list stored under any of the keys
func Objects(m map[string]any, keys ...string) []map[string]any {
	for _, key := range keys {
		list, ok := m[key].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}
