package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/naysayer/internal/model"
)

// scenarioRule is one known conflict between a usage scenario and a product class
type scenarioRule struct {
	products []string // Product class keywords; empty matches any product
	triggers []string // Scenario phrases that activate the rule
	specKey  string   // Spec map key shown as the relevant spec
	specHint string   // Used when the spec map has no value for specKey

	warning        string
	impact         int
	recommendation string
}

var (
	vacuumKeys    = []string{"robot vacuum", "robovac", "扫地机器人", "扫地机"}
	projectorKeys = []string{"projector", "投影仪"}
)

// scenarioRules are evaluated in order; every matching rule yields a warning.
// Impact percentages follow from the stated mechanism.
var scenarioRules = []scenarioRule{
	{
		products: vacuumKeys,
		triggers: []string{"pet", "cat", "dog", "puppy", "kitten", "宠物", "猫", "狗"},
		specKey:  "obstacle_avoidance",
		specHint: "obstacle avoidance: infrared + ultrasonic class sensors",
		warning: "Infrared and ultrasonic sensors detect solid obstacles by reflection; soft, low, " +
			"non-reflective objects such as pet waste are invisible to them, so a single run-over " +
			"smears it across the whole floor and ruins the brush assembly",
		impact:         100,
		recommendation: "Pick a model with camera-based AI obstacle recognition, or only run it when the floor has been checked",
	},
	{
		products: vacuumKeys,
		triggers: []string{"carpet", "rug", "地毯"},
		specKey:  "suction_power",
		specHint: "carpet detection: ultrasonic",
		warning: "Carpet boost relies on detecting the carpet surface; dark and deep-pile carpets absorb " +
			"the sensing signal, detection drops to roughly 60% and undetected areas are cleaned at " +
			"hard-floor suction",
		impact:         40,
		recommendation: "Mark carpet zones manually in the app, or choose a model with laser carpet recognition",
	},
	{
		products: vacuumKeys,
		triggers: []string{"threshold", "door sill", "doorsill", "step", "height difference", "门槛", "台阶", "高低差"},
		specKey:  "climbing",
		specHint: "climbing height: 2cm",
		warning: "The rated climbing height is a limit value measured on a clean square edge; with wheel " +
			"wear and rounded sills the robot gets stuck from about 1.8cm, so rooms behind the " +
			"threshold are never reached",
		impact:         80,
		recommendation: "Choose a model rated for 2.5cm or more, or install a threshold ramp",
	},
	{
		products: projectorKeys,
		triggers: []string{"daylight", "sunlight", "daytime", "bright room", "natural light", "白天", "阳光", "自然光", "采光"},
		specKey:  "brightness",
		specHint: "brightness: 2000 ANSI lumens",
		warning: "Ambient light adds to the black level of the projected image; above roughly 300 lux the " +
			"contrast of a 2000 lumen image falls by about 70% and the picture washes out",
		impact:         70,
		recommendation: "Choose a laser projector with 3000+ lumens or install blackout curtains",
	},
	{
		products: projectorKeys,
		triggers: []string{"bedroom", "small room", "short distance", "2m", "2 m", "two meters", "卧室", "小房间", "距离"},
		specKey:  "throw_ratio",
		specHint: "throw ratio: 1.2:1",
		warning: "Image width equals distance divided by throw ratio; at 2m a 1.2:1 lens gives about a " +
			"60 inch picture, and 100 inches needs roughly 3.3m",
		impact:         30,
		recommendation: "Measure the throw distance first; for large images in small rooms consider a short-throw model",
	},
	{
		triggers: []string{"heavy use", "every day", "daily", "all day", "24/7", "commercial", "高强度", "每天", "全天"},
		specKey:  "lifetime",
		specHint: "design life: consumer grade",
		warning: "Consumer-grade parts are rated for light duty cycles; continuous heavy use multiplies " +
			"thermal and mechanical wear and shortens service life accordingly",
		impact:         30,
		recommendation: "Choose a commercial or professional grade product rated for the duty cycle",
	},
}

func (r scenarioRule) appliesTo(product string) bool {
	return len(r.products) == 0 || containsAny(product, r.products)
}

func (r scenarioRule) triggeredBy(scenario string) bool {
	return containsAny(scenario, r.triggers)
}

func (r scenarioRule) warningFor(scenario string, specs map[string]string) model.ScenarioWarning {
	spec := r.specHint
	if v, ok := specs[r.specKey]; ok && strings.TrimSpace(v) != "" {
		spec = r.specKey + ": " + v
	}

	return model.ScenarioWarning{
		Scenario:         scenario,
		Spec:             spec,
		Warning:          r.warning,
		ImpactPercentage: r.impact,
		Recommendation:   r.recommendation,
	}
}

func containsAny(text string, keys []string) bool {
	text = strings.ToLower(text)
	for _, key := range keys {
		if containsPhrase(text, strings.ToLower(key)) {
			return true
		}
	}
	return false
}

// containsPhrase matches ASCII phrases on word boundaries (allowing a plural
// "s") so that "cat" does not fire on "location". Other scripts match as
// plain substrings.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	if !isASCII(phrase) {
		return strings.Contains(text, phrase)
	}

	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(phrase)

		if start == 0 || !isWordByte(text[start-1]) {
			if end == len(text) || !isWordByte(text[end]) {
				return true
			}
			if text[end] == 's' && (end+1 == len(text) || !isWordByte(text[end+1])) {
				return true
			}
		}
		offset = start + 1
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// ruleWarnings evaluates the rule tables; no match yields an empty list
func ruleWarnings(product, scenario string, specs map[string]string) []model.ScenarioWarning {
	warnings := []model.ScenarioWarning{}
	for _, rule := range scenarioRules {
		if rule.appliesTo(product) && rule.triggeredBy(scenario) {
			warnings = append(warnings, model.NormalizeScenarioWarning(rule.warningFor(scenario, specs)))
		}
	}
	return warnings
}
