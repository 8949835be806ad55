package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// maxReliableClimbCM is the climbing height at or below which the rated value is a hard limit
const maxReliableClimbCM = 2.0

// AnalyzeSpecs derives potential issues from a spec map.
// The result is empty, never nil, when nothing stands out.
func AnalyzeSpecs(specs map[string]string) []string {
	issues := []string{}

	if runtime, ok := specs["runtime"]; ok && containsAny(runtime, []string{"nominal", "rated", "标称"}) {
		issues = append(issues, "Runtime is a nominal value; real-world runtime is typically 70-80% of it")
	}

	if avoidance, ok := specs["obstacle_avoidance"]; ok {
		basic := containsAny(avoidance, []string{"infrared", "ir", "红外"})
		smart := containsAny(avoidance, []string{"ai", "vision", "camera", "视觉"})
		if basic && !smart {
			issues = append(issues, "Obstacle avoidance is basic; small objects and pet waste are poorly detected")
		}
	}

	if climbing, ok := specs["climbing"]; ok {
		raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.ToLower(climbing)), "cm"))
		if climb, err := strconv.ParseFloat(raw, 64); err == nil && climb <= maxReliableClimbCM {
			issues = append(issues, fmt.Sprintf(
				"Climbing height %gcm is a limit value; keep thresholds below %.1fcm in practice",
				climb, climb-0.2,
			))
		}
	}

	return issues
}
