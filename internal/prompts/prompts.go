// Package prompts resolves per-category prompt text with remote-then-local
// fallback.
//
// Two stores exist: a file-backed local mapping that is always populated
// (seeded with built-in defaults on first access) and an optional read-only
// remote mapping in the external document store. Resolution never fails; the
// local/default path is the guaranteed terminal source.
package prompts

// Built-in categories seeded into the local mapping.
const (
	CategoryNutrition = "NutritionAnalysis"
	CategoryGeneral   = "GeneralAnalysis"
)

// defaultPrompts are the built-in category texts. The nutrition prompt is
// also the fallback for unknown categories.
var defaultPrompts = map[string]string{
	CategoryNutrition: "You are a food analyzer. You will analyze the main components (carbs, fat, protein, etc) from this image and give back an estimation in grams of each and total calories. Be precise and concise.",
	CategoryGeneral:   "Describe what you see in this image with detailed information.",
}

// DefaultText returns the built-in fallback prompt text.
func DefaultText() string {
	return defaultPrompts[CategoryNutrition]
}

// DefaultPrompts returns a copy of the built-in category mapping.
func DefaultPrompts() map[string]string {
	m := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		m[k] = v
	}
	return m
}
