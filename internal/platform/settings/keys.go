// Package settings names the runtime overrides stored in the settings table.
package settings

// Keys read by the LLM registry and the pipeline. Values are JSON encoded.
const (
	// SettingLLMOverride maps a task name to a provider/model pair.
	SettingLLMOverride = "llm_override"

	// SettingCategoryPaused holds a list of category names skipped by the scheduler.
	SettingCategoryPaused = "category_paused"
)

// LLMOverride pins a task to a specific provider and model.
type LLMOverride struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
