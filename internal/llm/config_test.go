package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_ClassifyTimeoutMatchesGlobalDefault(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10000, cfg.Tasks[TaskClassify].TimeoutMs)
}

func TestLoadConfig_TaskTimeoutOverrides(t *testing.T) {
	t.Setenv("WATTSON_LLM_TIMEOUT_MS", "9000")
	t.Setenv("WATTSON_LLM_CLASSIFY_TIMEOUT_MS", "15000")

	cfg := LoadConfig()

	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskClassify))
}

func TestLoadConfig_InvalidTaskTimeoutOverrideIgnored(t *testing.T) {
	t.Setenv("WATTSON_LLM_CLASSIFY_TIMEOUT_MS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 10000, cfg.TaskTimeout(TaskClassify))
}

func TestLoadConfig_FlagsAndEndpoint(t *testing.T) {
	t.Setenv("WATTSON_LLM_ENABLED", "true")
	t.Setenv("WATTSON_LLM_ENDPOINT", "http://llm.internal:11434")
	t.Setenv("WATTSON_LLM_MODEL", "qwen2.5:32b")
	t.Setenv("WATTSON_LLM_MAX_RETRIES", "3")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http://llm.internal:11434", cfg.Endpoint)
	assert.Equal(t, "qwen2.5:32b", cfg.Model)
	assert.Equal(t, 3, cfg.MaxRetries)
}
