package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/llm"
)

func TestSelect(t *testing.T) {
	cases := []struct {
		name string
		cfg  common.LLMConfig
		want string
	}{
		{"nothing configured", common.LLMConfig{Provider: "auto"}, llm.ProviderNone},
		{"openai key wins in auto", common.LLMConfig{Provider: "auto", OpenAIKey: "o", GeminiKey: "g"}, llm.ProviderOpenAI},
		{"gemini key only", common.LLMConfig{GeminiKey: "g"}, llm.ProviderGemini},
		{"explicit gemini", common.LLMConfig{Provider: "gemini", OpenAIKey: "o", GeminiKey: "g"}, llm.ProviderGemini},
		{"explicit none", common.LLMConfig{Provider: "none", OpenAIKey: "o"}, llm.ProviderNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sel := Select(tc.cfg, nil)
			assert.Equal(t, tc.want, sel.Provider)
			assert.Equal(t, tc.want != llm.ProviderNone, sel.Enabled())
			if sel.Enabled() {
				assert.Equal(t, tc.want, sel.Backend.Name())
			}
		})
	}
}
