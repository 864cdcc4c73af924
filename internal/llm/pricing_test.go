package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  *ModelCost
	}{
		{"gpt-4o-mini", &ModelCost{0.15, 0.6}},
		{"openai/gpt-4o-mini", &ModelCost{0.15, 0.6}},
		{"anthropic/claude-haiku-4-5", &ModelCost{1, 5}},
		{"meta-llama/llama-3-8b-instruct:free", &ModelCost{}},
		{"google/gemini-2.0-flash-exp", &ModelCost{}},
		{"mock", nil},
		{"acme/unknown-model", nil},
	}
	for _, tc := range tests {
		got := LookupCost(tc.model)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("LookupCost(%q) = %+v, want nil", tc.model, *got)
		case tc.want != nil && got == nil:
			t.Errorf("LookupCost(%q) = nil, want %+v", tc.model, *tc.want)
		case tc.want != nil && *got != *tc.want:
			t.Errorf("LookupCost(%q) = %+v, want %+v", tc.model, *got, *tc.want)
		}
	}
}

func TestDefaultModelsArePriced(t *testing.T) {
	cfg := DefaultConfig()
	models := map[string]string{
		"anthropic":  resolveModel(cfg.Anthropic.Model, anthropicModels),
		"openai":     resolveModel(cfg.OpenAI.Model, openaiModels),
		"gemini":     resolveModel(cfg.Gemini.Model, geminiModels),
		"openrouter": cfg.OpenRouter.Model,
	}
	for provider, model := range models {
		if LookupCost(model) == nil {
			t.Errorf("%s default model %q has no pricing", provider, model)
		}
	}
}

func TestModelCost_Cost(t *testing.T) {
	// One lesson (about 1000 output tokens) on claude-haiku-4-5.
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	got := c.Cost(200, 1000)
	if math.Abs(got-0.0052) > 1e-9 {
		t.Errorf("Cost = %v, want 0.0052", got)
	}
}
