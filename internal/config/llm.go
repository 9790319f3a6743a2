package config

// LLMConfig configures Scout's three model tiers: the Gemini Flash/Pro
// pair used by the Big-Brain Router and Doc Synthesizer, and the Groq
// middle-manager model used by the compression Gate.
type LLMConfig struct {
	GeminiAPIKey        string `yaml:"gemini_api_key"`
	GroqAPIKey          string `yaml:"groq_api_key"`
	FlashModel          string `yaml:"flash_model"`
	ProModel            string `yaml:"pro_model"`
	MiddleManagerModel  string `yaml:"middle_manager_model"`
	Timeout             string `yaml:"timeout"`
}

// DefaultLLMConfig returns Scout's default model-tier wiring.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		FlashModel:         "gemini-2.5-flash",
		ProModel:           "gemini-2.5-pro",
		MiddleManagerModel: "llama-3.3-70b-versatile",
		Timeout:            "60s",
	}
}
