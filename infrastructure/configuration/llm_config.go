package configuration

import (
	"os"
	"strconv"
)

const (
	DefaultLLMBaseURL = "https://api.groq.com/openai/v1"
	DefaultLLMModel   = "meta-llama/llama-4-scout-17b-16e-instruct"
)

// LLM configures the OpenAI-compatible chat completions endpoint used to
// draft job descriptions.
type LLM struct {
	BaseURL        string  `json:"baseURL"`
	APIKey         string  `json:"apiKey"`
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"maxTokens"`
	TimeoutSeconds int     `json:"timeoutSeconds"`
}

func initLLM(C *Config) {
	C.LLM.BaseURL = getConfigValue(C.LLM.BaseURL, "LLM_BASE_URL", DefaultLLMBaseURL)
	C.LLM.APIKey = getConfigValue(C.LLM.APIKey, "GROQ_API_KEY", "")
	C.LLM.Model = getConfigValue(C.LLM.Model, "LLM_MODEL", DefaultLLMModel)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			C.LLM.Temperature = f
		}
	}
	if C.LLM.Temperature == 0 {
		C.LLM.Temperature = 0.7
	}
	C.LLM.MaxTokens = envInt("LLM_MAX_TOKENS", C.LLM.MaxTokens, 1000)
	C.LLM.TimeoutSeconds = envInt("LLM_TIMEOUT_SECONDS", C.LLM.TimeoutSeconds, 30)
}
