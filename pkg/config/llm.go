package config

import "time"

type LLMConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	SummaryModel  string
	MaxTokens     int
	RetryAttempts int
	RetryDelay    time.Duration
}

func loadLLMConfig() LLMConfig {
	return LLMConfig{
		APIKey:        getEnv("LLM_API_KEY", ""),
		BaseURL:       getEnv("LLM_BASE_URL", ""),
		Model:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		SummaryModel:  getEnv("LLM_SUMMARY_MODEL", "gpt-4o-mini"),
		MaxTokens:     getEnvInt("LLM_MAX_TOKENS", 0),
		RetryAttempts: getEnvInt("LLM_RETRY_ATTEMPTS", 3),
		RetryDelay:    getEnvDuration("LLM_RETRY_DELAY", 5*time.Second),
	}
}
