package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Interview: InterviewConfig{
			TimeLimitMinutes: 15,
			Language:         "en",
		},
		LLM: LLMConfig{
			Endpoint:              "https://api.openai.com/v1",
			Model:                 "gpt-4o-mini",
			APIKeyEnv:             "OPENAI_API_KEY",
			RequestTimeoutSeconds: 60,
		},
		Speech: SpeechConfig{
			Endpoint:             "",
			Insecure:             false,
			LanguageCode:         "en-US",
			Model:                "latest_long",
			AutomaticPunctuation: true,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Report: ReportConfig{
			Save: true,
			Dir:  "",
		},
	}
}
