package config

import (
	"fmt"
	"net/url"
	"strings"
)

// supportedLanguages is the closed enumeration of interview language modes.
var supportedLanguages = map[string]struct{}{
	"en": {},
	"ko": {},
}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if cfg.Interview.TimeLimitMinutes <= 0 {
		return nil, fmt.Errorf("interview.time_limit_minutes must be > 0")
	}
	if cfg.Interview.TimeLimitMinutes > 180 {
		return nil, fmt.Errorf("interview.time_limit_minutes must be <= 180")
	}
	lang := strings.ToLower(strings.TrimSpace(cfg.Interview.Language))
	if _, ok := supportedLanguages[lang]; !ok {
		return nil, fmt.Errorf("interview.language must be one of: en, ko")
	}

	endpoint := strings.TrimSpace(cfg.LLM.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("llm.endpoint must not be empty")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("llm.endpoint %q is not a valid URL", endpoint)
	}
	if parsed.Scheme != "https" {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("llm.endpoint %q is not https; answers will leave this machine unencrypted", endpoint),
		})
	}
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		return nil, fmt.Errorf("llm.model must not be empty")
	}
	if strings.TrimSpace(cfg.LLM.APIKeyEnv) == "" {
		return nil, fmt.Errorf("llm.api_key_env must not be empty")
	}
	if cfg.LLM.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("llm.request_timeout_seconds must be > 0")
	}

	if strings.TrimSpace(cfg.Speech.LanguageCode) == "" {
		return nil, fmt.Errorf("speech.language_code must not be empty")
	}
	if cfg.Speech.Insecure && strings.TrimSpace(cfg.Speech.Endpoint) == "" {
		return nil, fmt.Errorf("speech.insecure requires speech.endpoint to be set")
	}

	return warnings, nil
}
