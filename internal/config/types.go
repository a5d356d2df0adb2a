// Package config resolves, parses, validates, and defaults parley configuration.
package config

// Config is the fully materialized runtime configuration used by parley.
type Config struct {
	Interview InterviewConfig `yaml:"interview"`
	LLM       LLMConfig       `yaml:"llm"`
	Speech    SpeechConfig    `yaml:"speech"`
	Audio     AudioConfig     `yaml:"audio"`
	Report    ReportConfig    `yaml:"report"`
}

// InterviewConfig controls session length and interview language.
type InterviewConfig struct {
	TimeLimitMinutes int    `yaml:"time_limit_minutes"`
	Language         string `yaml:"language"`
}

// LLMConfig controls the chat-completions endpoint used for turn exchange.
type LLMConfig struct {
	Endpoint              string `yaml:"endpoint"`
	Model                 string `yaml:"model"`
	APIKeyEnv             string `yaml:"api_key_env"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// SpeechConfig controls the streaming recognizer behavior and endpoint.
type SpeechConfig struct {
	// Endpoint overrides the default Google Speech endpoint; used with
	// Insecure for self-hosted speech gateways.
	Endpoint             string `yaml:"endpoint"`
	Insecure             bool   `yaml:"insecure"`
	LanguageCode         string `yaml:"language_code"`
	Model                string `yaml:"model"`
	AutomaticPunctuation bool   `yaml:"automatic_punctuation"`
	DebugResponseDump    bool   `yaml:"debug_response_dump"`
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string `yaml:"input"`
	Fallback string `yaml:"fallback"`
}

// ReportConfig controls final report artifact persistence.
type ReportConfig struct {
	Save bool   `yaml:"save"`
	Dir  string `yaml:"dir"`
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Message string
}
