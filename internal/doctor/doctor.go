// Package doctor runs runtime readiness diagnostics for config, audio,
// the LLM endpoint, and state storage.
package doctor

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/parley-dev/parley/internal/audio"
	"github.com/parley-dev/parley/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkAPIKey(cfg.Config.LLM))
	checks = append(checks, checkLLMEndpoint(cfg.Config.LLM))
	checks = append(checks, checkAudioSelection(cfg.Config))
	checks = append(checks, checkStateDir())

	return Report{Checks: checks}
}

// checkAPIKey validates that the configured key environment variable is set.
func checkAPIKey(cfg config.LLMConfig) Check {
	name := strings.TrimSpace(cfg.APIKeyEnv)
	if name == "" {
		return Check{Name: "llm.api_key", Pass: false, Message: "llm.api_key_env is empty"}
	}
	if os.Getenv(name) == "" {
		return Check{Name: "llm.api_key", Pass: false, Message: fmt.Sprintf("environment variable %s is not set", name)}
	}
	return Check{Name: "llm.api_key", Pass: true, Message: fmt.Sprintf("%s is set", name)}
}

// checkLLMEndpoint validates the chat endpoint URL shape without a network call.
func checkLLMEndpoint(cfg config.LLMConfig) Check {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return Check{Name: "llm.endpoint", Pass: false, Message: "llm.endpoint is empty"}
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Check{Name: "llm.endpoint", Pass: false, Message: fmt.Sprintf("invalid URL %q", endpoint)}
	}
	message := fmt.Sprintf("using %s", endpoint)
	if parsed.Scheme != "https" {
		message += " (not https)"
	}
	return Check{Name: "llm.endpoint", Pass: true, Message: message}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkStateDir verifies the log/report state directory is writable.
func checkStateDir() Check {
	stateDir, err := config.ResolveStateDir()
	if err != nil {
		return Check{Name: "state.dir", Pass: false, Message: err.Error()}
	}

	dir := filepath.Join(stateDir, "parley")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{Name: "state.dir", Pass: false, Message: fmt.Sprintf("create %q: %v", dir, err)}
	}

	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return Check{Name: "state.dir", Pass: false, Message: fmt.Sprintf("%q is not writable: %v", dir, err)}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return Check{Name: "state.dir", Pass: true, Message: fmt.Sprintf("%q is writable", dir)}
}
