// Package doctor runs runtime readiness diagnostics for config, audio, and
// the recognition engine.
package doctor

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/waiterix/earshot/internal/audio"
	"github.com/waiterix/earshot/internal/config"
	"github.com/waiterix/earshot/internal/wakeword"
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
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{
		{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", cfg.Path)},
		checkPhrases(cfg.Config.Wake.Phrases),
		checkEndpoint(cfg.Config.Engine.Endpoint),
		checkAPIKey(cfg.Config.Engine.APIKeyEnv),
	}

	if len(cfg.Config.Detect.Argv) > 0 {
		checks = append(checks, checkBinary(cfg.Config.Detect.Argv[0], "detect_cmd is runnable"))
	}

	checks = append(checks, checkAudioSelection(ctx, cfg.Config))

	if strings.TrimSpace(cfg.Config.Engine.HealthGRPC) != "" {
		checks = append(checks, checkGatewayHealth(ctx, cfg.Config.Engine.HealthGRPC))
	}

	return Report{Checks: checks}
}

// checkPhrases reports how many usable wake phrases survive normalization.
func checkPhrases(phrases []string) Check {
	usable := wakeword.NewMatcher(phrases).Phrases()
	if len(usable) == 0 {
		return Check{Name: "wake.phrases", Pass: false, Message: "no usable wake phrases configured"}
	}
	return Check{
		Name:    "wake.phrases",
		Pass:    true,
		Message: fmt.Sprintf("%d phrase(s): %s", len(usable), strings.Join(usable, ", ")),
	}
}

// checkEndpoint validates the streaming endpoint URL shape.
func checkEndpoint(endpoint string) Check {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return Check{Name: "engine.endpoint", Pass: false, Message: "engine.endpoint is empty"}
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return Check{Name: "engine.endpoint", Pass: false, Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return Check{Name: "engine.endpoint", Pass: false, Message: fmt.Sprintf("scheme must be ws or wss, got %q", parsed.Scheme)}
	}
	return Check{Name: "engine.endpoint", Pass: true, Message: endpoint}
}

// checkAPIKey verifies the key env var is set without revealing its value.
func checkAPIKey(envName string) Check {
	envName = strings.TrimSpace(envName)
	if envName == "" {
		return Check{Name: "engine.api_key", Pass: true, Message: "no api_key_env configured; connecting without credentials"}
	}
	if strings.TrimSpace(os.Getenv(envName)) == "" {
		return Check{Name: "engine.api_key", Pass: false, Message: fmt.Sprintf("environment variable %s is empty", envName)}
	}
	return Check{Name: "engine.api_key", Pass: true, Message: fmt.Sprintf("%s is set", envName)}
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface input issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	device, err := audio.SelectInput(ctx, cfg.Audio.Input)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	return Check{Name: "audio.device", Pass: true, Message: fmt.Sprintf("selected %q", device.ID)}
}
