// Package hook dispatches the configured detection command when a wake
// phrase is heard.
package hook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/waiterix/earshot/internal/config"
)

const runTimeout = 2 * time.Second

// Runner fires the detect command. A hook failure never affects the
// listening session; it is logged and dropped.
type Runner struct {
	command config.CommandConfig
	logger  *slog.Logger
}

// NewRunner constructs a detection hook from runtime config.
func NewRunner(cmd config.CommandConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{command: cmd, logger: logger}
}

// Enabled reports whether a detect command is configured.
func (r *Runner) Enabled() bool {
	return len(r.command.Argv) > 0
}

// Fire runs the detect command with the matched phrase on stdin. It is safe
// to call with no command configured.
func (r *Runner) Fire(ctx context.Context, phrase string) {
	if !r.Enabled() {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if err := runCommandWithInput(runCtx, r.command.Argv, phrase); err != nil {
		r.logger.Error("detect command failed", "command", r.command.Argv[0], "error", err.Error())
		return
	}
	r.logger.Debug("detect command dispatched", "command", r.command.Argv[0])
}

// runCommandWithInput executes argv and optionally writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
