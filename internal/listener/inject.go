package listener

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// CommandInjector delivers a human reply to the agent by running a
// user-configured shell command with the reply text on stdin.
type CommandInjector struct {
	command string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewCommandInjector creates an injector for the given shell command
func NewCommandInjector(command string, timeout time.Duration, logger zerolog.Logger) *CommandInjector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CommandInjector{
		command: command,
		timeout: timeout,
		logger:  logger.With().Str("component", "injector").Logger(),
	}
}

// Inject runs the command with text on stdin, bounded by the timeout
func (i *CommandInjector) Inject(ctx context.Context, text string) error {
	if i.command == "" {
		return fmt.Errorf("no inject command configured")
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", i.command)
	cmd.Stdin = strings.NewReader(text)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("inject command failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	i.logger.Info().Int("chars", len(text)).Msg("Reply injected")
	return nil
}
