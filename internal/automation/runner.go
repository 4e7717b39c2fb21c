package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// spawnFailureExitCode mirrors the shell convention for a command that
// could not be started.
const spawnFailureExitCode = 127

// pipeAbandonDelay bounds how long Wait blocks on the output pipes after
// the command is killed. Grandchildren of a timed-out command (sleep under
// sh -c, for instance) inherit the pipes and would otherwise hold Run open
// for their full lifetime.
const pipeAbandonDelay = time.Second

// CommandResult is the outcome of a command execution.
type CommandResult struct {
	Label        string
	Argv         []string
	ExitCode     int
	Stdout       string
	Stderr       string
	Duration     time.Duration
	AllowFailure bool
	TimedOut     bool
}

// Passed reports whether the command completed successfully. Commands
// marked AllowFailure pass regardless of outcome.
func (r CommandResult) Passed() bool {
	if r.TimedOut {
		return r.AllowFailure
	}
	if r.ExitCode == 0 {
		return true
	}
	return r.AllowFailure
}

// RunnerConfig holds configuration for the command runner.
type RunnerConfig struct {
	// BaseEnv is the environment every command starts from. Per-command
	// Env entries override it.
	BaseEnv map[string]string

	// StopOnFailure aborts the run after the first blocking failure.
	StopOnFailure bool

	// DefaultTimeout applies to commands without their own timeout.
	// Zero means no timeout.
	DefaultTimeout time.Duration
}

// Runner executes commands sequentially with optional failure handling.
type Runner struct {
	config RunnerConfig
	logger *slog.Logger
}

// NewRunner creates a command runner.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	return &Runner{
		config: config,
		logger: logger.With("component", "automation_runner"),
	}
}

// Run executes the commands in order. When StopOnFailure is set, the run
// stops after the first failing command that is not marked AllowFailure.
func (r *Runner) Run(ctx context.Context, specs []CommandSpec) []CommandResult {
	results := make([]CommandResult, 0, len(specs))
	for _, spec := range specs {
		result := r.execute(ctx, spec)
		results = append(results, result)
		if !result.Passed() && r.config.StopOnFailure && !spec.AllowFailure {
			break
		}
	}
	return results
}

func (r *Runner) execute(ctx context.Context, spec CommandSpec) CommandResult {
	timeout := spec.Timeout
	if timeout == 0 {
		timeout = r.config.DefaultTimeout
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Argv[0], spec.Argv[1:]...)
	cmd.Env = mergeEnv(r.config.BaseEnv, spec.Env)
	cmd.WaitDelay = pipeAbandonDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := CommandResult{
		Label:        spec.Label,
		Argv:         spec.Argv,
		Stdout:       stdout.String(),
		Stderr:       stderr.String(),
		Duration:     duration,
		AllowFailure: spec.AllowFailure,
		TimedOut:     runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded),
	}

	switch {
	case err == nil:
		result.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// The command never started.
			result.ExitCode = spawnFailureExitCode
			if result.Stderr == "" {
				result.Stderr = err.Error()
			}
		}
	}

	switch {
	case result.TimedOut:
		r.logger.Error("command timed out", "label", spec.Label, "timeout", timeout)
	case result.ExitCode != 0:
		r.logger.Error("command failed", "label", spec.Label, "exit_code", result.ExitCode)
	default:
		r.logger.Info("command succeeded", "label", spec.Label, "duration", duration)
	}

	return result
}

// mergeEnv flattens the base environment plus overrides into the form
// expected by os/exec, with deterministic ordering.
func mergeEnv(base, overrides map[string]string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, key := range keys {
		env = append(env, key+"="+merged[key])
	}
	return env
}

// FormatSummary returns a human-readable summary of command execution
// results, including captured output for each command.
func FormatSummary(results []CommandResult) string {
	var lines []string
	for _, result := range results {
		status := "FAIL"
		if result.Passed() {
			status = "PASS"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s (%.2fs)", status, result.Label, result.Duration.Seconds()))
		if out := strings.TrimSpace(result.Stdout); out != "" {
			lines = append(lines, "  stdout:")
			for _, line := range strings.Split(out, "\n") {
				lines = append(lines, "    "+line)
			}
		}
		if errOut := strings.TrimSpace(result.Stderr); errOut != "" {
			lines = append(lines, "  stderr:")
			for _, line := range strings.Split(errOut, "\n") {
				lines = append(lines, "    "+line)
			}
		}
	}
	return strings.Join(lines, "\n")
}
