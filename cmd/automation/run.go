package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rodexhq/rodex-api/internal/automation"
)

const runLongDesc = `Execute smoke test commands sequentially.

Commands come from --command flags, a JSON config file, or the
AUTOMATION_COMMANDS environment variable (commands separated by newlines
or semicolons).

Examples:
  automation run --command "go version" --command "curl -sf http://localhost:8080/health"
  automation run --config automation.json --timeout 30
  AUTOMATION_COMMANDS="echo one; echo two" automation run
`

// exitError carries a specific process exit code out of command execution.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

type runCommander struct {
	commands  []string
	config    string
	env       []string
	timeout   float64
	keepGoing bool
	logger    *slog.Logger
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "automation",
		Short: "Automation service utilities",
	}
	cmd.AddCommand(newRunCmd(logger))
	return cmd
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	cmder := &runCommander{logger: logger}

	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Execute smoke test commands sequentially",
		Long:         runLongDesc,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&cmder.commands, "command", "c", nil,
		"Command string to execute. Accepts multiple entries.")
	cmd.Flags().StringVar(&cmder.config, "config", "",
		"Path to a JSON file describing commands.")
	cmd.Flags().StringArrayVar(&cmder.env, "env", nil,
		"Environment overrides for the command run (KEY=VALUE).")
	cmd.Flags().Float64Var(&cmder.timeout, "timeout", 0,
		"Default timeout (in seconds) applied to each command.")
	cmd.Flags().BoolVar(&cmder.keepGoing, "keep-going", false,
		"Continue executing commands after a failure.")

	return cmd
}

func (c *runCommander) run(cmd *cobra.Command) error {
	specs, err := c.collectSpecs()
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("no commands provided; use --command, --config, or set AUTOMATION_COMMANDS")
	}

	overrides, err := parseEnvOverrides(c.env)
	if err != nil {
		return err
	}

	baseEnv := environMap()
	for key, value := range overrides {
		baseEnv[key] = value
	}

	runner := automation.NewRunner(automation.RunnerConfig{
		BaseEnv:        baseEnv,
		StopOnFailure:  !c.keepGoing,
		DefaultTimeout: time.Duration(c.timeout * float64(time.Second)),
	}, c.logger)

	results := runner.Run(cmd.Context(), specs)
	fmt.Fprintln(cmd.OutOrStdout(), automation.FormatSummary(results))

	for _, result := range results {
		if !result.Passed() {
			code := results[len(results)-1].ExitCode
			if code == 0 {
				code = 1
			}
			return &exitError{code: code}
		}
	}
	return nil
}

func (c *runCommander) collectSpecs() ([]automation.CommandSpec, error) {
	var specs []automation.CommandSpec

	if c.config != "" {
		fromFile, err := automation.LoadSpecsFromFile(c.config)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fromFile...)
	}

	for _, command := range c.commands {
		spec, err := automation.SpecFromString(command)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	if len(specs) == 0 {
		fromEnv, err := automation.SpecsFromEnv(os.Getenv("AUTOMATION_COMMANDS"))
		if err != nil {
			return nil, err
		}
		specs = append(specs, fromEnv...)
	}

	return specs, nil
}

func parseEnvOverrides(items []string) (map[string]string, error) {
	overrides := make(map[string]string, len(items))
	for _, item := range items {
		key, value, found := strings.Cut(item, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid environment override %q, expected KEY=VALUE", item)
		}
		overrides[strings.TrimSpace(key)] = value
	}
	return overrides, nil
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		if key, value, found := strings.Cut(entry, "="); found {
			env[key] = value
		}
	}
	return env
}
