package automation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"
)

// Errors returned while parsing command specifications.
var (
	ErrEmptyCommand   = errors.New("command cannot be empty")
	ErrMissingCommand = errors.New("command configuration requires a 'command' field")
)

// CommandSpec is a serializable definition of a command to execute.
type CommandSpec struct {
	// Label identifies the command in summaries and logs.
	Label string

	// Argv is the program and its arguments. The command is executed
	// directly, not through a shell.
	Argv []string

	// AllowFailure marks the command as non-blocking: a failure is
	// reported but does not stop the run.
	AllowFailure bool

	// Env holds per-command environment overrides.
	Env map[string]string

	// Timeout bounds the command's execution. Zero means the runner's
	// default timeout applies.
	Timeout time.Duration
}

// SpecFromString builds a command spec from a shell-like command string.
func SpecFromString(command string) (CommandSpec, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return CommandSpec{}, fmt.Errorf("invalid command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return CommandSpec{}, ErrEmptyCommand
	}
	return CommandSpec{Label: command, Argv: argv}, nil
}

// specObject mirrors the JSON object form of a command definition.
type specObject struct {
	Command      json.RawMessage   `json:"command"`
	Label        string            `json:"label"`
	Name         string            `json:"name"`
	AllowFailure bool              `json:"allow_failure"`
	Env          map[string]string `json:"env"`
	Timeout      float64           `json:"timeout"`
}

// SpecFromJSON builds a command spec from one JSON config entry. Entries may
// be a command string, an argv array, or an object with a required command
// field plus optional label, allow_failure, env, and timeout (seconds).
func SpecFromJSON(raw json.RawMessage) (CommandSpec, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return SpecFromString(asString)
	}

	var asArgv []string
	if err := json.Unmarshal(raw, &asArgv); err == nil {
		if len(asArgv) == 0 {
			return CommandSpec{}, ErrEmptyCommand
		}
		return CommandSpec{Label: strings.Join(asArgv, " "), Argv: asArgv}, nil
	}

	var obj specObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return CommandSpec{}, fmt.Errorf("unsupported command specification: %w", err)
	}
	if len(obj.Command) == 0 {
		return CommandSpec{}, ErrMissingCommand
	}

	var argv []string
	var commandString string
	if err := json.Unmarshal(obj.Command, &commandString); err == nil {
		parsed, err := SpecFromString(commandString)
		if err != nil {
			return CommandSpec{}, err
		}
		argv = parsed.Argv
	} else if err := json.Unmarshal(obj.Command, &argv); err != nil {
		return CommandSpec{}, fmt.Errorf("unsupported command field: %w", err)
	}
	if len(argv) == 0 {
		return CommandSpec{}, ErrEmptyCommand
	}

	label := obj.Label
	if label == "" {
		label = obj.Name
	}
	if label == "" {
		label = strings.Join(argv, " ")
	}

	return CommandSpec{
		Label:        label,
		Argv:         argv,
		AllowFailure: obj.AllowFailure,
		Env:          obj.Env,
		Timeout:      time.Duration(obj.Timeout * float64(time.Second)),
	}, nil
}

// LoadSpecsFromFile reads command specs from a JSON file containing either
// a top-level array or an object with a commands array.
func LoadSpecsFromFile(path string) ([]CommandSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read automation config: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		var wrapper struct {
			Commands []json.RawMessage `json:"commands"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil || wrapper.Commands == nil {
			return nil, fmt.Errorf("unsupported automation config format in %s", path)
		}
		entries = wrapper.Commands
	}

	specs := make([]CommandSpec, 0, len(entries))
	for _, entry := range entries {
		spec, err := SpecFromJSON(entry)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// SpecsFromEnv parses command strings from the AUTOMATION_COMMANDS variable
// format: commands separated by newlines or semicolons.
func SpecsFromEnv(raw string) ([]CommandSpec, error) {
	var specs []CommandSpec
	for _, block := range strings.Split(raw, "\n") {
		for _, segment := range strings.Split(block, ";") {
			item := strings.TrimSpace(segment)
			if item == "" {
				continue
			}
			spec, err := SpecFromString(item)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
	}
	return specs, nil
}
