// Package automation executes configured smoke test commands sequentially.
// Command definitions come from CLI flags, a JSON config file, or the
// AUTOMATION_COMMANDS environment variable, and each command runs as a
// subprocess with optional timeout and environment overrides.
package automation
