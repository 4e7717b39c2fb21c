// Command automation executes configured smoke test commands sequentially
// and reports a summary, exiting non-zero when a blocking command fails.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rodexhq/rodex-api/internal/platform/logger"

	"github.com/rodexhq/rodex-api/internal/config"
)

func main() {
	log, err := logger.Setup(config.ServerConfig{LogLevel: envLogLevel()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	root := newRootCmd(log)
	if err := root.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

func envLogLevel() string {
	if level := os.Getenv("RODEX_SERVER_LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}
