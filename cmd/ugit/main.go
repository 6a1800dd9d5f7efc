// Command ugit is a content-addressed version control tool: the porcelain
// front end over the internal/repository core.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cmd := newRootCommand(logger)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ugit:", err)
		os.Exit(1)
	}
}

// newLogger builds the CLI's structured logger. UGIT_DEBUG=1 switches to a
// development config (human-readable, debug level); otherwise a quiet
// production logger only surfaces warnings and above, since ugit's own
// stdout/stderr is the primary user-facing channel.
func newLogger() *zap.Logger {
	if os.Getenv("UGIT_DEBUG") != "" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
