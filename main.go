package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudposse/pomgraph/cmd"
	errUtils "github.com/cloudposse/pomgraph/errors"
	log "github.com/cloudposse/pomgraph/pkg/logger"
)

func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		cmd.Cleanup()
		// POSIX exit code: 128 + signal number.
		if s, ok := sig.(syscall.Signal); ok {
			errUtils.OsExit(128 + int(s))
		}
		errUtils.OsExit(130)
	}()

	errUtils.OsExit(run())
}

// run executes the CLI and returns the exit code, so deferred cleanup runs before os.Exit.
func run() int {
	defer cmd.Cleanup()

	err := cmd.Execute()
	if err != nil {
		formatted := errUtils.Format(err, errUtils.DefaultFormatterConfig())
		os.Stderr.WriteString(formatted + "\n")

		exitCode := errUtils.GetExitCode(err)
		log.Debug("Exiting with exit code", "code", exitCode)
		return exitCode
	}
	return errUtils.ExitCodeSuccess
}
