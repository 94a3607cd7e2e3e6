// Package main is the entry point of the pr-label-tag action.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/projectsyn/pr-label-tag-action/internal/cli"
	buildversion "github.com/projectsyn/pr-label-tag-action/internal/version"
)

// Version information set by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	cli.SetVersionInfo(buildversion.Resolve(version), commit, date)

	os.Exit(run(context.Background(), sigChan, cli.ExecuteContext, os.Stderr, os.Exit))
}

// run executes the CLI and returns the process exit code. A signal on
// sigChan cancels the run; a second signal or the shutdown timeout calls
// exit directly.
func run(parent context.Context, sigChan <-chan os.Signal, execute func(context.Context) error, stderr io.Writer, exit func(int)) int {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	done := make(chan struct{})
	var wg sync.WaitGroup

	if sigChan != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var sig os.Signal
			select {
			case sig = <-sigChan:
			case <-done:
				return
			}
			fmt.Fprintf(stderr, "\nReceived signal %v, initiating graceful shutdown...\n", sig)
			cancel()

			shutdownTimer := time.NewTimer(shutdownTimeout)
			defer shutdownTimer.Stop()

			select {
			case <-done:
			case <-shutdownTimer.C:
				fmt.Fprintf(stderr, "\nShutdown timeout (%v) exceeded, forcing exit\n", shutdownTimeout)
				exit(1)
			case sig = <-sigChan:
				fmt.Fprintf(stderr, "\nReceived second signal %v, forcing exit\n", sig)
				exit(1)
			}
		}()
	}

	exitCode := 0
	if err := execute(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(stderr, "Operation canceled")
			exitCode = 130 // Standard exit code for SIGINT
		} else {
			cli.ReportError(stderr, err, cli.IsGitHubActions())
			exitCode = 1
		}
	}

	close(done)
	wg.Wait()
	return exitCode
}
