// Package main is a command line driver for the Langbly node.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/pricofy/langbly-node/internal/config"
	"github.com/pricofy/langbly-node/internal/handler"
	"github.com/pricofy/langbly-node/internal/logging"
)

var version = "dev"

// stdout receives command output
var stdout io.Writer = os.Stdout

var commands = map[string]func([]string) error{
	"describe":        runDescribe,
	"run":             runRun,
	"test-credential": runTestCredential,
}

func usage() {
	fmt.Fprintf(os.Stderr, `langbly - Langbly translation node (version %s)

Usage:
  langbly <command> [options]

Commands:
  describe          Print the node and credential descriptions (-format json|yaml)
  run               Execute the node against a request file (-f items.yaml)
  test-credential   Check the configured API key against the Langbly API

Configuration is read from LANGBLY_* environment variables.
Run 'langbly <command> -h' for command-specific help.
`, version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		usage()
		os.Exit(0)
	}
	if cmd == "-v" || cmd == "--version" || cmd == "version" {
		fmt.Println(version)
		os.Exit(0)
	}

	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err := fn(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newHandler builds a handler from the environment
func newHandler() (*handler.Handler, error) {
	// Command output goes to stdout; logs stay quiet unless LOG_LEVEL is set
	cfg, err := config.Load(config.WithDefaults(map[string]any{
		"LOG_LEVEL": "error",
	}))
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, "langbly-cli", cfg.Environment)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: cfg.Langbly.Timeout}
	return handler.New(cfg.Langbly, client, logger), nil
}
