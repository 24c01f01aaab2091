package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pricofy/langbly-node/internal/credential"
	"github.com/pricofy/langbly-node/internal/handler"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var errExecution = errors.New("execution failed")

func runDescribe(args []string) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	format := fs.String("format", formatJSON, "Output format (json|yaml)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: langbly describe [options]\n\nPrint the node and credential descriptions.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	h, err := newHandler()
	if err != nil {
		return err
	}
	res, err := h.Handle(context.Background(),
		handler.Request{Action: handler.ActionDescribe})
	if err != nil {
		return err
	}

	out := map[string]any{
		"node":       res.Description,
		"credential": res.Credential,
	}
	return write(out, *format)
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	file := fs.String("f", "", "Request file (YAML or JSON) with items and parameters")
	continueOnFail := fs.Bool("continue-on-fail", false,
		"Report failing items as error items instead of aborting")
	format := fs.String("format", formatJSON, "Output format (json|yaml)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: langbly run -f <request.yaml> [options]\n\nExecute the node against the items in a request file.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return fmt.Errorf("request file is required")
	}

	req, err := loadRequest(*file)
	if err != nil {
		return err
	}
	req.Action = handler.ActionExecute
	if *continueOnFail {
		req.ContinueOnFail = true
	}

	h, err := newHandler()
	if err != nil {
		return err
	}
	res, err := h.Handle(context.Background(), req)
	if err != nil {
		return err
	}
	if err := write(res, *format); err != nil {
		return err
	}
	if res.Error != "" {
		return fmt.Errorf("%w: %s", errExecution, res.Error)
	}
	return nil
}

func runTestCredential(args []string) error {
	fs := flag.NewFlagSet("test-credential", flag.ContinueOnError)
	key := fs.String("key", "", "API key to test instead of LANGBLY_API_KEY")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: langbly test-credential [options]\n\nCheck an API key against the Langbly API.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := handler.Request{Action: handler.ActionTestCredential}
	if *key != "" {
		req.Credentials = &credential.Credential{APIKey: *key}
	}

	h, err := newHandler()
	if err != nil {
		return err
	}
	res, err := h.Handle(context.Background(), req)
	if err != nil {
		return err
	}
	if res.Error != "" {
		return errors.New(res.Error)
	}
	_, err = fmt.Fprintln(stdout, "credential ok")
	return err
}

// loadRequest reads a request file. JSON files parse as YAML.
func loadRequest(path string) (handler.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return handler.Request{}, fmt.Errorf("failed to read request file: %w", err)
	}
	var req handler.Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return handler.Request{}, fmt.Errorf("failed to parse request file: %w", err)
	}
	return req, nil
}

func write(v any, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
