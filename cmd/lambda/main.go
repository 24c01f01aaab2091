// Package main is the entry point for the Langbly node Lambda function.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/pricofy/langbly-node/internal/config"
	"github.com/pricofy/langbly-node/internal/handler"
	"github.com/pricofy/langbly-node/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, "langbly-lambda", cfg.Environment)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	h := handler.New(cfg.Langbly, &http.Client{Timeout: cfg.Langbly.Timeout}, logger)
	w := newWarmer(os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), logger)

	lambda.Start(func(ctx context.Context, event json.RawMessage) (any, error) {
		return handleRequest(ctx, h, w, logger, event)
	})
}

func handleRequest(
	ctx context.Context, h *handler.Handler, w *warmer, logger *zap.Logger,
	event json.RawMessage,
) (any, error) {
	// Warmup detection (MUST be first - before any other processing)
	if warmup, ok := IsWarmupEvent(event); ok {
		return w.Handle(ctx, warmup)
	}

	// Parse the request and delegate to the handler
	var req handler.Request
	if err := json.Unmarshal(event, &req); err != nil {
		logger.Warn("Rejected malformed event", zap.Error(err))
		return nil, err
	}

	return h.Handle(ctx, req)
}
