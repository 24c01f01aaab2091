package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"
)

const (
	// WarmupSource identifies warmup events from CloudWatch
	WarmupSource = "warmup"

	// WarmupDelay ensures instances overlap to create true concurrency
	WarmupDelay = 75 * time.Millisecond

	// MaxWarmupConcurrency caps self-invocations per warmup event
	MaxWarmupConcurrency = 50
)

// WarmupEvent represents the CloudWatch Event payload for warmup
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse is the response returned by warmup operations
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// invoker is the part of the Lambda API the warmer needs
type invoker interface {
	Invoke(
		ctx context.Context, params *lambdasdk.InvokeInput,
		optFns ...func(*lambdasdk.Options),
	) (*lambdasdk.InvokeOutput, error)
}

// warmer keeps instances of this function warm by invoking itself
type warmer struct {
	functionName string
	newInvoker   func(ctx context.Context) (invoker, error)
	delay        time.Duration
	logger       *zap.Logger
}

var errNoFunctionName = errors.New("AWS_LAMBDA_FUNCTION_NAME is not set")

func newWarmer(functionName string, logger *zap.Logger) *warmer {
	return &warmer{
		functionName: functionName,
		newInvoker:   defaultInvoker,
		delay:        WarmupDelay,
		logger:       logger,
	}
}

func defaultInvoker(ctx context.Context) (invoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return lambdasdk.NewFromConfig(cfg), nil
}

// IsWarmupEvent checks if the event is a warmup event
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var eventMap map[string]any
	if err := json.Unmarshal(event, &eventMap); err != nil {
		return nil, false
	}

	source, ok := eventMap["source"].(string)
	if !ok || source != WarmupSource {
		return nil, false
	}

	warmup := &WarmupEvent{Source: source}

	// Parse concurrency (optional, defaults to 0)
	if concurrency, ok := eventMap["concurrency"].(float64); ok {
		warmup.Concurrency = min(max(int(concurrency), 0), MaxWarmupConcurrency)
	}

	return warmup, true
}

// Handle processes a warmup event and optionally self-invokes to maintain
// multiple warm instances.
func (w *warmer) Handle(ctx context.Context, warmup *WarmupEvent) (any, error) {
	instancesWarmed := 1 // This instance counts as 1

	if warmup.Concurrency > 0 {
		if err := w.selfInvoke(ctx, warmup.Concurrency); err != nil {
			w.logger.Warn("Warmup self-invocation failed", zap.Error(err))
		} else {
			instancesWarmed += warmup.Concurrency
		}
	}

	// Brief delay to ensure instances overlap
	time.Sleep(w.delay)

	return map[string]any{
		"statusCode": 200,
		"body": WarmupResponse{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
		},
	}, nil
}

// selfInvoke invokes this Lambda function count times asynchronously to
// create additional warm instances.
func (w *warmer) selfInvoke(ctx context.Context, count int) error {
	if w.functionName == "" {
		return errNoFunctionName
	}

	client, err := w.newInvoker(ctx)
	if err != nil {
		return err
	}

	// Payload for child invocations (concurrency=0 to prevent infinite loop)
	payload, err := json.Marshal(WarmupEvent{
		Source:      WarmupSource,
		Concurrency: 0,
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var invokeErr error
	var errMu sync.Mutex

	for range count {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})

			if err != nil {
				errMu.Lock()
				if invokeErr == nil {
					invokeErr = err
				}
				errMu.Unlock()
			}
		}()
	}

	wg.Wait()
	return invokeErr
}
