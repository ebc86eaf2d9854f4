// Package provider adapts text-generation backends to the generate and
// repair operations of the pipeline.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aceteam-ai/hacker-dash/internal/usage"
)

// Provider generates and repairs programs.
type Provider interface {
	// Name returns the provider identity (e.g. "anthropic")
	Name() string

	// Generate produces a program for a user request. status, if not nil, is
	// called synchronously with progress text.
	Generate(ctx context.Context, prompt string, status func(string)) (string, error)

	// Repair returns a corrected version of source given the error it produced.
	Repair(ctx context.Context, source, errText string) (string, error)
}

// Recorder persists usage records. *usage.Store implements it.
type Recorder interface {
	Append(ctx context.Context, r usage.Record) error
}

// Config holds backend configuration.
type Config struct {
	APIKey  string
	Model   string        // Optional, backend default when empty
	BaseURL string        // Optional, backend default when empty
	Timeout time.Duration // Optional, defaults to 120s

	// MaxTokens bounds the completion (default: 8192)
	MaxTokens int
}

// Completion is the text and token counts of one model call.
type Completion struct {
	Text             string
	PromptTokens     int64
	CompletionTokens int64
}

// completer is the single operation each backend implements.
type completer interface {
	model() string
	complete(ctx context.Context, prompt string) (Completion, error)
}

// ErrUnknownProvider is returned for a provider name with no registered factory.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrEmptyResponse indicates the backend returned no text.
var ErrEmptyResponse = errors.New("no text content in response")

// GenerationError reports a failed model call: transport, authentication,
// quota or an unusable response.
type GenerationError struct {
	Provider string
	Op       string // "generate" or "repair"
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
