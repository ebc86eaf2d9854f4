package provider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/aceteam-ai/hacker-dash/internal/usage"
)

// Options configures behaviour shared by every backend.
type Options struct {
	// Recorder receives one usage record per successful call (optional)
	Recorder Recorder

	// Limiter paces model calls (default: one call per second)
	Limiter *rate.Limiter

	// StatusPacing scales how long each themed status message is held before
	// the model call starts; zero shows them without delay
	StatusPacing float64

	// LogFn is called for log messages (optional)
	LogFn func(level, msg string)
}

// service implements Provider on top of a backend completer.
type service struct {
	name    string
	backend completer
	opts    Options
	now     func() time.Time
}

func newService(name string, backend completer, opts Options) *service {
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	return &service{
		name:    name,
		backend: backend,
		opts:    opts,
		now:     time.Now,
	}
}

func (s *service) Name() string {
	return s.name
}

// Generate shows the themed status sequence, calls the model with the system
// prompt and records usage.
func (s *service) Generate(ctx context.Context, prompt string, status func(string)) (string, error) {
	for _, step := range statusSteps {
		if status != nil {
			status(step.message)
		}
		if err := s.hold(ctx, step.hold); err != nil {
			return "", &GenerationError{Provider: s.name, Op: usage.KindGenerate, Err: err}
		}
	}
	if status != nil {
		status(finalStatus)
	}

	return s.call(ctx, usage.KindGenerate, GeneratePrompt(prompt))
}

// Repair asks the model to fix source given the error text it produced.
func (s *service) Repair(ctx context.Context, source, errText string) (string, error) {
	return s.call(ctx, usage.KindRepair, RepairPrompt(source, errText))
}

func (s *service) call(ctx context.Context, kind, prompt string) (string, error) {
	if err := s.opts.Limiter.Wait(ctx); err != nil {
		return "", &GenerationError{Provider: s.name, Op: kind, Err: err}
	}

	start := s.now()
	c, err := s.backend.complete(ctx, prompt)
	if err != nil {
		return "", &GenerationError{Provider: s.name, Op: kind, Err: err}
	}
	latency := s.now().Sub(start)

	code := StripFences(c.Text)
	if code == "" {
		return "", &GenerationError{Provider: s.name, Op: kind, Err: ErrEmptyResponse}
	}

	s.record(ctx, usage.Record{
		Timestamp:        start,
		Provider:         s.name,
		Model:            s.backend.model(),
		Kind:             kind,
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
		TotalTokens:      c.PromptTokens + c.CompletionTokens,
		LatencySeconds:   latency.Seconds(),
		Cost:             usage.Cost(s.name, c.PromptTokens, c.CompletionTokens),
	})
	return code, nil
}

// record appends a usage record. A failure to record never fails the call.
func (s *service) record(ctx context.Context, r usage.Record) {
	if s.opts.Recorder == nil {
		return
	}
	if err := s.opts.Recorder.Append(ctx, r); err != nil {
		s.log("warning", fmt.Sprintf("usage: record %s call failed: %v", r.Kind, err))
	}
}

func (s *service) hold(ctx context.Context, d time.Duration) error {
	d = time.Duration(float64(d) * s.opts.StatusPacing)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *service) log(level, msg string) {
	if s.opts.LogFn != nil {
		s.opts.LogFn(level, msg)
	}
}
