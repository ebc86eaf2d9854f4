// Package pipeline drives the generate, inject, run and repair cycle for one
// user request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aceteam-ai/hacker-dash/internal/inject"
	"github.com/aceteam-ai/hacker-dash/internal/supervisor"
	"github.com/aceteam-ai/hacker-dash/internal/usage"
)

// MaxRetries is the number of repair attempts after the first run.
const MaxRetries = 2

// DebugFile is the default name of the first attempt's instrumented payload.
const DebugFile = "debug_injected.py"

// ErrRetriesExhausted is returned by Outcome.Err when every attempt failed.
var ErrRetriesExhausted = errors.New("program still failing after all repair attempts")

// State is a step of the repair loop.
type State int

const (
	Idle State = iota
	Generating
	Injecting
	Running
	Repairing
	Succeeded
	ExhaustedRetries
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Injecting:
		return "injecting"
	case Running:
		return "running"
	case Repairing:
		return "repairing"
	case Succeeded:
		return "succeeded"
	case ExhaustedRetries:
		return "exhausted-retries"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Provider generates and repairs programs.
type Provider interface {
	Generate(ctx context.Context, prompt string, status func(string)) (string, error)
	Repair(ctx context.Context, source, errText string) (string, error)
}

// Metrics supplies the usage aggregate shown by the injected panel.
type Metrics interface {
	Aggregate(ctx context.Context) (usage.Aggregate, error)
}

// Runner executes an instrumented payload.
type Runner interface {
	Run(ctx context.Context, payload string) (supervisor.Result, error)
}

// Request is one user prompt.
type Request struct {
	Prompt string

	// Status receives progress text from generation (optional)
	Status func(string)
}

// Attempt records one run of the loop.
type Attempt struct {
	Index    int
	Source   string
	ExitCode int
	Stderr   string
}

// Outcome is the terminal result of Run.
type Outcome struct {
	State State

	// Attempts is the index of the succeeding attempt, or the total number
	// of runs when retries are exhausted
	Attempts int

	// Source is the final instrumented payload
	Source string

	// LastError is the stderr of the final failed run
	LastError string

	History []Attempt
}

// Err returns ErrRetriesExhausted for an exhausted outcome, nil otherwise.
func (o Outcome) Err() error {
	if o.State == ExhaustedRetries {
		return ErrRetriesExhausted
	}
	return nil
}

// Pipeline holds the collaborators of the repair loop.
type Pipeline struct {
	Provider Provider
	Metrics  Metrics
	Runner   Runner

	// DebugPath receives the first attempt's instrumented payload
	// (default: debug_injected.py; "-" disables it)
	DebugPath string

	// OnTransition is called on every state change (optional)
	OnTransition func(from, to State, attempt int)

	// LogFn is called for log messages (optional)
	LogFn func(level, msg string)
}

// Run executes the loop for req. A generation or repair failure is returned
// as an error; a program that keeps failing is reported through the outcome.
func (p *Pipeline) Run(ctx context.Context, req Request) (Outcome, error) {
	var (
		state   = Idle
		index   int
		source  string
		history []Attempt
	)

	move := func(to State) {
		if p.OnTransition != nil {
			p.OnTransition(state, to, index)
		}
		state = to
	}

	move(Generating)
	source, err := p.Provider.Generate(ctx, req.Prompt, req.Status)
	if err != nil {
		return Outcome{State: state}, fmt.Errorf("generate: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return Outcome{State: state, Attempts: index, History: history}, err
		}

		move(Injecting)
		source = inject.Inject(source, p.aggregate(ctx))
		if index == 0 {
			p.writeDebug(source)
		}

		move(Running)
		res, err := p.Runner.Run(ctx, source)
		if err != nil {
			return Outcome{State: state, Attempts: index, History: history}, err
		}
		history = append(history, Attempt{
			Index:    index,
			Source:   source,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		})

		if res.Success() {
			move(Succeeded)
			return Outcome{
				State:    state,
				Attempts: index,
				Source:   source,
				History:  history,
			}, nil
		}

		p.log("warning", fmt.Sprintf("attempt %d exited with code %d", index, res.ExitCode))

		if index == MaxRetries {
			move(ExhaustedRetries)
			return Outcome{
				State:     state,
				Attempts:  index + 1,
				Source:    source,
				LastError: res.Stderr,
				History:   history,
			}, nil
		}

		move(Repairing)
		repaired, err := p.Provider.Repair(ctx, source, res.Stderr)
		if err != nil {
			return Outcome{State: state, Attempts: index + 1, History: history}, fmt.Errorf("repair: %w", err)
		}
		source = repaired
		index++
	}
}

// aggregate reads the current usage snapshot. A read failure yields a zero
// aggregate.
func (p *Pipeline) aggregate(ctx context.Context) usage.Aggregate {
	if p.Metrics == nil {
		return usage.Aggregate{}
	}
	agg, err := p.Metrics.Aggregate(ctx)
	if err != nil {
		p.log("warning", fmt.Sprintf("usage aggregate unavailable: %v", err))
		return usage.Aggregate{}
	}
	return agg
}

func (p *Pipeline) writeDebug(source string) {
	path := p.DebugPath
	if path == "" {
		path = DebugFile
	}
	if path == "-" {
		return
	}
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		p.log("warning", fmt.Sprintf("failed to write %s: %v", path, err))
		return
	}
	p.log("debug", "instrumented payload written to "+path)
}

func (p *Pipeline) log(level, msg string) {
	if p.LogFn != nil {
		p.LogFn(level, msg)
	}
}
