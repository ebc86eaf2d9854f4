// cmd/generate.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aceteam-ai/hacker-dash/internal/config"
	"github.com/aceteam-ai/hacker-dash/internal/pipeline"
	"github.com/aceteam-ai/hacker-dash/internal/provider"
	"github.com/aceteam-ai/hacker-dash/internal/supervisor"
	"github.com/aceteam-ai/hacker-dash/internal/tui"
	"github.com/aceteam-ai/hacker-dash/internal/tui/whimsy"
	"github.com/aceteam-ai/hacker-dash/internal/ui"
	"github.com/aceteam-ai/hacker-dash/internal/usage"
)

var generateProvider string
var generateDebugFile string

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate and run a dashboard from a prompt",
	Long: `Ask the configured model for a Textual dashboard, add the API stats
panel to it and run it with uv. If the dashboard crashes its error output is
sent back to the model for a fix, at most twice.

The instrumented program of the first attempt is written to
debug_injected.py in the current directory.

Example:
  hacker-dash generate "matrix rain with a CPU monitor"
  hacker-dash generate --provider gemini "network traffic radar"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(strings.Join(args, " "), generateProvider, generateDebugFile)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateProvider, "provider", "p", "", "Provider to use (anthropic, gemini, openai)")
	generateCmd.Flags().StringVar(&generateDebugFile, "debug-file", pipeline.DebugFile, `Where to write the first instrumented program ("-" to skip)`)
	rootCmd.AddCommand(generateCmd)
}

// runPipeline generates, runs and repairs one dashboard.
func runPipeline(prompt, providerFlag, debugFile string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	name := cfg.ResolveProvider(providerFlag)
	apiKey, err := cfg.APIKey(name)
	if err != nil {
		return err
	}

	dbPath, err := config.UsageDBPath()
	if err != nil {
		return err
	}
	store, err := usage.OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open usage store: %w", err)
	}
	defer store.Close()

	pc := cfg.Provider(name)
	prov, err := provider.DefaultRegistry().New(name, provider.Config{
		APIKey:  apiKey,
		Model:   pc.Model,
		BaseURL: pc.BaseURL,
	}, provider.Options{
		Recorder:     store,
		StatusPacing: cfg.Pacing(),
		LogFn:        logFn,
	})
	if err != nil {
		return err
	}

	runner := supervisor.New(supervisor.Config{
		Command:   cfg.RunnerCommand(),
		KillGrace: cfg.Runner.KillGrace,
	})
	Debug("provider: %s, runner: %s", name, strings.Join(cfg.RunnerCommand(), " "))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(tui.Banner("HACKER-DASH", fmt.Sprintf("provider: %s  |  %q", name, prompt)))

	sl := ui.NewStatusLine()
	var (
		status *whimsy.Status
		repair *whimsy.SimpleSpinner
	)

	p := &pipeline.Pipeline{
		Provider:  prov,
		Metrics:   store,
		Runner:    runner,
		DebugPath: debugFile,
		LogFn:     logFn,
		OnTransition: func(from, to pipeline.State, attempt int) {
			Debug("state: %s -> %s (attempt %d)", from, to, attempt)
			switch {
			case to == pipeline.Generating:
				status = whimsy.StartStatus()
			case from == pipeline.Generating:
				status.Stop("Dashboard code generated", nil)
			case to == pipeline.Repairing:
				prefix := fmt.Sprintf("[repair %d/%d]", attempt+1, pipeline.MaxRetries)
				sl.Warning(fmt.Sprintf("Dashboard crashed, asking %s for a fix %s", name, prefix))
				repair = whimsy.NewSimpleSpinner(prefix, whimsy.RepairMessages)
				repair.Start()
			case from == pipeline.Repairing:
				repair.StopWithSuccess("Fix received")
				repair = nil
			case to == pipeline.Running:
				sl.Step(attempt+1, pipeline.MaxRetries+1, "Launching dashboard...")
			}
		},
	}

	out, err := p.Run(ctx, pipeline.Request{
		Prompt: prompt,
		Status: func(s string) { status.Update(s) },
	})
	if err != nil {
		if repair != nil {
			repair.StopWithError(err.Error())
		}
		switch {
		case status != nil && !status.Stopped():
			// Prints its own interrupted line.
			status.Stop("", err)
		case errors.Is(err, context.Canceled):
			sl.Warning("Interrupted")
		}
		return err
	}

	switch out.State {
	case pipeline.Succeeded:
		msg := "Dashboard exited cleanly"
		if out.Attempts > 0 {
			msg += fmt.Sprintf(" after %d repair(s)", out.Attempts)
		}
		sl.Success(msg)
		return nil
	default:
		sl.Fail(fmt.Sprintf("Dashboard still crashing after %d attempts", out.Attempts))
		sl.Block("Last error:", out.LastError)
		return out.Err()
	}
}
