// cmd/stats.go
package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aceteam-ai/hacker-dash/internal/config"
	"github.com/aceteam-ai/hacker-dash/internal/tui"
	"github.com/aceteam-ai/hacker-dash/internal/ui"
	"github.com/aceteam-ai/hacker-dash/internal/usage"
)

var statsDashboard bool
var statsProvider string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show API usage statistics",
	Long: `Print totals for the most recent model calls (generations and repairs).

With --dashboard the totals are also turned into a generated dashboard.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsDashboard, "dashboard", false, "Generate a dashboard visualizing the statistics")
	statsCmd.Flags().StringVarP(&statsProvider, "provider", "p", "", "Provider to use with --dashboard")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath, err := config.UsageDBPath()
	if err != nil {
		return err
	}
	store, err := usage.OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open usage store: %w", err)
	}

	ctx := context.Background()
	records, err := store.ReadAll(ctx)
	store.Close()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		ui.NewStatusLine().Warning("No stats yet. Generate some dashboards first!")
		return nil
	}

	agg := usage.Summarize(records)
	fmt.Println(tui.TitleStyle.Render("═══ HACKER DASH INFERENCE STATS ═══"))
	fmt.Println(formatStats(agg, records))
	fmt.Println()

	if !statsDashboard {
		return nil
	}

	prompt := fmt.Sprintf("Create a dashboard showing inference statistics: %d calls, %d tokens, $%.4f cost, %.2fs avg latency",
		agg.Count, agg.TotalTokens, agg.TotalCost, agg.MeanLatency)
	return runPipeline(prompt, statsProvider, "-")
}

// formatStats renders the totals followed by a per-provider breakdown.
func formatStats(agg usage.Aggregate, records []usage.Record) string {
	var sb strings.Builder
	sb.WriteString(tui.KeyValueBlock([][2]string{
		{"Total Calls", humanize.Comma(int64(agg.Count))},
		{"Total Tokens", humanize.Comma(agg.TotalTokens)},
		{"Total Cost", fmt.Sprintf("$%.4f", agg.TotalCost)},
		{"Avg Latency", fmt.Sprintf("%.2fs", agg.MeanLatency)},
		{"Last Call", humanize.Time(records[len(records)-1].Timestamp)},
	}))

	byProvider := make(map[string][]usage.Record)
	for _, r := range records {
		byProvider[r.Provider] = append(byProvider[r.Provider], r)
	}
	names := make([]string, 0, len(byProvider))
	for name := range byProvider {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("\n\n" + tui.SubtitleStyle.Render("By provider"))
	for _, name := range names {
		a := usage.Summarize(byProvider[name])
		fmt.Fprintf(&sb, "\n  %-10s %4d calls  %10s tokens  $%.4f",
			name, a.Count, humanize.Comma(a.TotalTokens), a.TotalCost)
	}
	return sb.String()
}
