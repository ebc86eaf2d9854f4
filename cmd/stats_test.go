package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/aceteam-ai/hacker-dash/internal/usage"
)

func TestFormatStats(t *testing.T) {
	records := []usage.Record{
		{Provider: "anthropic", TotalTokens: 1200000, Cost: 0.5, LatencySeconds: 2, Timestamp: time.Now().Add(-time.Hour)},
		{Provider: "gemini", TotalTokens: 34567, Cost: 0.01, LatencySeconds: 1, Timestamp: time.Now().Add(-time.Minute)},
		{Provider: "anthropic", TotalTokens: 1000, Cost: 0.02, LatencySeconds: 3, Timestamp: time.Now()},
	}
	out := formatStats(usage.Summarize(records), records)

	for _, want := range []string{
		"Total Calls:",
		"1,235,567",
		"$0.5300",
		"2.00s",
		"now",
		"By provider",
		"anthropic     2 calls",
		"gemini        1 calls",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}

	if strings.Index(out, "anthropic") > strings.Index(out, "gemini") {
		t.Error("providers should be listed in sorted order")
	}
}
