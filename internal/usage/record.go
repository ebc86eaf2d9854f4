package usage

import "time"

// Kinds of model calls that produce a usage record.
const (
	KindGenerate = "generate"
	KindRepair   = "repair"
)

// Record captures token, cost and latency metrics for a single model call.
type Record struct {
	// ID is a unique identifier (filled in on Append if empty)
	ID string

	Timestamp time.Time

	// Call identification
	Provider string
	Model    string
	Kind     string // "generate" or "repair"

	// Token usage
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64

	LatencySeconds float64
	Cost           float64 // USD
}

// Aggregate is a summary of all retained records at a point in time.
type Aggregate struct {
	Count       int
	TotalTokens int64
	TotalCost   float64

	// MeanLatency is zero when Count is zero.
	MeanLatency float64
}

// Summarize folds records into an Aggregate.
func Summarize(records []Record) Aggregate {
	var agg Aggregate
	var latency float64
	for _, r := range records {
		agg.Count++
		agg.TotalTokens += r.TotalTokens
		agg.TotalCost += r.Cost
		latency += r.LatencySeconds
	}
	if agg.Count > 0 {
		agg.MeanLatency = latency / float64(agg.Count)
	}
	return agg
}
