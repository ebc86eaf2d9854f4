package usage

import "strings"

// Price is the USD cost per 1,000 tokens.
type Price struct {
	Prompt     float64
	Completion float64
}

var prices = map[string]Price{
	"anthropic": {Prompt: 0.003, Completion: 0.015},
	"gemini":    {Prompt: 0.0003, Completion: 0.0025},
	"openai":    {Prompt: 0.00015, Completion: 0.0006},
}

// PriceFor returns the price table entry for a provider. Unknown providers
// are billed at the anthropic rate.
func PriceFor(provider string) Price {
	if p, ok := prices[strings.ToLower(provider)]; ok {
		return p
	}
	return prices["anthropic"]
}

// Cost computes the USD cost of a call.
func Cost(provider string, promptTokens, completionTokens int64) float64 {
	p := PriceFor(provider)
	return (float64(promptTokens)*p.Prompt + float64(completionTokens)*p.Completion) / 1000
}
