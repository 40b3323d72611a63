package runtime

import (
	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/drover-ai/drover/pkg/adapters/llm"
)

// TokenEstimator estimates token usage of text content.
type TokenEstimator func(text string) int

// NewTikTokenEstimator returns a TokenEstimator backed by tiktoken-go.
// Unknown models fall back to the cl100k_base encoding, which is close
// enough for budget guarding.
func NewTikTokenEstimator(model string) (TokenEstimator, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}

// estimateHistory sums the estimator over every text part of the history.
// Images and structured tool arguments are not counted; the budget guard is
// a coarse ceiling, not an exact accounting.
func estimateHistory(est TokenEstimator, system string, msgs []llm.Message) int {
	total := est(system)
	for _, m := range msgs {
		for _, b := range m.Content {
			if b.Text != "" {
				total += est(b.Text)
			}
			if b.ErrorText != "" {
				total += est(b.ErrorText)
			}
			for _, p := range b.Content {
				if p.Text != "" {
					total += est(p.Text)
				}
			}
		}
	}
	return total
}
