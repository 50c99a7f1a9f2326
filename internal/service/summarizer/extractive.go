package summarizer

import (
	"context"
	"strings"

	"github.com/zhouzirui/summachat/backend/internal/analysis/sentence"
	"github.com/zhouzirui/summachat/backend/internal/model/summary"
)

// ExtractiveSummarizer is the offline fallback used when no model backend is
// configured. It keeps the leading sentences of the input until the minimum
// word budget is met and cuts the result at the maximum budget.
type ExtractiveSummarizer struct{}

// NewExtractiveSummarizer returns the fallback summarizer.
func NewExtractiveSummarizer() ExtractiveSummarizer {
	return ExtractiveSummarizer{}
}

// Summarize implements Summarizer.
func (ExtractiveSummarizer) Summarize(ctx context.Context, text string, params summary.Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	minWords, maxWords := wordBounds(params)

	picked := make([]string, 0, 8)
	count := 0
	for _, s := range sentence.Split(text) {
		words := strings.Fields(s)
		if len(words) == 0 {
			continue
		}
		if count+len(words) > maxWords {
			if count == 0 {
				picked = append(picked, strings.Join(words[:maxWords], " "))
			}
			break
		}
		picked = append(picked, strings.Join(words, " "))
		count += len(words)
		if count >= minWords {
			break
		}
	}

	out := strings.Join(picked, " ")
	if out == "" {
		return "", ErrEmptySummary
	}
	return out, nil
}
