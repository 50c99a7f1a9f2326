package summarizer

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/summachat/backend/internal/model/summary"
)

const instructionsTemplate = `Summarize the text provided by the user.

Rules:
- Paraphrase into clear, well-structured prose; do not copy whole sentences.
- Aim for %d to %d words. No lists, no headings, no preamble.
- Keep names, numbers and dates that carry the meaning.
- Output only the summary, in the same language as the input.`

// wordsPerToken approximates the model-length budget in words.
const wordsPerToken = 0.75

// buildInstructions turns generation params into a system prompt for chat
// models, which do not accept length bounds or penalties directly.
func buildInstructions(params summary.Params) string {
	minWords, maxWords := wordBounds(params)

	var b strings.Builder
	b.WriteString(fmt.Sprintf(instructionsTemplate, minWords, maxWords))
	if params.RepetitionPenalty > 1 {
		b.WriteString("\n- Never repeat a phrase.")
	}
	if params.LengthPenalty > 1 {
		b.WriteString("\n- Prefer the upper end of the word range.")
	} else if params.LengthPenalty < 1 {
		b.WriteString("\n- Prefer the lower end of the word range.")
	}
	return b.String()
}

func wordBounds(params summary.Params) (int, int) {
	minWords := int(float64(params.MinLength) * wordsPerToken)
	maxWords := int(float64(params.MaxLength) * wordsPerToken)
	if maxWords < 1 {
		maxWords = 1
	}
	if minWords > maxWords {
		minWords = maxWords
	}
	return minWords, maxWords
}

// maxOutputTokens leaves headroom over the summary budget so that a model
// does not stop mid-sentence.
func maxOutputTokens(params summary.Params) int {
	return params.MaxLength * 2
}
