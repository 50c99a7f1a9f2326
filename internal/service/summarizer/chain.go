package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/summachat/backend/internal/model/summary"
)

// ChainSummarizer runs a prompt template and a chat model as a compiled eino chain.
type ChainSummarizer struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewChainSummarizer compiles the summarization chain around chatModel.
func NewChainSummarizer(ctx context.Context, chatModel model.BaseChatModel) (*ChainSummarizer, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is nil")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{instructions}"),
		schema.UserMessage("{text}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile summary chain: %w", err)
	}

	return &ChainSummarizer{chain: runnable}, nil
}

// Summarize implements Summarizer.
func (s *ChainSummarizer) Summarize(ctx context.Context, text string, params summary.Params) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	input := map[string]any{
		"instructions": buildInstructions(params),
		"text":         text,
	}

	resp, err := s.chain.Invoke(ctx, input, compose.WithChatModelOption(
		model.WithMaxTokens(maxOutputTokens(params)),
		model.WithTemperature(float32(params.SamplingTemperature())),
		model.WithTopP(float32(params.TopP)),
	))
	if err != nil {
		return "", fmt.Errorf("failed to run summary chain: %w", err)
	}
	if resp == nil {
		return "", ErrEmptySummary
	}

	out := strings.TrimSpace(resp.Content)
	if out == "" {
		return "", ErrEmptySummary
	}

	log.Debugf("[summarizer] chain summary input=%d output=%d", len(text), len(out))
	return out, nil
}
