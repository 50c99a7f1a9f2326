package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/zhouzirui/summachat/backend/internal/config"
	"github.com/zhouzirui/summachat/backend/internal/model/summary"
)

const limitMaxOutputTokens int64 = 2048

// OpenAISummarizer calls OpenAI's Responses API to produce summaries.
type OpenAISummarizer struct {
	client openai.Client
	model  string
}

// NewOpenAISummarizer builds a new summarizer instance.
func NewOpenAISummarizer(cfg config.OpenAIConfig) (*OpenAISummarizer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is empty")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAISummarizer{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Summarize implements Summarizer. An answer cut short by the output token
// limit is retried with a doubled limit, up to limitMaxOutputTokens.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string, params summary.Params) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	maxTokens := int64(maxOutputTokens(params))
	for {
		req := responses.ResponseNewParams{
			Model:           shared.ResponsesModel(s.model),
			MaxOutputTokens: openai.Int(maxTokens),
			Instructions:    openai.String(buildInstructions(params)),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(text),
			},
			TopP:        openai.Float(params.TopP),
			Temperature: openai.Float(params.SamplingTemperature()),
		}

		resp, err := s.client.Responses.New(ctx, req)
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxTokens < limitMaxOutputTokens {
				maxTokens = min(maxTokens*2, limitMaxOutputTokens)
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxTokens,
			)
		}

		out := strings.TrimSpace(resp.OutputText())
		if out == "" {
			return "", fmt.Errorf("%w (status = %s)", ErrEmptySummary, resp.Status)
		}
		return out, nil
	}
}
