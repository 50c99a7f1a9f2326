// Package summarizer is the gateway to the text summarization models.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/zhouzirui/summachat/backend/internal/config"
	"github.com/zhouzirui/summachat/backend/internal/model/summary"
)

var (
	ErrEmptyInput      = errors.New("input is empty")
	ErrEmptySummary    = errors.New("summary is empty")
	ErrUnknownProvider = errors.New("unknown summarizer provider")
	ErrNotBuilt        = errors.New("summarizer is not available")
)

// Summarizer produces a summary of text under the given generation params.
// Calls block until the backend answers; a nil error implies a non-empty result.
type Summarizer interface {
	Summarize(ctx context.Context, text string, params summary.Params) (string, error)
}

// Func adapts a plain function to Summarizer.
type Func func(ctx context.Context, text string, params summary.Params) (string, error)

// Summarize calls f.
func (f Func) Summarize(ctx context.Context, text string, params summary.Params) (string, error) {
	return f(ctx, text, params)
}

// New builds the backend selected by cfg.
func New(ctx context.Context, cfg config.GatewayConfig) (Summarizer, error) {
	switch provider := cfg.ResolveProvider(); provider {
	case config.ProviderArk:
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewChainSummarizer(ctx, chatModel)
	case config.ProviderOpenAI:
		return NewOpenAISummarizer(cfg.OpenAI)
	case config.ProviderExtractive:
		return NewExtractiveSummarizer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

// Lazy defers construction to the first Summarize call and shares the result
// for the lifetime of the process. A construction error is remembered and
// returned by every call.
func Lazy(build func() (Summarizer, error)) Summarizer {
	return &lazy{get: sync.OnceValues(func() (Summarizer, error) {
		s, err := build()
		if err != nil {
			log.Errorf("[summarizer] backend construction failed: %v", err)
			return nil, err
		}
		if s == nil {
			return nil, ErrNotBuilt
		}
		log.Info("[summarizer] backend ready")
		return s, nil
	})}
}

type lazy struct {
	get func() (Summarizer, error)
}

func (l *lazy) Summarize(ctx context.Context, text string, params summary.Params) (string, error) {
	s, err := l.get()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotBuilt, err)
	}
	return s.Summarize(ctx, text, params)
}
