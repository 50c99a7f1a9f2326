package summary

import (
	"errors"
	"fmt"
)

// Params 描述摘要生成参数，对应预训练摘要模型可识别的字段。
type Params struct {
	MaxLength         int     `json:"maxLength"         env:"GEN_MAX_LENGTH"         envDefault:"120"`
	MinLength         int     `json:"minLength"         env:"GEN_MIN_LENGTH"         envDefault:"50"`
	DoSample          bool    `json:"doSample"          env:"GEN_DO_SAMPLE"          envDefault:"true"`
	TopK              int     `json:"topK"              env:"GEN_TOP_K"              envDefault:"50"`
	TopP              float64 `json:"topP"              env:"GEN_TOP_P"              envDefault:"0.95"`
	Temperature       float64 `json:"temperature"       env:"GEN_TEMPERATURE"        envDefault:"0.9"`
	NumBeams          int     `json:"numBeams"          env:"GEN_NUM_BEAMS"          envDefault:"4"`
	RepetitionPenalty float64 `json:"repetitionPenalty" env:"GEN_REPETITION_PENALTY" envDefault:"1.2"`
	LengthPenalty     float64 `json:"lengthPenalty"     env:"GEN_LENGTH_PENALTY"     envDefault:"1.0"`
}

// DefaultParams returns the generation settings the chatbot ships with.
func DefaultParams() Params {
	return Params{
		MaxLength:         120,
		MinLength:         50,
		DoSample:          true,
		TopK:              50,
		TopP:              0.95,
		Temperature:       0.9,
		NumBeams:          4,
		RepetitionPenalty: 1.2,
		LengthPenalty:     1.0,
	}
}

// Validate checks that the values are usable by every summarizer backend.
func (p Params) Validate() error {
	var errs []error
	if p.MaxLength <= 0 {
		errs = append(errs, fmt.Errorf("max length must be positive, got %d", p.MaxLength))
	}
	if p.MinLength < 0 {
		errs = append(errs, fmt.Errorf("min length must not be negative, got %d", p.MinLength))
	}
	if p.MinLength > p.MaxLength {
		errs = append(errs, fmt.Errorf("min length %d exceeds max length %d", p.MinLength, p.MaxLength))
	}
	if p.TopP <= 0 || p.TopP > 1 {
		errs = append(errs, fmt.Errorf("top_p must be in (0, 1], got %v", p.TopP))
	}
	if p.Temperature < 0 {
		errs = append(errs, fmt.Errorf("temperature must not be negative, got %v", p.Temperature))
	}
	if p.NumBeams < 1 {
		errs = append(errs, fmt.Errorf("num beams must be at least 1, got %d", p.NumBeams))
	}
	return errors.Join(errs...)
}

// SamplingTemperature returns the temperature to send to chat-style models.
// Greedy decoding is expressed as temperature 0.
func (p Params) SamplingTemperature() float64 {
	if !p.DoSample {
		return 0
	}
	return p.Temperature
}
