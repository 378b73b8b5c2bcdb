package llm

import "context"

type Provider interface {
	// Complete sends a single user prompt and returns the model's reply
	Complete(ctx context.Context, prompt string, opts ...Option) (*Response, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model     string
	MaxTokens int64
	// Temperature is left to the provider default when nil
	Temperature *float64
}

func WithModel(model string) Option {
	return func(o *Options) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

func WithMaxTokens(n int64) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

type Response struct {
	Content string
	Model   string
	Usage   Usage
}
