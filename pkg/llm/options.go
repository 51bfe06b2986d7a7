// Package llm описывает общий язык общения с LLM провайдерами:
// сообщения, вызовы инструментов и параметры генерации.
package llm

// GenerateOptions holds parameters for a single chat completion.
// Defaults come from the model definition in config.yaml and can be
// overridden per call.
type GenerateOptions struct {
	// Model is the model identifier (e.g., "llama-3.3-70b-versatile")
	Model string

	// Temperature controls randomness in responses (0 = provider default)
	Temperature float64

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int
}

// GenerateOption is a functional option for configuring GenerateOptions.
type GenerateOption func(*GenerateOptions)

// WithModel overrides the model for one call.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithTemperature overrides the temperature for one call.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens overrides the response length limit for one call.
func WithMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = tokens
	}
}

// ApplyOptions собирает GenerateOptions из базовых значений и опций.
//
// Аргументы, не являющиеся GenerateOption, пропускаются: так провайдер
// может передать сюда весь variadic хвост Generate.
func ApplyOptions(base GenerateOptions, opts ...any) GenerateOptions {
	for _, opt := range opts {
		if fn, ok := opt.(GenerateOption); ok {
			fn(&base)
		}
	}
	return base
}
