package driven

import "context"

// LLMService is an optional language model. The text processor uses it
// for abstractive summaries and the tagger for classification; without
// one, summaries stay extractive and only rule and keyword tags apply.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// Summarise returns at most maxLength characters.
	Summarise(ctx context.Context, content string, maxLength int) (string, error)

	ModelName() string

	// Ping fails with domain.ErrLLMUnavailable when the endpoint cannot
	// be reached.
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions tune a single completion. Zero values use the
// adapter's defaults.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ChatMessage is one turn; Role is "system", "user" or "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tune a chat completion.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
