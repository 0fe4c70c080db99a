package llm

// GenerateRequest holds the parameters for a single text completion.
type GenerateRequest struct {
	// Prompt is the user prompt to complete.
	Prompt string

	// System is an optional system prompt prepended to the conversation.
	System string

	// Temperature controls sampling randomness. Zero means provider default.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
}
