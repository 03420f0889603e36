package keywords

import "context"

// ChatCompleter answers a system/user prompt pair via an LLM.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
