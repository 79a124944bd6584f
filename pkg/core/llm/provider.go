// Package llm abstracts the vision-language model used by the extraction
// collaborator. The computation engines never touch this package.
package llm

import "context"

// Provider is the interface all model providers implement.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}
