// Package llm defines the single call contract the pipeline depends on and
// an OpenAI-style gateway implementation of it. The pipeline only ever needs
// "complete(prompt) -> text"; everything else about the remote service is an
// external concern.
package llm

import "context"

type Params struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
}

type Client interface {
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}
