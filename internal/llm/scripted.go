package llm

import (
	"context"
	"fmt"
	"sync"
)

// Scripted replays canned responses in call order. It backs USE_MOCK_LLM
// demo mode and every test that needs a deterministic client.
type Scripted struct {
	Responses []string
	Errs      []error

	mu      sync.Mutex
	Calls   int
	Prompts []string
}

func (s *Scripted) Complete(ctx context.Context, prompt string, _ Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.Calls
	s.Calls++
	s.Prompts = append(s.Prompts, prompt)
	if i < len(s.Errs) && s.Errs[i] != nil {
		return "", s.Errs[i]
	}
	if i < len(s.Responses) {
		return s.Responses[i], nil
	}
	return "", fmt.Errorf("scripted client exhausted after %d calls", len(s.Responses))
}
