package llm

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned once a Scripted generator has no replies left.
var ErrScriptExhausted = errors.New("scripted generator: no replies left")

// Scripted replays canned replies in order and records the prompts it saw.
// It stands in for a real service in tests and offline runs.
type Scripted struct {
	mu      sync.Mutex
	replies []string
	Prompts []string
}

func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies}
}

func (s *Scripted) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if len(s.replies) == 0 {
		return "", ErrScriptExhausted
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}
