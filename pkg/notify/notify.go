// Package notify delivers intervention messages to the driver, primarily as
// synthesized speech.
package notify

import (
	"context"
	"sync"
)

// Speaker delivers one spoken message to the driver.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Mock records spoken texts for tests. SpeakFunc, when set, overrides the
// default success behavior.
type Mock struct {
	SpeakFunc func(ctx context.Context, text string) error

	mu    sync.Mutex
	texts []string
}

// Speak records the text and calls SpeakFunc if set.
func (m *Mock) Speak(ctx context.Context, text string) error {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, text)
	}
	return nil
}

// Spoken returns all texts delivered so far.
func (m *Mock) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.texts))
	copy(out, m.texts)
	return out
}

var _ Speaker = (*Mock)(nil)
