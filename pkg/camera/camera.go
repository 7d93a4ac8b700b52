// Package camera provides the frame source for a monitoring session.
package camera

import (
	"fmt"
	"sync"
)

// VideoSource produces JPEG frames for detection and streaming.
type VideoSource interface {
	CaptureJPEG() ([]byte, error)
}

// Mock is a scripted video source for tests and development. It cycles
// through its frames.
type Mock struct {
	Frames [][]byte
	Err    error

	mu sync.Mutex
	i  int
}

// CaptureJPEG returns the next scripted frame.
func (m *Mock) CaptureJPEG() ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Frames) == 0 {
		return nil, fmt.Errorf("no frames scripted")
	}
	frame := m.Frames[m.i%len(m.Frames)]
	m.i++
	return frame, nil
}

var _ VideoSource = (*Mock)(nil)
