package landmark

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StreamProvider speaks to a landmark service over a persistent websocket
// session: binary JPEG frames out, JSON face lists back. Providers that hold
// model state between frames expose this transport instead of plain HTTP.
type StreamProvider struct {
	url    string
	apiKey string

	ws      *websocket.Conn
	wsMutex sync.Mutex

	closed bool
}

const streamHandshakeTimeout = 10 * time.Second

// NewStream dials the websocket landmark service.
func NewStream(url, apiKey string) (*StreamProvider, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: streamHandshakeTimeout,
	}

	var header map[string][]string
	if apiKey != "" {
		header = map[string][]string{"Authorization": {"Bearer " + apiKey}}
	}

	ws, _, err := dialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("landmark stream connect failed: %w", err)
	}

	p := &StreamProvider{url: url, apiKey: apiKey, ws: ws}
	if err := p.waitForReady(); err != nil {
		ws.Close()
		return nil, fmt.Errorf("landmark stream handshake: %w", err)
	}
	return p, nil
}

// waitForReady consumes the service's ready message after connecting.
func (p *StreamProvider) waitForReady() error {
	p.ws.SetReadDeadline(time.Now().Add(streamHandshakeTimeout))
	_, msg, err := p.ws.ReadMessage()
	p.ws.SetReadDeadline(time.Time{})
	if err != nil {
		return err
	}

	var ready struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &ready); err != nil {
		return err
	}
	if ready.Type != "ready" {
		return fmt.Errorf("expected ready, got %s", ready.Type)
	}
	return nil
}

// Detect writes one frame and reads the matching result. The write/read pair
// is held under the connection mutex so concurrent callers cannot interleave.
func (p *StreamProvider) Detect(ctx context.Context, jpeg []byte) ([]Face, error) {
	p.wsMutex.Lock()
	defer p.wsMutex.Unlock()

	if p.closed {
		return nil, fmt.Errorf("landmark stream closed")
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(streamHandshakeTimeout)
	}

	p.ws.SetWriteDeadline(deadline)
	if err := p.ws.WriteMessage(websocket.BinaryMessage, jpeg); err != nil {
		return nil, fmt.Errorf("send frame: %w", err)
	}

	p.ws.SetReadDeadline(deadline)
	_, msg, err := p.ws.ReadMessage()
	p.ws.SetReadDeadline(time.Time{})
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}

	var result detectResponse
	if err := json.Unmarshal(msg, &result); err != nil {
		return nil, fmt.Errorf("parse result: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("landmark service: %s", result.Error)
	}

	return result.Faces, nil
}

// Close shuts the websocket session down.
func (p *StreamProvider) Close() error {
	p.wsMutex.Lock()
	defer p.wsMutex.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.ws.Close()
}

var _ Provider = (*StreamProvider)(nil)
