// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern. The dashboard runs
// one hub per stream: state snapshots, alerts, and camera frames.
package hub

// MessageType selects the websocket frame type for a broadcast.
type MessageType int

const (
	// JSONMessage carries state snapshots and alerts as text frames.
	JSONMessage MessageType = iota
	// BinaryMessage carries JPEG camera frames.
	BinaryMessage
)

// Message is one payload queued for broadcast.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps raw binary data.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
