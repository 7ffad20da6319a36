// Package hub fans messages out to websocket clients.
//
// One goroutine (Run) owns the client set; clients are added and removed
// through channels and every client has its own writer goroutine, so a
// connection is only ever written from one place. A client that cannot keep
// up is disconnected instead of slowing the others down.
package hub

// MessageType indicates the websocket frame type used for a message.
type MessageType int

const (
	// JSONMessage is sent as a text frame.
	JSONMessage MessageType = iota
	// BinaryMessage is sent as a binary frame (JPEG previews).
	BinaryMessage
)

func (t MessageType) String() string {
	if t == BinaryMessage {
		return "binary"
	}
	return "json"
}

// Message is one broadcast payload. Data is shared between clients and must
// not be modified after Broadcast.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps binary data.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
