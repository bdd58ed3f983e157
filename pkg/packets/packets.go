// Package `packets` defines the JSON packets spoken over the queue's WebSocket endpoint.
package packets

import "encoding/json"

// Every message in either direction is a header and its data.
type Packet struct {
	Header string          `json:"header"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func MakePacket(raw []byte) (Packet, error) {
	var p Packet
	if err := json.Unmarshal(raw, &p); err != nil {
		return Packet{}, err
	}
	return p, nil
}

// Client headers.
const (
	HeaderEnqueue = "ENQUEUE"
	HeaderDequeue = "DEQUEUE"
	HeaderMin     = "MIN"
	HeaderSize    = "SIZE"
)

// Server headers.
const (
	HeaderHello = "HELLO"
	HeaderValue = "VALUE"
	HeaderError = "ERROR"
)

// Client packets

type DataEnqueue struct {
	Values []int64 `json:"values"`
}

// Server packets

type DataHello struct {
	Name    string `json:"name"`
	Order   string `json:"order"`
	Session int    `json:"session"`
	Size    uint   `json:"size"`
}

// Sent in reply to ENQUEUE and SIZE (no value) and to DEQUEUE and MIN.
type DataValue struct {
	Value *int64 `json:"value,omitempty"`
	Size  uint   `json:"size"`
}

type DataError struct {
	Request string `json:"request"`
	Message string `json:"message"`
	// Set when the request failed because the queue is empty.
	Empty bool `json:"empty,omitempty"`
}
