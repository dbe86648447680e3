package packet

import (
	"bytes"
	"fmt"

	"github.com/feather-mc/feather/internal/proto"
)

// Status state packet IDs.
const (
	IDStatusRequest  int32 = 0x00
	IDStatusResponse int32 = 0x00
	IDStatusPing     int32 = 0x01
	IDStatusPong     int32 = 0x01
)

// StatusRequest is the empty client request that triggers a status response.
type StatusRequest struct{}

// Decode is a no-op: StatusRequest carries no fields.
func (StatusRequest) Decode([]byte) error { return nil }

// StatusResponse carries the server-list JSON document.
type StatusResponse struct {
	JSON string
}

// Encode writes the StatusResponse payload (VarInt-prefixed JSON string).
func (r *StatusResponse) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := proto.WriteString(buf, r.JSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StatusPing is the client's latency probe; the payload is echoed back
// unmodified in a StatusPong.
type StatusPing struct {
	Payload int64
}

// Decode reads an 8-byte big-endian payload.
func (p *StatusPing) Decode(payload []byte) error {
	if len(payload) < 8 {
		return fmt.Errorf("status ping: payload too short")
	}
	p.Payload = beInt64(payload)
	return nil
}

// StatusPong echoes a StatusPing's payload.
type StatusPong struct {
	Payload int64
}

// Encode writes the 8-byte big-endian payload.
func (p *StatusPong) Encode() ([]byte, error) {
	return beInt64Bytes(p.Payload), nil
}

func beInt64(b []byte) int64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return int64(v)
}

func beInt64Bytes(v int64) []byte {
	out := make([]byte, 8)
	uv := uint64(v)
	for i := 7; i >= 0; i-- {
		out[i] = byte(uv)
		uv >>= 8
	}
	return out
}
