// Package packet defines the wire packets this module's connection
// bring-up protocol needs: Handshake, Status, and Login direction. Each
// packet is one struct with Encode/Decode methods; callers switch on a
// packet ID plus the connection's protocol state to pick the right type,
// never on packet shape (spec.md §9: "must not attempt to distinguish
// packets by structural duck-typing").
package packet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/feather-mc/feather/internal/proto"
)

// Next-state values a client may declare in its Handshake packet.
const (
	NextStateStatus int32 = 1
	NextStateLogin  int32 = 2
)

// Handshake is the first packet read on any connection (ID 0x00).
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

// Decode reads a Handshake from payload.
func (h *Handshake) Decode(payload []byte) error {
	r := bytes.NewReader(payload)

	v, err := proto.ReadVarInt(r)
	if err != nil {
		return fmt.Errorf("handshake: protocol version: %w", err)
	}
	h.ProtocolVersion = v

	addr, err := proto.ReadString(r)
	if err != nil {
		return fmt.Errorf("handshake: server address: %w", err)
	}
	h.ServerAddress = addr

	var portBuf [2]byte
	if _, err := io.ReadFull(r, portBuf[:]); err != nil {
		return fmt.Errorf("handshake: server port: %w", err)
	}
	h.ServerPort = uint16(portBuf[0])<<8 | uint16(portBuf[1])

	next, err := proto.ReadVarInt(r)
	if err != nil {
		return fmt.Errorf("handshake: next state: %w", err)
	}
	h.NextState = next

	return nil
}
