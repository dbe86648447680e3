// Package login drives the connection bring-up protocol: it reads the
// handshake, answers status pings, and runs the Login sub-state machine
// (offline or online, with RSA encryption and Mojang session lookup in
// the online case), per spec.md §4.
package login

import (
	"net"

	"github.com/feather-mc/feather/internal/proto"
	"github.com/google/uuid"
)

// CryptKey is the 16-byte symmetric key shared between the encryption
// handshake and the connection's AES/CFB8 codec (spec.md §3).
type CryptKey [16]byte

// ProfileProperty is one signed property of a game profile (e.g. a skin).
type ProfileProperty struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// Profile is the canonical identity of a joined player (spec.md §3). In
// offline mode, ID is freshly generated and Properties is empty. In
// online mode all three fields come from the session service.
type Profile struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Properties []ProfileProperty `json:"properties"`
}

// PromotedPlayer is the handoff record a successful LoginFlow produces.
// After handoff the login subsystem holds no further references to it;
// ownership passes to the surrounding server (spec.md §3).
type PromotedPlayer struct {
	RemoteAddr net.Addr
	Username   string
	UUID       uuid.UUID
	Conn       *proto.Conn // the opaque codec_handle spec.md describes
}

// Result is what LoginFlow (or the status flow) yields for a connection.
type Result struct {
	// Disconnect is true when the connection should simply be closed and
	// there is no error: a finished status ping (terminal), or a login
	// rejected after a Disconnect packet was sent (rate limit, invalid
	// username). Fatal failures return a zero Result together with an error.
	Disconnect bool
	Player     *PromotedPlayer
}
