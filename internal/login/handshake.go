package login

import (
	"fmt"
	"net"
	"strings"

	"github.com/feather-mc/feather/internal/proto"
	"github.com/feather-mc/feather/internal/proto/packet"
	"github.com/feather-mc/feather/internal/server"
	"golang.org/x/text/width"
)

// quota is process-wide: one rate limiter per remote host, shared by
// every connection's HandshakeRouter.
var quota = newLoginQuota(2, 5)

// Route reads exactly one Handshake packet from conn and dispatches to
// the Status or Login flow, per spec.md §4.C. Any other value, a decode
// error, or EOF before the packet arrives is a fatal connection error.
func Route(ctx *server.Context, conn *proto.Conn) (Result, error) {
	id, payload, err := conn.ReadPacket()
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading handshake: %v", ErrDecode, err)
	}
	if id != 0x00 {
		return Result{}, fmt.Errorf("%w: unexpected packet id 0x%02x in handshake state", ErrProtocolViolation, id)
	}

	var hs packet.Handshake
	if err := hs.Decode(payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	conn.SetProtocol(hs.ProtocolVersion)

	switch hs.NextState {
	case packet.NextStateStatus:
		conn.SetState(proto.Status)
		return RespondStatus(ctx, conn)
	case packet.NextStateLogin:
		conn.SetState(proto.Login)
		host, _, splitErr := net.SplitHostPort(conn.RemoteAddr().String())
		if splitErr != nil {
			host = conn.RemoteAddr().String()
		}
		if !quota.Allow(host) {
			_ = sendLoginDisconnect(conn, "You are logging in too fast, please calm down and retry.")
			return Result{Disconnect: true}, nil
		}
		return RunLogin(ctx, conn)
	default:
		return Result{}, fmt.Errorf("%w: invalid next_state %d", ErrProtocolViolation, hs.NextState)
	}
}

// normalizeUsername trims surrounding whitespace and folds fullwidth/
// halfwidth form variants (width.Fold) that some non-Latin input methods
// substitute for plain ASCII; the Minecraft protocol otherwise limits
// usernames to ASCII and this module trusts the client-declared name in
// offline mode as-is.
func normalizeUsername(name string) string {
	return strings.TrimSpace(width.Fold.String(name))
}
