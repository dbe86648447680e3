package login

import (
	"fmt"

	"github.com/feather-mc/feather/internal/chat"
	"github.com/feather-mc/feather/internal/proto"
	"github.com/feather-mc/feather/internal/proto/packet"
	"github.com/feather-mc/feather/internal/server"
	"github.com/google/uuid"
)

// RunLogin drives the Login sub-state machine after the handshake, per
// spec.md §4.E-G: read LoginStart, branch on online mode, then send
// LoginSuccess and hand the promoted player back to the caller.
func RunLogin(ctx *server.Context, conn *proto.Conn) (Result, error) {
	id, payload, err := conn.ReadPacket()
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading login start: %v", ErrDecode, err)
	}
	if id != packet.IDLoginStart {
		return Result{}, fmt.Errorf("%w: unexpected packet id 0x%02x in login state", ErrProtocolViolation, id)
	}

	var start packet.LoginStart
	if err := start.Decode(payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	username := normalizeUsername(start.Name)
	if username == "" {
		_ = sendLoginDisconnect(conn, "Invalid username.")
		return Result{Disconnect: true}, nil
	}

	var profile Profile
	if ctx.Config.Server.OnlineMode {
		profile, err = onlineLogin(ctx, conn, username)
		if err != nil {
			_ = sendLoginDisconnect(conn, "Failed to verify username with Mojang's session service.")
			return Result{}, err
		}
	} else {
		// Offline mode trusts the client's declared name and mints a
		// fresh random identity; it does not derive a stable UUID from
		// the username (spec.md §9, Open Question: kept as specified).
		profile = Profile{ID: uuid.New(), Name: username}
	}

	success := packet.LoginSuccess{UUID: profile.ID, Username: profile.Name}
	body, err := success.Encode()
	if err != nil {
		return Result{}, err
	}
	if err := conn.WritePacket(packet.IDLoginSuccess, body); err != nil {
		return Result{}, fmt.Errorf("%w: write login success: %v", ErrDecode, err)
	}

	return Result{
		Player: &PromotedPlayer{
			RemoteAddr: conn.RemoteAddr(),
			Username:   profile.Name,
			UUID:       profile.ID,
			Conn:       conn,
		},
	}, nil
}

// onlineLogin runs the encryption handshake and then authenticates the
// resulting session hash against Mojang, per spec.md §4.F-G.
func onlineLogin(ctx *server.Context, conn *proto.Conn, username string) (Profile, error) {
	sharedSecret, err := encryptionHandshake(ctx, conn)
	if err != nil {
		return Profile{}, err
	}

	pub, err := ctx.PublicKeyDER()
	if err != nil {
		return Profile{}, fmt.Errorf("%w: server public key: %v", ErrCrypto, err)
	}
	hash := serverHash(sharedSecret, pub)

	profile, err := authenticate(ctx, username, hash)
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// sendLoginDisconnect writes a Disconnect packet carrying reason as a
// red chat-JSON message (chat.Disconnect), best-effort: the connection is being torn down
// regardless of whether this write succeeds.
func sendLoginDisconnect(conn *proto.Conn, reason string) error {
	d := packet.Disconnect{Reason: chat.Disconnect(reason).String()}
	body, err := d.Encode()
	if err != nil {
		return err
	}
	return conn.WritePacket(packet.IDLoginDisconnect, body)
}
