package login

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/feather-mc/feather/internal/config"
	"github.com/feather-mc/feather/internal/proto"
	"github.com/feather-mc/feather/internal/proto/packet"
	"github.com/feather-mc/feather/internal/server"
)

// encryptionHandshake runs the RSA key-exchange half of online-mode login
// (spec.md §4.F): send EncryptionRequest, read EncryptionResponse, decrypt
// and validate both fields, then enable the connection's symmetric cipher.
// It returns the 16-byte shared secret so the caller can compute the
// session-join hash before the caller's own state advances.
func encryptionHandshake(ctx *server.Context, conn *proto.Conn) ([]byte, error) {
	pub, err := ctx.PublicKeyDER()
	if err != nil {
		return nil, fmt.Errorf("%w: server public key: %v", ErrCrypto, err)
	}

	verifyToken := make([]byte, config.VerifyTokenLength)
	if _, err := rand.Read(verifyToken); err != nil {
		return nil, fmt.Errorf("%w: generate verify token: %v", ErrCrypto, err)
	}

	req := packet.EncryptionRequest{
		ServerID:    "",
		PublicKey:   pub,
		VerifyToken: verifyToken,
	}
	body, err := req.Encode()
	if err != nil {
		return nil, err
	}
	if err := conn.WritePacket(packet.IDEncryptionRequest, body); err != nil {
		return nil, fmt.Errorf("%w: write encryption request: %v", ErrCrypto, err)
	}

	id, payload, err := conn.ReadPacket()
	if err != nil {
		return nil, fmt.Errorf("%w: reading encryption response: %v", ErrDecode, err)
	}
	if id != packet.IDEncryptionResponse {
		return nil, fmt.Errorf("%w: unexpected packet id 0x%02x in login state", ErrProtocolViolation, id)
	}

	var resp packet.EncryptionResponse
	if err := resp.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	key, err := ctx.RSAKey()
	if err != nil {
		return nil, fmt.Errorf("%w: server private key: %v", ErrCrypto, err)
	}

	gotToken, err := rsa.DecryptPKCS1v15(rand.Reader, key, resp.VerifyToken)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt verify token: %v", ErrCrypto, err)
	}
	if !bytes.Equal(gotToken, verifyToken) {
		return nil, fmt.Errorf("%w: verify token mismatch", ErrCrypto)
	}

	sharedSecret, err := rsa.DecryptPKCS1v15(rand.Reader, key, resp.SharedSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt shared secret: %v", ErrCrypto, err)
	}
	if len(sharedSecret) != config.SharedSecretLength {
		return nil, fmt.Errorf("%w: shared secret length %d, want %d", ErrCrypto, len(sharedSecret), config.SharedSecretLength)
	}

	var key16 CryptKey
	copy(key16[:], sharedSecret)
	if err := conn.EnableEncryption(key16); err != nil {
		return nil, fmt.Errorf("%w: enable encryption: %v", ErrCrypto, err)
	}

	return sharedSecret, nil
}
