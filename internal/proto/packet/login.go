package packet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/feather-mc/feather/internal/proto"
	"github.com/google/uuid"
)

// Login state packet IDs.
const (
	IDLoginStart          int32 = 0x00
	IDEncryptionRequest    int32 = 0x01
	IDEncryptionResponse   int32 = 0x01
	IDLoginSuccess         int32 = 0x02
	IDLoginDisconnect      int32 = 0x00
)

// LoginStart is the client's declared username; trusted only in offline mode.
type LoginStart struct {
	Name string
}

// Decode reads a LoginStart from payload.
func (l *LoginStart) Decode(payload []byte) error {
	r := bytes.NewReader(payload)
	name, err := proto.ReadString(r)
	if err != nil {
		return fmt.Errorf("login start: %w", err)
	}
	l.Name = name
	return nil
}

// EncryptionRequest asks the client to establish a shared secret via RSA.
type EncryptionRequest struct {
	ServerID    string // always empty, per spec.md §4.F
	PublicKey   []byte // DER-encoded SubjectPublicKeyInfo
	VerifyToken []byte // 16 random bytes
}

// Encode writes the EncryptionRequest payload.
func (r *EncryptionRequest) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := proto.WriteString(buf, r.ServerID); err != nil {
		return nil, err
	}
	if err := proto.WriteVarInt(buf, int32(len(r.PublicKey))); err != nil {
		return nil, err
	}
	buf.Write(r.PublicKey)
	if err := proto.WriteVarInt(buf, int32(len(r.VerifyToken))); err != nil {
		return nil, err
	}
	buf.Write(r.VerifyToken)
	return buf.Bytes(), nil
}

// EncryptionResponse carries the client's RSA-encrypted shared secret and
// verify token.
type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

// Decode reads an EncryptionResponse from payload.
func (r *EncryptionResponse) Decode(payload []byte) error {
	br := bytes.NewReader(payload)

	secret, err := readByteArray(br)
	if err != nil {
		return fmt.Errorf("encryption response: shared secret: %w", err)
	}
	r.SharedSecret = secret

	token, err := readByteArray(br)
	if err != nil {
		return fmt.Errorf("encryption response: verify token: %w", err)
	}
	r.VerifyToken = token
	return nil
}

func readByteArray(r *bytes.Reader) ([]byte, error) {
	n, err := proto.ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 1024 {
		return nil, fmt.Errorf("byte array length %d out of bounds", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// LoginSuccess ends the login state machine successfully, promoting the
// connection to Play.
type LoginSuccess struct {
	UUID     uuid.UUID
	Username string
}

// Encode writes the LoginSuccess payload: hyphenated UUID string + username.
func (s *LoginSuccess) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := proto.WriteString(buf, s.UUID.String()); err != nil {
		return nil, err
	}
	if err := proto.WriteString(buf, s.Username); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Disconnect carries a structured chat-JSON reason, sent when a login is
// rejected for a rate limit, an invalid username, or a failed online-mode
// login, so the client sees more than a bare TCP reset (spec.md §9).
type Disconnect struct {
	Reason string // JSON chat component
}

// Encode writes the Disconnect payload.
func (d *Disconnect) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := proto.WriteString(buf, d.Reason); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
