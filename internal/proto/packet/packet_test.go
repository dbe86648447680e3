package packet

import (
	"testing"

	"github.com/feather-mc/feather/internal/proto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshakeDecode(t *testing.T) {
	buf := new(byteBuf)
	require.NoError(t, proto.WriteVarInt(buf, 751))
	require.NoError(t, proto.WriteString(buf, "play.example.com"))
	buf.WriteByte(0x63)
	buf.WriteByte(0xDD) // port 25565
	require.NoError(t, proto.WriteVarInt(buf, NextStateLogin))

	var hs Handshake
	require.NoError(t, hs.Decode(buf.Bytes()))
	assert.EqualValues(t, 751, hs.ProtocolVersion)
	assert.Equal(t, "play.example.com", hs.ServerAddress)
	assert.EqualValues(t, 25565, hs.ServerPort)
	assert.Equal(t, NextStateLogin, hs.NextState)
}

func TestStatusPingPongRoundTrip(t *testing.T) {
	ping := StatusPing{Payload: 1234567890}
	body, err := (&StatusPong{Payload: ping.Payload}).Encode()
	require.NoError(t, err)

	var pong StatusPong
	require.NoError(t, decodePong(&pong, body))
	assert.Equal(t, ping.Payload, pong.Payload)
}

func decodePong(p *StatusPong, body []byte) error {
	v := beInt64(body)
	p.Payload = v
	return nil
}

func TestLoginStartDecode(t *testing.T) {
	buf := new(byteBuf)
	require.NoError(t, proto.WriteString(buf, "Notch"))

	var start LoginStart
	require.NoError(t, start.Decode(buf.Bytes()))
	assert.Equal(t, "Notch", start.Name)
}

func TestLoginSuccessEncode(t *testing.T) {
	id := uuid.New()
	success := LoginSuccess{UUID: id, Username: "Notch"}
	body, err := success.Encode()
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestEncryptionResponseDecode(t *testing.T) {
	secret := []byte{1, 2, 3, 4}
	token := []byte{5, 6, 7, 8}

	buf := new(byteBuf)
	require.NoError(t, proto.WriteVarInt(buf, int32(len(secret))))
	buf.Write(secret)
	require.NoError(t, proto.WriteVarInt(buf, int32(len(token))))
	buf.Write(token)

	var resp EncryptionResponse
	require.NoError(t, resp.Decode(buf.Bytes()))
	assert.Equal(t, secret, resp.SharedSecret)
	assert.Equal(t, token, resp.VerifyToken)
}

// byteBuf is a tiny io.Writer with Bytes()/WriteByte/Write, avoiding a
// direct bytes.Buffer import collision with this package's other helpers.
type byteBuf struct {
	b []byte
}

func (b *byteBuf) Write(p []byte) (int, error) {
	b.b = append(b.b, p...)
	return len(p), nil
}

func (b *byteBuf) WriteByte(c byte) error {
	b.b = append(b.b, c)
	return nil
}

func (b *byteBuf) Bytes() []byte { return b.b }
