package login

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"net"
	"testing"
	"time"

	"github.com/feather-mc/feather/internal/proto"
	"github.com/feather-mc/feather/internal/proto/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptionHandshakeSuccess(t *testing.T) {
	ctx := newTestContext(true)
	client, srv := pipeConns()

	type handshakeResult struct {
		secret []byte
		err    error
	}
	resultCh := make(chan handshakeResult, 1)
	go func() {
		secret, err := encryptionHandshake(ctx, srv)
		resultCh <- handshakeResult{secret, err}
	}()

	id, payload, err := client.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, packet.IDEncryptionRequest, id)

	var req packet.EncryptionRequest
	require.NoError(t, decodeEncryptionRequest(&req, payload))

	pub, err := x509.ParsePKIXPublicKey(req.PublicKey)
	require.NoError(t, err)
	rsaPub := pub.(*rsa.PublicKey)

	wantSecret := make([]byte, 16)
	_, err = rand.Read(wantSecret)
	require.NoError(t, err)

	encSecret, err := rsa.EncryptPKCS1v15(rand.Reader, rsaPub, wantSecret)
	require.NoError(t, err)
	encToken, err := rsa.EncryptPKCS1v15(rand.Reader, rsaPub, req.VerifyToken)
	require.NoError(t, err)

	resp := packet.EncryptionResponse{SharedSecret: encSecret, VerifyToken: encToken}
	body := encodeEncryptionResponse(t, resp)
	require.NoError(t, client.WritePacket(packet.IDEncryptionResponse, body))

	select {
	case r := <-resultCh:
		require.NoError(t, r.err)
		assert.Equal(t, wantSecret, r.secret)
	case <-time.After(2 * time.Second):
		t.Fatal("encryptionHandshake did not return")
	}
}

func TestEncryptionHandshakeRejectsBadVerifyToken(t *testing.T) {
	ctx := newTestContext(true)
	client, srv := pipeConns()

	resultCh := make(chan error, 1)
	go func() {
		_, err := encryptionHandshake(ctx, srv)
		resultCh <- err
	}()

	_, payload, err := client.ReadPacket()
	require.NoError(t, err)
	var req packet.EncryptionRequest
	require.NoError(t, decodeEncryptionRequest(&req, payload))

	pub, err := x509.ParsePKIXPublicKey(req.PublicKey)
	require.NoError(t, err)
	rsaPub := pub.(*rsa.PublicKey)

	badToken := append([]byte(nil), req.VerifyToken...)
	badToken[0] ^= 0xFF

	secret := make([]byte, 16)
	encSecret, _ := rsa.EncryptPKCS1v15(rand.Reader, rsaPub, secret)
	encToken, _ := rsa.EncryptPKCS1v15(rand.Reader, rsaPub, badToken)

	resp := packet.EncryptionResponse{SharedSecret: encSecret, VerifyToken: encToken}
	body := encodeEncryptionResponse(t, resp)
	require.NoError(t, client.WritePacket(packet.IDEncryptionResponse, body))

	select {
	case err := <-resultCh:
		assert.ErrorIs(t, err, ErrCrypto)
	case <-time.After(2 * time.Second):
		t.Fatal("encryptionHandshake did not return")
	}
}

// decodeEncryptionRequest is a test-only mirror of EncryptionRequest's wire
// layout (it has no Decode method; production code only ever encodes it).
func decodeEncryptionRequest(req *packet.EncryptionRequest, payload []byte) error {
	r := &offsetReader{data: payload}
	serverID, err := proto.ReadString(r)
	if err != nil {
		return err
	}
	req.ServerID = serverID

	pkLen, err := proto.ReadVarInt(r)
	if err != nil {
		return err
	}
	req.PublicKey = r.next(int(pkLen))

	tokLen, err := proto.ReadVarInt(r)
	if err != nil {
		return err
	}
	req.VerifyToken = r.next(int(tokLen))
	return nil
}

func encodeEncryptionResponse(t *testing.T, resp packet.EncryptionResponse) []byte {
	t.Helper()
	w := &offsetReader{}
	w.writeVarInt(len(resp.SharedSecret))
	w.data = append(w.data, resp.SharedSecret...)
	w.writeVarInt(len(resp.VerifyToken))
	w.data = append(w.data, resp.VerifyToken...)
	return w.data
}

type offsetReader struct {
	data []byte
	off  int
}

func (r *offsetReader) ReadByte() (byte, error) {
	if r.off >= len(r.data) {
		return 0, net.ErrClosed
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *offsetReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, net.ErrClosed
	}
	n := copy(p, r.data[r.off:])
	r.off += n
	return n, nil
}

func (r *offsetReader) next(n int) []byte {
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *offsetReader) writeVarInt(v int) {
	uv := uint32(v)
	for {
		b := byte(uv & 0x7F)
		uv >>= 7
		if uv != 0 {
			b |= 0x80
		}
		r.data = append(r.data, b)
		if uv == 0 {
			return
		}
	}
}
