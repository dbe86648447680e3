package proto

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnWritePacketReadPacketRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	client := NewConn(a)
	srv := NewConn(b)
	defer client.Close()
	defer srv.Close()

	done := make(chan struct{})
	go func() {
		require.NoError(t, client.WritePacket(0x05, []byte("payload bytes")))
		close(done)
	}()

	id, payload, err := srv.ReadPacket()
	require.NoError(t, err)
	assert.EqualValues(t, 5, id)
	assert.Equal(t, []byte("payload bytes"), payload)
	<-done
}

func TestConnEnableEncryptionRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	client := NewConn(a)
	srv := NewConn(b)
	defer client.Close()
	defer srv.Close()

	var key [16]byte
	copy(key[:], "0123456789abcdef")
	require.NoError(t, client.EnableEncryption(key))
	require.NoError(t, srv.EnableEncryption(key))

	done := make(chan struct{})
	go func() {
		require.NoError(t, client.WritePacket(0x02, []byte("secret payload")))
		close(done)
	}()

	id, payload, err := srv.ReadPacket()
	require.NoError(t, err)
	assert.EqualValues(t, 2, id)
	assert.Equal(t, []byte("secret payload"), payload)
	<-done
}

func TestConnCloseIsIdempotent(t *testing.T) {
	a, _ := net.Pipe()
	conn := NewConn(a)
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
}

func TestConnStateTransitions(t *testing.T) {
	a, _ := net.Pipe()
	conn := NewConn(a)
	defer conn.Close()

	assert.Equal(t, Handshake, conn.State())
	conn.SetState(Login)
	assert.Equal(t, Login, conn.State())
	conn.SetProtocol(751)
	assert.EqualValues(t, 751, conn.Protocol())
}
