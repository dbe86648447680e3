package proto

import (
	"bufio"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// MaxPacketSize rejects absurd length prefixes before allocating a buffer
// for them; no vanilla packet in the states this module handles comes
// close to it.
const MaxPacketSize = 2 * 1024 * 1024

// ErrClosed is returned by Conn methods once the connection has been closed.
var ErrClosed = errors.New("proto: connection closed")

// Conn is the framed, optionally-encrypted connection handle handed to the
// login flow. It backs spec.md's opaque PromotedPlayer.codec_handle: the
// promoted player holds a direct *Conn, not a lookup key, and the
// connection is released only by an explicit Close (cmd/feather closes it
// when its connection handler returns); Conn does not count its holders.
type Conn struct {
	nc net.Conn
	r  *bufio.Reader
	w  *bufio.Writer

	mu       sync.Mutex
	state    State
	protocol int32
	closed   bool

	encStream cipher.Stream
	decStream cipher.Stream
}

// NewConn wraps nc in a Minecraft-framed connection starting in the
// Handshake state.
func NewConn(nc net.Conn) *Conn {
	return &Conn{
		nc:    nc,
		r:     bufio.NewReader(nc),
		w:     bufio.NewWriter(nc),
		state: Handshake,
	}
}

// RemoteAddr returns the remote address of the underlying connection.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// State returns the connection's current protocol state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState transitions the connection to a new protocol state.
func (c *Conn) SetState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// SetProtocol records the client's declared protocol version.
func (c *Conn) SetProtocol(p int32) {
	c.mu.Lock()
	c.protocol = p
	c.mu.Unlock()
}

// Protocol returns the client's declared protocol version.
func (c *Conn) Protocol() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.protocol
}

// Close closes the underlying connection. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.nc.Close()
}

// decryptingByteReader adapts decryption into the io.ByteReader interface ReadVarInt needs.
type decryptingByteReader struct {
	r      *bufio.Reader
	stream cipher.Stream
}

func (d *decryptingByteReader) ReadByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if d.stream != nil {
		var out [1]byte
		d.stream.XORKeyStream(out[:], []byte{b})
		return out[0], nil
	}
	return b, nil
}

func (d *decryptingByteReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 && d.stream != nil {
		d.stream.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

// ReadPacket reads one length-prefixed frame and returns its packet ID and
// payload (with the ID already stripped).
func (c *Conn) ReadPacket() (id int32, payload []byte, err error) {
	c.mu.Lock()
	stream := c.decStream
	c.mu.Unlock()

	br := &decryptingByteReader{r: c.r, stream: stream}

	length, err := ReadVarInt(br)
	if err != nil {
		return 0, nil, err
	}
	if length < 0 || int(length) > MaxPacketSize {
		return 0, nil, fmt.Errorf("proto: packet length %d out of bounds", length)
	}

	buf := make([]byte, length)
	n := 0
	for n < len(buf) {
		m, err := br.Read(buf[n:])
		if err != nil {
			return 0, nil, err
		}
		n += m
	}

	pr := bytes.NewReader(buf)
	id, err = ReadVarInt(pr)
	if err != nil {
		return 0, nil, err
	}
	return id, buf[len(buf)-pr.Len():], nil
}

// WritePacket frames [VarInt length][VarInt id][payload], encrypts it if
// encryption has been enabled, and flushes it to the underlying connection.
func (c *Conn) WritePacket(id int32, payload []byte) error {
	body := new(bytes.Buffer)
	if err := WriteVarInt(body, id); err != nil {
		return err
	}
	body.Write(payload)

	frame := new(bytes.Buffer)
	if err := WriteVarInt(frame, int32(body.Len())); err != nil {
		return err
	}
	frame.Write(body.Bytes())

	out := frame.Bytes()
	c.mu.Lock()
	stream := c.encStream
	c.mu.Unlock()
	if stream != nil {
		enc := make([]byte, len(out))
		stream.XORKeyStream(enc, out)
		out = enc
	}

	if _, err := c.w.Write(out); err != nil {
		return err
	}
	return c.w.Flush()
}

// EnableEncryption installs AES/CFB8 on the connection using key as both
// the cipher key and the initial feedback register, per spec.md §6.
// Every frame read or written after this call returns is encrypted;
// frames already in flight (none, since login is strict request/response)
// are unaffected.
func (c *Conn) EnableEncryption(key [16]byte) error {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decStream = newCFB8Decrypter(block, key[:])
	c.encStream = newCFB8Encrypter(block, key[:])
	return nil
}

var _ io.Closer = (*Conn)(nil)
