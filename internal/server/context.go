// Package server holds the process-wide, shared-ownership state spec.md
// §9 calls for: "a server-context record passed explicitly, with the RSA
// key-pair materialized on first use." It is the single object every
// connection goroutine reads from; nothing here is connection-specific.
package server

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/feather-mc/feather/internal/authpool"
	"github.com/feather-mc/feather/internal/config"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Context is the shared, read-mostly state every connection's login flow
// consults: configuration, the lazily-generated RSA key pair and its
// cached DER encoding, the online-player counter, the logger, and the
// session-authentication worker pool.
type Context struct {
	Config *config.Config
	Log    *zap.Logger

	// OnlinePlayers is read with acquire semantics for status responses
	// and written by the surrounding server when promoting/removing
	// players (spec.md §5). The status responder reads it; cmd/feather's
	// connection handler increments it when a player is promoted and
	// decrements it when that connection's handler returns.
	OnlinePlayers atomic.Int32

	AuthPool *authpool.Pool

	rsaOnce    sync.Once
	rsaKey     *rsa.PrivateKey
	rsaDER     []byte
	rsaDERErr  error
}

// New builds a Context from cfg. The RSA key is not generated here; it is
// materialized lazily on first call to RSAKey/PublicKeyDER, per spec.md
// §4.F ("generated lazily on first use").
func New(cfg *config.Config, log *zap.Logger) *Context {
	return &Context{
		Config:   cfg,
		Log:      log,
		AuthPool: authpool.New(cfg.Server.AuthWorkers),
	}
}

// RSAKey returns the server's RSA private key, generating it on the
// first call. The key is generated exactly once per process (spec.md §8).
func (c *Context) RSAKey() (*rsa.PrivateKey, error) {
	c.rsaOnce.Do(c.initRSA)
	if c.rsaKey == nil {
		return nil, c.rsaDERErr
	}
	return c.rsaKey, nil
}

// PublicKeyDER returns the cached DER encoding (SubjectPublicKeyInfo) of
// the server's RSA public key, computed once alongside the key itself and
// reused for both EncryptionRequest and the session hash (spec.md §4.F).
func (c *Context) PublicKeyDER() ([]byte, error) {
	c.rsaOnce.Do(c.initRSA)
	return c.rsaDER, c.rsaDERErr
}

func (c *Context) initRSA() {
	bits := c.Config.Server.RSABits
	if bits == 0 {
		bits = config.DefaultRSABits
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		c.rsaDERErr = fmt.Errorf("server: generate RSA key: %w", err)
		return
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		c.rsaDERErr = fmt.Errorf("server: encode RSA public key: %w", err)
		return
	}
	c.rsaKey = key
	c.rsaDER = der
}

// Shutdown releases the context's background resources.
func (c *Context) Shutdown() {
	c.AuthPool.Close()
}
