package login

import "errors"

// Error kinds from spec.md §7. Every one is fatal for the connection;
// none is retried internally.
var (
	// ErrProtocolViolation covers an unexpected packet or an invalid next-state value.
	ErrProtocolViolation = errors.New("login: protocol violation")
	// ErrDecode covers a malformed frame or unparsable JSON.
	ErrDecode = errors.New("login: decode error")
	// ErrCrypto covers RSA decrypt failure, a verify-token mismatch, or a bad shared-secret length.
	ErrCrypto = errors.New("login: crypto error")
	// ErrAuth covers a non-2xx response, transport error, or JSON decode
	// failure from the Mojang session service.
	ErrAuth = errors.New("login: auth error")
)
