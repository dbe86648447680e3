package login

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"time"

	"github.com/feather-mc/feather/internal/server"
	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const hasJoinedURL = "https://sessionserver.mojang.com/session/minecraft/hasJoined"

// authCache holds recent hasJoined responses keyed by server hash, so a
// client that retries the same handshake (a dropped response, a flaky
// path) doesn't cost a second round trip to the session service. 256
// entries comfortably covers any realistic burst of concurrent logins.
var authCache = lru.New(256)

// serverHash reproduces the notchian digest: SHA-1 over the (always
// empty) server ID, the shared secret, and the server's DER public key,
// reinterpreted as a signed big-endian integer and rendered in lowercase
// hex — exactly java.math.BigInteger(digest).toString(16), not a plain
// hex dump. This is the one place the protocol deviates from a standard
// hash-to-hex encoding (spec.md §4.G).
func serverHash(sharedSecret, publicKeyDER []byte) string {
	h := sha1.New()
	h.Write([]byte(""))
	h.Write(sharedSecret)
	h.Write(publicKeyDER)
	digest := h.Sum(nil)

	n := new(big.Int).SetBytes(digest)
	// digest[0] >= 0x80 means the 160-bit value's sign bit is set; take
	// the two's complement to match BigInteger's signed interpretation.
	if len(digest) > 0 && digest[0]&0x80 != 0 {
		max := new(big.Int).Lsh(big.NewInt(1), uint(len(digest)*8))
		n.Sub(n, max)
	}
	return n.Text(16)
}

type sessionProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Properties []struct {
		Name      string `json:"name"`
		Value     string `json:"value"`
		Signature string `json:"signature,omitempty"`
	} `json:"properties"`
}

// authenticate calls Mojang's hasJoined endpoint for username under the
// given server hash, dispatched through ctx.AuthPool so the blocking HTTPS
// round trip never runs on the connection's own goroutine (spec.md §5).
func authenticate(ctx *server.Context, username, hash string) (Profile, error) {
	if cached, ok := authCache.Get(hash); ok {
		return cached.(Profile), nil
	}

	timeout := time.Duration(ctx.Config.Server.AuthTimeoutMillis) * time.Millisecond
	callCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	val, err := ctx.AuthPool.Do(callCtx, func(c context.Context) (interface{}, error) {
		return doHasJoined(c, username, hash)
	})
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	profile := val.(Profile)
	authCache.Add(hash, profile)
	return profile, nil
}

func doHasJoined(ctx context.Context, username, hash string) (Profile, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("serverId", hash)
	fullURL := hasJoinedURL + "?" + q.Encode()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	var err error
	if ok {
		err = fasthttp.DoDeadline(req, resp, deadline)
	} else {
		err = fasthttp.Do(req, resp)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("session request: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return Profile{}, fmt.Errorf("session server status %d", resp.StatusCode())
	}

	var sp sessionProfile
	if err := json.Unmarshal(resp.Body(), &sp); err != nil {
		return Profile{}, fmt.Errorf("decode session response: %w", err)
	}

	id, err := parseUndashedUUID(sp.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("session profile id: %w", err)
	}

	profile := Profile{ID: id, Name: sp.Name}
	for _, p := range sp.Properties {
		profile.Properties = append(profile.Properties, ProfileProperty{
			Name:      p.Name,
			Value:     p.Value,
			Signature: p.Signature,
		})
	}
	return profile, nil
}

// parseUndashedUUID accepts both the session service's undashed 32-hex-digit
// form and a standard hyphenated UUID, since the exact representation isn't
// specified and the original implementation tolerates either.
func parseUndashedUUID(s string) (uuid.UUID, error) {
	if len(s) == 32 {
		s = s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:]
	}
	return uuid.Parse(s)
}
