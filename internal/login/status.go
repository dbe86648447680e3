package login

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/feather-mc/feather/internal/chat"
	"github.com/feather-mc/feather/internal/config"
	"github.com/feather-mc/feather/internal/proto"
	"github.com/feather-mc/feather/internal/proto/packet"
	"github.com/feather-mc/feather/internal/server"
	"github.com/nfnt/resize"
)

// statusPayload is the JSON shape of the server-list response, per spec.md §4.D.
type statusPayload struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int32 `json:"max"`
		Online int32 `json:"online"`
	} `json:"players"`
	Description chat.Message `json:"description"`
	Favicon     string       `json:"favicon,omitempty"`
}

var (
	faviconOnce  sync.Once
	faviconData  string
	faviconPath  string
)

// faviconDataURI decodes, resizes to 64x64 with github.com/nfnt/resize,
// and base64-encodes the configured favicon PNG. The result for the first
// path it is called with is computed once and cached; a call with any other
// path recomputes it every time without caching. A missing or unreadable
// file silently yields no favicon, matching minewire's best-effort favicon
// handling.
func faviconDataURI(path string) string {
	faviconOnce.Do(func() {
		faviconPath = path
		if path == "" {
			return
		}
		f, err := os.Open(path)
		if err != nil {
			return
		}
		defer f.Close()

		img, err := png.Decode(f)
		if err != nil {
			return
		}
		resized := resize.Resize(64, 64, img, resize.Lanczos3)

		buf := new(fastBuffer)
		if err := png.Encode(buf, toRGBA(resized)); err != nil {
			return
		}
		faviconData = "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	})
	if faviconPath != path {
		// Config changed after the first call (tests use distinct
		// paths); recompute rather than serve a stale cached icon.
		return computeFavicon(path)
	}
	return faviconData
}

func computeFavicon(path string) string {
	if path == "" {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return ""
	}
	resized := resize.Resize(64, 64, img, resize.Lanczos3)
	buf := new(fastBuffer)
	if err := png.Encode(buf, toRGBA(resized)); err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func toRGBA(img image.Image) image.Image {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

// fastBuffer is a minimal io.Writer sink; avoids importing bytes just for
// the one Bytes() accessor this file needs.
type fastBuffer struct {
	b []byte
}

func (f *fastBuffer) Write(p []byte) (int, error) {
	f.b = append(f.b, p...)
	return len(p), nil
}

func (f *fastBuffer) Bytes() []byte { return f.b }

// RespondStatus answers the server-list ping: Request -> Response ->
// optional Ping/Pong -> close, per spec.md §4.D.
func RespondStatus(ctx *server.Context, conn *proto.Conn) (Result, error) {
	id, payload, err := conn.ReadPacket()
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading status request: %v", ErrDecode, err)
	}
	if id != packet.IDStatusRequest {
		return Result{}, fmt.Errorf("%w: unexpected packet id 0x%02x in status state", ErrProtocolViolation, id)
	}
	var req packet.StatusRequest
	_ = req.Decode(payload)

	resp := statusPayload{}
	resp.Version.Name = config.ServerName
	resp.Version.Protocol = config.ProtocolVersion
	resp.Players.Max = ctx.Config.Server.MaxPlayers
	resp.Players.Online = ctx.OnlinePlayers.Load()
	resp.Description = chat.Text(ctx.Config.Server.Motd)
	resp.Favicon = faviconDataURI(ctx.Config.Server.Favicon)

	j, err := json.Marshal(resp)
	if err != nil {
		return Result{}, fmt.Errorf("%w: marshal status json: %v", ErrDecode, err)
	}

	statusResp := packet.StatusResponse{JSON: string(j)}
	body, err := statusResp.Encode()
	if err != nil {
		return Result{}, err
	}
	if err := conn.WritePacket(packet.IDStatusResponse, body); err != nil {
		return Result{}, fmt.Errorf("%w: write status response: %v", ErrDecode, err)
	}

	// A Ping is optional: some clients disconnect right after Response.
	pid, ppayload, err := conn.ReadPacket()
	if err != nil {
		return Result{Disconnect: true}, nil
	}
	if pid != packet.IDStatusPing {
		return Result{Disconnect: true}, nil
	}
	var ping packet.StatusPing
	if err := ping.Decode(ppayload); err != nil {
		return Result{Disconnect: true}, nil
	}
	pong := packet.StatusPong{Payload: ping.Payload}
	body, err = pong.Encode()
	if err != nil {
		return Result{Disconnect: true}, nil
	}
	_ = conn.WritePacket(packet.IDStatusPong, body)

	return Result{Disconnect: true}, nil
}
