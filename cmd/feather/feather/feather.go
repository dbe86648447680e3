package feather

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/feather-mc/feather/internal/config"
	"github.com/feather-mc/feather/internal/login"
	"github.com/feather-mc/feather/internal/proto"
	"github.com/feather-mc/feather/internal/server"
	"github.com/gookit/color"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Run loads configuration, brings up the logger, and serves the accept
// loop until a termination signal arrives. It never returns the Play
// state onward; once RunLogin promotes a player, this module's job for
// that connection is done (spec.md Non-goals) and the connection is
// closed after a short-lived log line, the way a stub handoff point
// would look before a Play pipeline exists.
func Run() error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("feather: loading config: %w", err)
	}
	cfg.Default()

	log, err := newLogger(cfg.Server.Debug)
	if err != nil {
		return fmt.Errorf("feather: initializing logger: %w", err)
	}
	defer log.Sync()

	ctx := server.New(&cfg, log)
	defer ctx.Shutdown()

	ln, err := net.Listen("tcp", cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("feather: listen on %s: %w", cfg.Server.ListenAddr, err)
	}
	defer ln.Close()

	printBanner(cfg.Server.ListenAddr)
	log.Info("listening", zap.String("addr", cfg.Server.ListenAddr), zap.Bool("online_mode", cfg.Server.OnlineMode))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer func() { signal.Stop(sig); close(sig) }()

	go func() {
		s, ok := <-sig
		if !ok {
			return
		}
		log.Info("received signal, shutting down", zap.String("signal", s.String()))
		ln.Close()
	}()

	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-sig:
				return nil
			default:
			}
			log.Warn("accept failed", zap.Error(err))
			return err
		}
		go handleConn(ctx, nc)
	}
}

func handleConn(ctx *server.Context, nc net.Conn) {
	conn := proto.NewConn(nc)
	defer conn.Close()

	result, err := login.Route(ctx, conn)
	if err != nil {
		ctx.Log.Debug("connection ended", zap.Stringer("remote", nc.RemoteAddr()), zap.Error(err))
		return
	}
	if result.Player != nil {
		ctx.OnlinePlayers.Inc()
		defer ctx.OnlinePlayers.Dec()
		ctx.Log.Info("player logged in",
			zap.String("username", result.Player.Username),
			zap.Stringer("uuid", result.Player.UUID),
			zap.Stringer("remote", result.Player.RemoteAddr))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func printBanner(addr string) {
	color.Cyan.Println("  feather login server")
	color.Gray.Printf("  listening on %s\n\n", addr)
}
