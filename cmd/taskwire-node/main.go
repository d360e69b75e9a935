// taskwire-node runs a device-side dispatcher: it wires the configured
// transports into a hub, pumps the external channel and the task manager
// from one cooperative loop, and serves the demo task set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskwire/pkg/channel"
	"taskwire/pkg/config"
	"taskwire/pkg/envelope"
	"taskwire/pkg/hub"
	"taskwire/pkg/manager"
	"taskwire/pkg/observability"
	"taskwire/pkg/protocol"
	"taskwire/pkg/status"
	"taskwire/pkg/transport"
	"taskwire/pkg/transport/mem"
	"taskwire/pkg/transport/quic"
	"taskwire/pkg/transport/serial"
	"taskwire/pkg/transport/tcp"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()
	os.Exit(run(*configPath))
}

func run(configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	zap.L().Info("taskwire-node started",
		zap.String("app", cfg.AppName),
		zap.Uint8("board_id", cfg.BoardID))

	layout, err := cfg.PacketLayout()
	if err != nil {
		zap.L().Error("bad packet config", zap.Error(err))
		return 1
	}
	proto := cfg.ProtocolConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ports, err := buildPorts(ctx, cfg, layout, proto, logger)
	if err != nil {
		zap.L().Error("failed to start transports", zap.Error(err))
		return 1
	}

	h := hub.New(logger.Named("hub"), ports...)
	defer h.Close()

	reg := newRegistry()
	mgr := manager.New(reg, manager.WithLogger(logger.Named("manager")))
	ext := channel.NewExternal(h, mgr, layout, proto, logger.Named("channel"))
	internal := channel.NewInternal(mgr, cfg.BoardID, logger.Named("internal"))

	// Boot selftest through the internal channel: echo must come straight
	// back on the first pass.
	selftest(internal, mgr, layout)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.LoopIntervalMS) * time.Millisecond)
	defer tick.Stop()

	zap.L().Info("node is running; press Ctrl+C to exit")
	for {
		select {
		case <-stop:
			zap.L().Info("shutting down")
			reg.Reset()
			return 0
		case <-tick.C:
			ext.Update()
			mgr.Update()
		}
	}
}

// selftest registers the echo task in process and verifies the result path.
func selftest(internal *channel.Internal, mgr *manager.Manager, layout protocol.Layout) {
	params := envelope.New(layout.PayloadSize())
	_ = params.Pack(cbor, "selftest")
	if code := internal.RegisterTask(uidEcho, params.AsView()); code != status.OK {
		zap.L().Warn("selftest registration failed", zap.String("status", code.String()))
		return
	}
	mgr.Update()
	if res, ok := internal.TakeResult(uidEcho); ok {
		zap.L().Info("selftest passed", zap.String("status", res.Code.String()))
	} else {
		zap.L().Warn("selftest produced no result")
	}
}

// buildPorts starts every configured transport and wraps it into a port.
func buildPorts(ctx context.Context, cfg *config.Config, layout protocol.Layout, proto protocol.Config, logger *zap.Logger) ([]*transport.Port, error) {
	var ports []*transport.Port
	for i, tc := range cfg.Transports {
		link, err := buildLink(ctx, tc, layout.Size, logger)
		if err != nil {
			return nil, fmt.Errorf("transport %d (%s): %w", i, tc.Kind, err)
		}
		ports = append(ports, transport.NewPort(link, layout, proto, logger.Named("port")))
	}
	return ports, nil
}

func buildLink(ctx context.Context, tc config.TransportConfig, frameSize int, logger *zap.Logger) (transport.Link, error) {
	switch tc.Kind {
	case "tcp":
		if tc.Dial != "" {
			return tcp.Dial(ctx, tc.Dial, frameSize)
		}
		l, err := tcp.Listen(tc.Listen, frameSize)
		if err != nil {
			return nil, err
		}
		d := &transport.Deferred{}
		go acceptLoop(ctx, logger, d, func() (transport.Link, error) { return l.Accept() })
		return d, nil
	case "quic":
		if tc.Dial != "" {
			return quic.Dial(ctx, tc.Dial, frameSize)
		}
		l, err := quic.Listen(tc.Listen, frameSize)
		if err != nil {
			return nil, err
		}
		d := &transport.Deferred{}
		go acceptLoop(ctx, logger, d, func() (transport.Link, error) { return l.Accept(ctx) })
		return d, nil
	case "serial":
		return serial.Open(tc.Device, frameSize)
	case "mem":
		// Loopback; mostly useful for soak tests of the full path.
		return mem.Loopback(8), nil
	default:
		return nil, fmt.Errorf("unknown transport kind %q", tc.Kind)
	}
}

// acceptLoop binds each inbound connection to the deferred link; the
// newest connection wins.
func acceptLoop(ctx context.Context, logger *zap.Logger, d *transport.Deferred, accept func() (transport.Link, error)) {
	for {
		link, err := accept()
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("accept failed", zap.Error(err))
			}
			return
		}
		logger.Info("host connected")
		d.Bind(link)
	}
}
