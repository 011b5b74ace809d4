// Command capture listens for probe connections and logs what each one sent,
// with a hex dump, a BER outline, and whether the bytes match the probe
// payload. Point the probe at it with -target or run it on 127.0.13.1:389.
// With -reply it also answers each request as a minimal LDAP server would.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ldapbind_probe/internal/ber"
	"ldapbind_probe/internal/capture"
	"ldapbind_probe/internal/ldapreply"
	"ldapbind_probe/internal/probe"
	"ldapbind_probe/internal/shared/config"
	"ldapbind_probe/internal/shared/logger"
	"ldapbind_probe/internal/shared/types"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("configdir", "configs", "Path to config directory")
	listen := fs.String("listen", "", "Listen address (default from config, else the probe target)")
	once := fs.Bool("once", false, "Exit after the first connection")
	replyFlag := fs.Bool("reply", false, "Answer bind requests with a BindResponse")
	level := fs.String("level", "", "Override the log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	iniPath := filepath.Join(*configDir, "probe.ini")
	cfg := new(types.Config)
	if err := config.LoadIni(cfg, iniPath); err != nil {
		fmt.Fprintf(stderr, "Fatal: Failed to load config file '%s': %v\n", iniPath, err)
		return 1
	}
	if *level != "" {
		cfg.LogConf.Level = *level
	}
	if *replyFlag {
		cfg.CaptureConf.Reply = true
	}
	if err := logger.InitWriter(cfg.LogConf, stderr); err != nil {
		fmt.Fprintf(stderr, "Fatal: Failed to initialize logger: %v\n", err)
		return 1
	}

	addr := cfg.CaptureConf.Listen
	if *listen != "" {
		addr = *listen
	}
	if addr == "" {
		addr = probe.TargetAddress()
	}

	readTimeout := time.Duration(cfg.CaptureConf.ReadTimeoutMs) * time.Millisecond
	l, err := capture.Listen(ctx, addr, readTimeout)
	if err != nil {
		logger.Error().Err(err).Str("listen", addr).Msg("Capture: failed to listen")
		return 1
	}
	if cfg.CaptureConf.Reply {
		l.WithResponder(respond)
	}
	logger.Info().
		Str("listen", l.Addr().String()).
		Bool("reply", cfg.CaptureConf.Reply).
		Msg("Capture: waiting for connections")

	limit := 0
	if *once {
		limit = 1
	}
	want := probe.Payload()
	err = l.Serve(ctx, limit, func(c capture.Capture) {
		report(c, want)
		reportReply(c)
	})
	if err != nil {
		logger.Error().Err(err).Msg("Capture: stopped")
		return 1
	}
	return 0
}

func respond(req []byte) []byte {
	r := ldapreply.Respond(req)
	ev := logger.Debug().
		Str("kind", r.Kind.String()).
		Int("message_id", int(r.MessageID)).
		Int("result_code", r.ResultCode)
	if r.Reason != nil {
		ev = ev.Err(r.Reason)
	}
	ev.Msg("Capture: reply built")
	return r.Bytes
}

func report(c capture.Capture, want []byte) {
	ev := logger.Info().
		Str("remote", c.Remote).
		Int("bytes", len(c.Data)).
		Bool("closed", c.Closed).
		Bool("matches_probe", bytes.Equal(c.Data, want))
	if c.Err != nil {
		ev = ev.Err(c.Err)
	}
	ev.Msgf("Capture: received\n%s", ber.HexDump(c.Data))

	if len(c.Data) == 0 {
		return
	}
	els, err := ber.Outline(c.Data)
	if err != nil {
		logger.Warn().Err(err).Msg("Capture: data is not well-formed BER")
		return
	}
	logger.Info().Msgf("Capture: BER outline\n%s", ber.Format(els))
}

func reportReply(c capture.Capture) {
	if c.ReplyErr != nil {
		logger.Warn().Err(c.ReplyErr).Int("bytes", len(c.Reply)).Msg("Capture: reply not fully sent")
		return
	}
	if len(c.Reply) > 0 {
		logger.Info().Int("bytes", len(c.Reply)).Msgf("Capture: replied\n%s", ber.HexDump(c.Reply))
	}
}
