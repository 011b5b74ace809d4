package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"ldapbind_probe/internal/probe"
	"ldapbind_probe/internal/shared/config"
	"ldapbind_probe/internal/shared/logger"
	"ldapbind_probe/internal/shared/types"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("configdir", "configs", "Path to config directory")
	target := fs.String("target", "", "Override the target endpoint (ip:port)")
	level := fs.String("level", "", "Override the log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	iniPath := filepath.Join(*configDir, "probe.ini")

	cfg := new(types.Config)
	if err := config.LoadIni(cfg, iniPath); err != nil {
		// Use standard fmt before logger is initialized.
		fmt.Fprintf(stderr, "Fatal: Failed to load config file '%s': %v\n", iniPath, err)
		return 1
	}
	if *level != "" {
		cfg.LogConf.Level = *level
	}
	if err := logger.InitWriter(cfg.LogConf, stderr); err != nil {
		fmt.Fprintf(stderr, "Fatal: Failed to initialize logger: %v\n", err)
		return 1
	}

	if *target != "" {
		host, portStr, err := net.SplitHostPort(*target)
		if err != nil {
			logger.Error().Err(err).Str("target", *target).Msg("Invalid -target")
			return 1
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			logger.Error().Err(err).Str("target", *target).Msg("Invalid -target port")
			return 1
		}
		cfg.ProbeConf.TargetIP = host
		cfg.ProbeConf.TargetPort = port
	}

	sender, err := probe.NewSender(cfg.ProbeConf)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid probe configuration")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := sender.Send(ctx)
	if err != nil {
		ev := logger.Error().Str("run_id", res.RunID).Str("target", res.Target).Err(err)
		var pe *probe.ProbeError
		if errors.As(err, &pe) {
			ev = ev.Str("phase", string(pe.Phase)).Int("sent", pe.Sent)
		}
		ev.Msg("Probe failed")
		return 1
	}

	logger.Info().
		Str("run_id", res.RunID).
		Str("target", res.Target).
		Str("local", res.LocalAddr).
		Int("bytes", res.BytesSent).
		Dur("connect", res.ConnectLatency).
		Dur("send", res.SendLatency).
		Msg("Probe sent")
	return 0
}
