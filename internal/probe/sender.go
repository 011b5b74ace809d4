package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ldapbind_probe/internal/ber"
	"ldapbind_probe/internal/shared"
	"ldapbind_probe/internal/shared/logger"
	"ldapbind_probe/internal/shared/types"
)

const (
	DefaultConnectTimeout = 3 * time.Second
	DefaultWriteTimeout   = 3 * time.Second
)

// Dialer opens the outbound stream. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Result describes a completed run. On failure it still carries whatever
// was measured before the failing phase.
type Result struct {
	RunID          string
	Target         string
	LocalAddr      string
	BytesSent      int
	ConnectLatency time.Duration
	SendLatency    time.Duration
}

// Sender performs probe runs against one endpoint.
type Sender struct {
	address        string
	connectTimeout time.Duration
	writeTimeout   time.Duration
	dialer         Dialer
}

// NewSender validates conf and fills unset fields with the built-in endpoint
// and timeouts.
func NewSender(conf types.ProbeConf) (*Sender, error) {
	ip := conf.TargetIP
	if ip == "" {
		ip = TargetIP
	}
	if net.ParseIP(ip) == nil {
		return nil, fmt.Errorf("invalid target ip %q", ip)
	}
	port := conf.TargetPort
	if port == 0 {
		port = TargetPort
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("target port %d is out of range (1-65535)", port)
	}
	if conf.ConnectTimeoutMs < 0 || conf.WriteTimeoutMs < 0 {
		return nil, fmt.Errorf("timeouts must not be negative")
	}

	connectTimeout := DefaultConnectTimeout
	if conf.ConnectTimeoutMs > 0 {
		connectTimeout = time.Duration(conf.ConnectTimeoutMs) * time.Millisecond
	}
	writeTimeout := DefaultWriteTimeout
	if conf.WriteTimeoutMs > 0 {
		writeTimeout = time.Duration(conf.WriteTimeoutMs) * time.Millisecond
	}

	return &Sender{
		address:        net.JoinHostPort(ip, strconv.Itoa(port)),
		connectTimeout: connectTimeout,
		writeTimeout:   writeTimeout,
		dialer:         &net.Dialer{Timeout: connectTimeout},
	}, nil
}

// WithDialer replaces the dialer used for the connect phase.
func (s *Sender) WithDialer(d Dialer) *Sender {
	s.dialer = d
	return s
}

// Address returns the endpoint in host:port form.
func (s *Sender) Address() string { return s.address }

// Send runs the probe once: connect, write the payload, close.
func (s *Sender) Send(ctx context.Context) (res Result, err error) {
	res.RunID = uuid.NewString()
	res.Target = s.address
	log := logger.WithComponent("probe").With().
		Str("run_id", res.RunID).
		Str("target", res.Target).
		Logger()

	data := Payload()
	logPayload(&log, data)

	dialCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	log.Debug().Dur("timeout", s.connectTimeout).Msg("Probe: connecting")
	start := time.Now()
	raw, dialErr := s.dialer.DialContext(dialCtx, "tcp", s.address)
	res.ConnectLatency = time.Since(start)
	if dialErr != nil {
		return res, &ProbeError{Phase: PhaseConnect, Kind: ErrConnectionFailed, Err: dialErr}
	}

	var uplink, downlink atomic.Uint64
	counted := shared.NewCountedConn(raw, &uplink, &downlink)
	conn := newGuardedConn(counted)
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = &ProbeError{Phase: PhaseClose, Sent: res.BytesSent, Err: cerr}
		}
		log.Debug().Msg("Probe: connection released")
	}()

	if addr := conn.LocalAddr(); addr != nil {
		res.LocalAddr = addr.String()
	}
	log.Debug().
		Str("local", res.LocalAddr).
		Dur("latency", res.ConnectLatency).
		Msg("Probe: connected")

	deadline := time.Now().Add(s.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if derr := conn.SetWriteDeadline(deadline); derr != nil {
		log.Warn().Err(derr).Msg("Probe: could not set write deadline")
	}

	sendStart := time.Now()
	_, werr := writeFull(conn, data)
	res.SendLatency = time.Since(sendStart)
	res.BytesSent = int(counted.Uplink())
	if werr != nil || res.BytesSent != len(data) {
		return res, &ProbeError{Phase: PhaseSend, Sent: res.BytesSent, Kind: ErrSendIncomplete, Err: werr}
	}

	log.Debug().Int("bytes", res.BytesSent).Dur("latency", res.SendLatency).Msg("Probe: payload sent")
	return res, nil
}

func logPayload(log *zerolog.Logger, data []byte) {
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}
	log.Debug().Hex("payload", data).Int("len", len(data)).Msg("Probe: payload prepared")
	els, err := ber.Outline(data)
	if err != nil {
		log.Debug().Err(err).Msg("Probe: payload is not well-formed BER, sending as-is")
		return
	}
	log.Debug().Msgf("Probe: payload outline\n%s", ber.Format(els))
}
