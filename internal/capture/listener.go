// Package capture records what a client sends over TCP. It is the receiving
// side used to check probe output: every accepted connection is read to EOF
// and handed back as a Capture.
package capture

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"ldapbind_probe/internal/shared/logger"
	"ldapbind_probe/internal/sys/sockopt"
)

const (
	DefaultReadTimeout  = 5 * time.Second
	DefaultWriteTimeout = 3 * time.Second
	// MaxCaptureSize bounds how much is read from one connection.
	MaxCaptureSize = 2048
)

// ErrCaptureTooLarge is set on a Capture whose peer sent more than
// MaxCaptureSize bytes. Data then holds the first MaxCaptureSize bytes.
var ErrCaptureTooLarge = errors.New("capture: peer sent more than the capture limit")

// Capture is the result of one accepted connection.
type Capture struct {
	Remote string
	Data   []byte
	// Closed reports that the peer closed its side (EOF observed).
	Closed bool
	// Err is set when reading stopped for any reason other than EOF.
	Err error
	// Reply holds what the responder wrote back, if anything.
	Reply    []byte
	ReplyErr error
}

// Responder computes the bytes to send back for a captured request. A nil
// or empty result sends nothing.
type Responder func(req []byte) []byte

// Listener accepts connections and captures their bytes.
type Listener struct {
	ln          net.Listener
	readTimeout time.Duration
	respond     Responder
}

// Listen binds addr with SO_REUSEADDR and wraps the socket in a Listener.
func Listen(ctx context.Context, addr string, readTimeout time.Duration) (*Listener, error) {
	lc := net.ListenConfig{Control: sockopt.ReuseAddrControl}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewListener(ln, readTimeout), nil
}

// NewListener wraps an existing listener. A non-positive readTimeout selects
// DefaultReadTimeout.
func NewListener(ln net.Listener, readTimeout time.Duration) *Listener {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	return &Listener{ln: ln, readTimeout: readTimeout}
}

// WithResponder makes Accept answer each non-empty capture once reading
// ends, before the connection is closed.
func (l *Listener) WithResponder(fn Responder) *Listener {
	l.respond = fn
	return l
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

func (l *Listener) Close() error { return l.ln.Close() }

// Accept waits for one connection and reads it until the peer closes, the
// read timeout expires or MaxCaptureSize is exceeded. With a responder set,
// the reply is written after reading stops.
func (l *Listener) Accept() (Capture, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return Capture{}, err
	}
	defer conn.Close()

	c := Capture{Remote: conn.RemoteAddr().String()}
	if err := conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
		c.Err = err
		return c, nil
	}
	data, err := io.ReadAll(io.LimitReader(conn, MaxCaptureSize+1))
	switch {
	case err != nil:
		c.Data = data
		c.Err = err
	case len(data) > MaxCaptureSize:
		c.Data = data[:MaxCaptureSize]
		c.Err = ErrCaptureTooLarge
	default:
		c.Data = data
		c.Closed = true
	}

	if l.respond != nil && len(c.Data) > 0 {
		c.Reply, c.ReplyErr = reply(conn, l.respond(c.Data))
	}
	return c, nil
}

func reply(conn net.Conn, out []byte) ([]byte, error) {
	if len(out) == 0 {
		return nil, nil
	}
	if err := conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout)); err != nil {
		return nil, err
	}
	n, err := conn.Write(out)
	return out[:n], err
}

// Serve accepts connections until ctx is done or limit captures have
// been handled (limit <= 0 means no limit). handle runs on the accepting goroutine,
// so captures are delivered in arrival order. The listener is closed when
// Serve returns.
func (l *Listener) Serve(ctx context.Context, limit int, handle func(Capture)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		// Unblocks Accept.
		_ = l.ln.Close()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		for n := 0; limit <= 0 || n < limit; n++ {
			c, err := l.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				return err
			}
			logger.Debug().Str("remote", c.Remote).Int("bytes", len(c.Data)).Bool("closed", c.Closed).Int("reply_bytes", len(c.Reply)).Msg("Capture: connection recorded")
			handle(c)
		}
		return nil
	})
	return g.Wait()
}
