package probe

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed means the endpoint was unreachable, refused the
	// connection, or did not answer before the connect timeout.
	ErrConnectionFailed = errors.New("connection failed")
	// ErrSendIncomplete means fewer bytes than the payload length were written.
	ErrSendIncomplete = errors.New("send incomplete")
	// ErrAlreadyClosed means the connection was used after it was released.
	ErrAlreadyClosed = errors.New("connection already closed")
)

// Phase names the step of a run that failed.
type Phase string

const (
	PhaseConnect Phase = "connect"
	PhaseSend    Phase = "send"
	PhaseClose   Phase = "close"
)

// ProbeError reports a failed run.
type ProbeError struct {
	Phase Phase
	// Sent is the number of payload bytes accepted by the socket before the failure.
	Sent int
	Kind error
	Err  error
}

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("probe %s failed", e.Phase)
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Phase == PhaseSend {
		msg += fmt.Sprintf(" (%d/%d bytes)", e.Sent, PayloadLen)
	}
	if e.Err != nil && e.Err != e.Kind {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProbeError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
