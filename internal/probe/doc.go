// Package probe sends the fixed LDAP bind probe to a TCP endpoint.
//
// A run is strictly linear: one connect, one logical write of the 25 byte
// payload, one close. There is no response read and no retry. Connect and
// write are bounded by explicit timeouts, and the connection is released on
// every exit path.
//
// The payload is kept byte-for-byte as captured. Its BER lengths do not
// agree with its content (the outer sequence claims 15 bytes while 19
// follow), so the bytes are treated as opaque data and never re-encoded.
//
// Failures are reported as *ProbeError, which names the phase and wraps one
// of ErrConnectionFailed, ErrSendIncomplete or ErrAlreadyClosed together with
// the underlying network error.
package probe
