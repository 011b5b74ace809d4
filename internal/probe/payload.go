package probe

import (
	"bytes"
	"encoding/hex"
	"net"
	"strconv"
	"strings"
)

// Default endpoint: the well-known LDAP port on a loopback alias.
const (
	TargetIP   string = "127.0.13.1"
	TargetPort int    = 389
)

// PayloadHex is the wire payload, space separated.
const PayloadHex = "30 84 00 00 00 0F 02 83 00 00 02 01 01 60 0A 02 01 03 04 03 31 32 33 80 00"

// PayloadLen is the number of bytes in PayloadHex.
const PayloadLen = 25

var payload = mustDecodeHex(PayloadHex)

// Payload returns a fresh copy of the probe bytes.
func Payload() []byte {
	return bytes.Clone(payload)
}

// TargetAddress returns the default endpoint in host:port form.
func TargetAddress() string {
	return net.JoinHostPort(TargetIP, strconv.Itoa(TargetPort))
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		panic("probe: bad payload literal: " + err.Error())
	}
	return b
}
