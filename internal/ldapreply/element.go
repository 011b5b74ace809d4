package ldapreply

import (
	"fmt"

	asn1 "github.com/go-asn1-ber/asn1-ber"
)

// elementReader walks BER elements front to back. Constructed elements are
// entered by reading only their header; their declared length is not
// checked against what follows.
type elementReader struct {
	data []byte
	pos  int
}

// header reads one identifier octet and a definite length (short form, or
// long form of up to four octets).
func (r *elementReader) header() (byte, int, error) {
	if r.pos+2 > len(r.data) {
		return 0, 0, errShort
	}
	tag := r.data[r.pos]
	l := int(r.data[r.pos+1])
	r.pos += 2
	if l < 0x80 {
		return tag, l, nil
	}
	n := l - 0x80
	if n == 0 || n > 4 {
		return 0, 0, fmt.Errorf("ldap: unsupported length octet 0x%02x", l)
	}
	if r.pos+n > len(r.data) {
		return 0, 0, errShort
	}
	length := 0
	for _, b := range r.data[r.pos : r.pos+n] {
		length = length<<8 | int(b)
	}
	r.pos += n
	return tag, length, nil
}

// value reads a primitive element with the given identifier and returns its
// content.
func (r *elementReader) value(want byte) ([]byte, error) {
	tag, length, err := r.header()
	if err != nil {
		return nil, err
	}
	if tag != want {
		return nil, fmt.Errorf("ldap: got tag 0x%02x, want 0x%02x", tag, want)
	}
	if r.pos+length > len(r.data) {
		return nil, errShort
	}
	v := r.data[r.pos : r.pos+length]
	r.pos += length
	return v, nil
}

func (r *elementReader) integer() (int64, error) {
	v, err := r.value(tagInteger)
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, fmt.Errorf("ldap: empty integer")
	}
	return asn1.ParseInt64(v)
}

// bind reads version, name and the authentication choice tag.
func (r *elementReader) bind() (Bind, error) {
	var b Bind
	version, err := r.integer()
	if err != nil {
		return b, fmt.Errorf("version: %w", err)
	}
	name, err := r.value(tagOctetString)
	if err != nil {
		return b, fmt.Errorf("name: %w", err)
	}
	if r.pos >= len(r.data) {
		return b, fmt.Errorf("authentication: %w", errShort)
	}
	b.Version = version
	b.Name = string(name)
	b.AuthChoice = r.data[r.pos]
	return b, nil
}
