package ber

import (
	"testing"

	asn1 "github.com/go-asn1-ber/asn1-ber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wellFormedBind is a valid simple bind for user "123" with an empty password.
func wellFormedBind() []byte {
	msg := asn1.Encode(asn1.ClassUniversal, asn1.TypeConstructed, asn1.TagSequence, nil, "LDAP Request")
	msg.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagInteger, 1, "MessageID"))
	bind := asn1.Encode(asn1.ClassApplication, asn1.TypeConstructed, 0, nil, "Bind Request")
	bind.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagInteger, 3, "Version"))
	bind.AppendChild(asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, "123", "User Name"))
	bind.AppendChild(asn1.NewString(asn1.ClassContext, asn1.TypePrimitive, 0, "", "Password"))
	msg.AppendChild(bind)
	return msg.Bytes()
}

func TestOutline_WellFormedBind(t *testing.T) {
	els, err := Outline(wellFormedBind())
	require.NoError(t, err)
	require.Len(t, els, 6)

	assert.Equal(t, 0, els[0].Depth)
	assert.Equal(t, "universal", els[0].Class)
	assert.True(t, els[0].Constructed)
	assert.Equal(t, uint64(asn1.TagSequence), els[0].Tag)
	assert.Equal(t, "Sequence", els[0].Label)

	assert.Equal(t, 1, els[1].Depth)
	assert.Equal(t, uint64(asn1.TagInteger), els[1].Tag)
	assert.Equal(t, "Integer", els[1].Label)

	assert.Equal(t, 1, els[2].Depth)
	assert.Equal(t, "application", els[2].Class)
	assert.Equal(t, "Bind Request", els[2].Label)

	assert.Equal(t, 2, els[4].Depth)
	assert.Equal(t, uint64(asn1.TagOctetString), els[4].Tag)
	assert.Equal(t, 3, els[4].Length)
	assert.Equal(t, "Octet String", els[4].Label)

	assert.Equal(t, "context", els[5].Class)
	assert.Equal(t, "[0]", els[5].Label)
	assert.False(t, els[5].Constructed)
}

func TestOutline_Empty(t *testing.T) {
	_, err := Outline(nil)
	assert.Error(t, err)
}

func TestOutline_TruncatedHeader(t *testing.T) {
	_, err := Outline([]byte{0x30, 0x84, 0x00})
	assert.Error(t, err)
}

func TestFormat_IndentsByDepth(t *testing.T) {
	out := Format([]Element{
		{Depth: 0, Class: "universal", Constructed: true, Tag: 16, Length: 5, Label: "Sequence"},
		{Depth: 1, Class: "universal", Tag: 2, Length: 1, Label: "Integer"},
	})
	assert.Equal(t, "Sequence universal cons len=5\n  Integer universal prim len=1\n", out)
}

func TestHexDump(t *testing.T) {
	out := HexDump([]byte{0x30, 0x84, 0x31, 0x32, 0x33})
	assert.Contains(t, out, "30 84 31 32 33")
	assert.Contains(t, out, "0.123")
}
