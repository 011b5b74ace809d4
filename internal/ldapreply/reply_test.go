package ldapreply

import (
	"testing"

	asn1 "github.com/go-asn1-ber/asn1-ber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// Simple bind as "123" whose outer and messageID lengths disagree with
	// the content (long-form lengths, outer sequence claims 15 bytes).
	inconsistentBind = []byte{
		0x30, 0x84, 0x00, 0x00, 0x00, 0x0F,
		0x02, 0x83, 0x00, 0x00, 0x02, 0x01, 0x01,
		0x60, 0x0A,
		0x02, 0x01, 0x03,
		0x04, 0x03, 0x31, 0x32, 0x33,
		0x80, 0x00,
	}
	anonymousBind = []byte{
		0x30, 0x0c,
		0x02, 0x01, 0x01,
		0x60, 0x07,
		0x02, 0x01, 0x03,
		0x04, 0x00,
		0x80, 0x00,
	}
	saslBind = []byte{
		0x30, 0x0c,
		0x02, 0x01, 0x04,
		0x60, 0x07,
		0x02, 0x01, 0x03,
		0x04, 0x00,
		0xa3, 0x00,
	}
	v2Bind = []byte{
		0x30, 0x0c,
		0x02, 0x01, 0x05,
		0x60, 0x07,
		0x02, 0x01, 0x02,
		0x04, 0x00,
		0x80, 0x00,
	}
	unbind = []byte{
		0x30, 0x05,
		0x02, 0x01, 0x02,
		0x42, 0x00,
	}
	abandon = []byte{
		0x30, 0x06,
		0x02, 0x01, 0x06,
		0x50, 0x01, 0x05,
	}
)

func TestRespond_InconsistentBindGetsInvalidDNSyntax(t *testing.T) {
	r := Respond(inconsistentBind)
	assert.Equal(t, KindBindResponse, r.Kind)
	assert.Equal(t, int64(257), r.MessageID)
	assert.Equal(t, ResultInvalidDNSyntax, r.ResultCode)
	assert.Equal(t, []byte{
		0x30, 0x0d,
		0x02, 0x02, 0x01, 0x01,
		0x61, 0x07,
		0x0a, 0x01, 0x22,
		0x04, 0x00,
		0x04, 0x00,
	}, r.Bytes)
}

func TestRespond_AnonymousBindSucceeds(t *testing.T) {
	r := Respond(anonymousBind)
	assert.Equal(t, KindBindResponse, r.Kind)
	assert.Equal(t, ResultSuccess, r.ResultCode)

	pkt, err := asn1.DecodePacketErr(r.Bytes)
	require.NoError(t, err)
	require.Len(t, pkt.Children, 2)
	assert.Equal(t, int64(1), pkt.Children[0].Value)

	op := pkt.Children[1]
	assert.Equal(t, asn1.ClassApplication, op.ClassType)
	assert.Equal(t, appBindResponse, op.Tag)
	require.Len(t, op.Children, 3)
	assert.Equal(t, asn1.TagEnumerated, op.Children[0].Tag)
	assert.Equal(t, int64(ResultSuccess), op.Children[0].Value)
}

func TestRespond_BindResultCodes(t *testing.T) {
	assert.Equal(t, ResultAuthMethodNotSupported, Respond(saslBind).ResultCode)
	assert.Equal(t, ResultProtocolError, Respond(v2Bind).ResultCode)
}

func TestBindResult_Precedence(t *testing.T) {
	cases := []struct {
		name string
		bind Bind
		want int
	}{
		{"anonymous v3 simple", Bind{Version: 3, AuthChoice: tagSimpleAuth}, ResultSuccess},
		{"named", Bind{Version: 3, Name: "cn=admin", AuthChoice: tagSimpleAuth}, ResultInvalidDNSyntax},
		{"v2 named", Bind{Version: 2, Name: "cn=admin", AuthChoice: tagSimpleAuth}, ResultProtocolError},
		{"sasl v2 named", Bind{Version: 2, Name: "cn=admin", AuthChoice: 0xa3}, ResultAuthMethodNotSupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BindResult(tc.bind))
		})
	}
}

func TestRespond_UnbindHasNoReply(t *testing.T) {
	r := Respond(unbind)
	assert.Equal(t, KindNone, r.Kind)
	assert.Equal(t, int64(2), r.MessageID)
	assert.Empty(t, r.Bytes)
}

func TestRespond_NoticeOfDisconnection(t *testing.T) {
	cases := []struct {
		name string
		req  []byte
	}{
		{"too short", []byte{0x30, 0x03, 0x02, 0x01}},
		{"not a sequence", []byte{0x04, 0x03, 0x31, 0x32, 0x33}},
		{"unsupported operation", abandon},
		{"truncated bind", anonymousBind[:9]},
		{"indefinite length", []byte{0x30, 0x80, 0x02, 0x01, 0x01, 0x60, 0x00}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Respond(tc.req)
			assert.Equal(t, KindNoticeOfDisconnection, r.Kind)
			assert.Equal(t, ResultUnavailable, r.ResultCode)
			assert.Error(t, r.Reason)
			assert.NotEmpty(t, r.Bytes)
		})
	}
}

func TestNoticeOfDisconnection_Layout(t *testing.T) {
	pkt, err := asn1.DecodePacketErr(noticeOfDisconnection())
	require.NoError(t, err)
	require.Len(t, pkt.Children, 2)
	assert.Equal(t, int64(0), pkt.Children[0].Value)

	op := pkt.Children[1]
	assert.Equal(t, asn1.ClassApplication, op.ClassType)
	assert.Equal(t, appExtendedResponse, op.Tag)
	require.Len(t, op.Children, 4)
	assert.Equal(t, int64(ResultUnavailable), op.Children[0].Value)
	assert.Equal(t, noticeMessage, op.Children[2].Value)

	name := op.Children[3]
	assert.Equal(t, asn1.ClassContext, name.ClassType)
	assert.Equal(t, asn1.Tag(10), name.Tag)
	assert.Equal(t, NoticeOfDisconnectionOID, name.Data.String())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "bind_response", KindBindResponse.String())
	assert.Equal(t, "notice_of_disconnection", KindNoticeOfDisconnection.String())
	assert.Equal(t, "none", KindNone.String())
}
