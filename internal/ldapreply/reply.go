// Package ldapreply answers a captured LDAP request the way a minimal
// directory server would: a BindResponse for bind requests, nothing for
// unbind, and a Notice of Disconnection for anything short, unparsable or
// unsupported.
//
// Requests are read element by element without enforcing that children fit
// inside their parent's length, so a request with inconsistent lengths (such
// as the probe payload) still gets a BindResponse. Responses are always
// well-formed BER.
package ldapreply

import (
	"errors"
	"fmt"

	asn1 "github.com/go-asn1-ber/asn1-ber"
)

// Result codes (RFC 4511).
const (
	ResultSuccess                = 0
	ResultProtocolError          = 2
	ResultAuthMethodNotSupported = 7
	ResultInvalidDNSyntax        = 34
	ResultUnavailable            = 52
)

// NoticeOfDisconnectionOID is the responseName of an unsolicited notice.
const NoticeOfDisconnectionOID = "1.3.6.1.4.1.1466.20036"

const noticeMessage = "Received an unknown or unsupported message."

// Requests shorter than this cannot hold a message header plus a message ID.
const minRequestLen = 5

// Raw identifier octets as they appear on the wire.
const (
	tagMessage       byte = 0x30
	tagInteger       byte = 0x02
	tagOctetString   byte = 0x04
	tagBindRequest   byte = 0x60
	tagUnbindRequest byte = 0x42
	tagSimpleAuth    byte = 0x80
)

// Application tags of the responses built here.
const (
	appBindResponse     asn1.Tag = 1
	appExtendedResponse asn1.Tag = 24
)

// Kind says which reply was produced.
type Kind int

const (
	KindNone Kind = iota
	KindBindResponse
	KindNoticeOfDisconnection
)

func (k Kind) String() string {
	switch k {
	case KindBindResponse:
		return "bind_response"
	case KindNoticeOfDisconnection:
		return "notice_of_disconnection"
	default:
		return "none"
	}
}

// Bind holds the fields of a bind request that decide the result code.
type Bind struct {
	Version    int64
	Name       string
	AuthChoice byte
}

// Reply is the answer to one request. Bytes is empty for KindNone.
type Reply struct {
	Kind       Kind
	MessageID  int64
	ResultCode int
	Bytes      []byte
	// Reason explains a Notice of Disconnection.
	Reason error
}

var errShort = errors.New("ldap: request truncated")

// Respond builds the reply for req.
func Respond(req []byte) Reply {
	if len(req) < minRequestLen {
		return notice(fmt.Errorf("ldap: request of %d bytes is too short", len(req)))
	}

	r := &elementReader{data: req}
	tag, _, err := r.header()
	if err != nil {
		return notice(err)
	}
	if tag != tagMessage {
		return notice(fmt.Errorf("ldap: message starts with 0x%02x", tag))
	}
	msgID, err := r.integer()
	if err != nil {
		return notice(fmt.Errorf("ldap: message id: %w", err))
	}
	op, _, err := r.header()
	if err != nil {
		return notice(err)
	}

	switch op {
	case tagBindRequest:
		bind, err := r.bind()
		if err != nil {
			return notice(fmt.Errorf("ldap: bind request: %w", err))
		}
		code := BindResult(bind)
		return Reply{
			Kind:       KindBindResponse,
			MessageID:  msgID,
			ResultCode: code,
			Bytes:      bindResponse(msgID, code),
		}
	case tagUnbindRequest:
		return Reply{Kind: KindNone, MessageID: msgID}
	default:
		return notice(fmt.Errorf("ldap: unsupported operation 0x%02x", op))
	}
}

// BindResult applies the bind rules in order: only simple auth is accepted,
// only version 3, and only an anonymous (empty) name.
func BindResult(b Bind) int {
	switch {
	case b.AuthChoice != tagSimpleAuth:
		return ResultAuthMethodNotSupported
	case b.Version != 3:
		return ResultProtocolError
	case b.Name != "":
		return ResultInvalidDNSyntax
	default:
		return ResultSuccess
	}
}

func notice(reason error) Reply {
	return Reply{
		Kind:       KindNoticeOfDisconnection,
		ResultCode: ResultUnavailable,
		Bytes:      noticeOfDisconnection(),
		Reason:     reason,
	}
}

func bindResponse(msgID int64, code int) []byte {
	op := asn1.Encode(asn1.ClassApplication, asn1.TypeConstructed, appBindResponse, nil, "Bind Response")
	op.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagEnumerated, code, "resultCode"))
	op.AppendChild(asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, "", "matchedDN"))
	op.AppendChild(asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, "", "diagnosticMessage"))

	msg := asn1.NewSequence("LDAP Response")
	msg.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagInteger, msgID, "messageID"))
	msg.AppendChild(op)
	return msg.Bytes()
}

func noticeOfDisconnection() []byte {
	op := asn1.Encode(asn1.ClassApplication, asn1.TypeConstructed, appExtendedResponse, nil, "Extended Response")
	op.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagEnumerated, ResultUnavailable, "resultCode"))
	op.AppendChild(asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, "", "matchedDN"))
	op.AppendChild(asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, noticeMessage, "diagnosticMessage"))
	op.AppendChild(asn1.NewString(asn1.ClassContext, asn1.TypePrimitive, 10, NoticeOfDisconnectionOID, "responseName"))

	msg := asn1.NewSequence("LDAP Response")
	msg.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagInteger, 0, "messageID"))
	msg.AppendChild(op)
	return msg.Bytes()
}
