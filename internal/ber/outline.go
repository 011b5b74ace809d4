// Package ber renders BER-framed buffers for logs. It never rewrites or
// validates what goes on the wire.
package ber

import (
	"encoding/hex"
	"fmt"
	"strings"

	asn1 "github.com/go-asn1-ber/asn1-ber"
)

// Element is one node of a decoded BER tree, flattened in pre-order.
type Element struct {
	Depth       int
	Class       string
	Constructed bool
	Tag         uint64
	Length      int
	Label       string
}

// Universal tag names for the types LDAP messages carry.
var universalTags = map[asn1.Tag]string{
	asn1.TagEOC:              "EOC",
	asn1.TagBoolean:          "Boolean",
	asn1.TagInteger:          "Integer",
	asn1.TagBitString:        "Bit String",
	asn1.TagOctetString:      "Octet String",
	asn1.TagNULL:             "Null",
	asn1.TagObjectIdentifier: "Object Identifier",
	asn1.TagEnumerated:       "Enumerated",
	asn1.TagUTF8String:       "UTF8 String",
	asn1.TagSequence:         "Sequence",
	asn1.TagSet:              "Set",
}

// LDAP protocolOp tags (application class).
var ldapOps = map[asn1.Tag]string{
	0:  "Bind Request",
	1:  "Bind Response",
	2:  "Unbind Request",
	3:  "Search Request",
	4:  "Search Result Entry",
	5:  "Search Result Done",
	6:  "Modify Request",
	7:  "Modify Response",
	8:  "Add Request",
	9:  "Add Response",
	10: "Delete Request",
	11: "Delete Response",
	12: "Modify DN Request",
	13: "Modify DN Response",
	14: "Compare Request",
	15: "Compare Response",
	16: "Abandon Request",
	23: "Extended Request",
	24: "Extended Response",
	25: "Intermediate Response",
}

// Outline decodes data as a single BER packet and flattens it. Trailing bytes
// after the first packet are ignored.
func Outline(data []byte) ([]Element, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ber: empty buffer")
	}
	pkt, err := asn1.DecodePacketErr(data)
	if err != nil {
		return nil, fmt.Errorf("ber: decode: %w", err)
	}
	var out []Element
	walk(pkt, 0, &out)
	return out, nil
}

func walk(p *asn1.Packet, depth int, out *[]Element) {
	el := Element{
		Depth:       depth,
		Class:       className(p.ClassType),
		Constructed: p.TagType == asn1.TypeConstructed,
		Tag:         uint64(p.Tag),
		Label:       label(p),
	}
	if p.Data != nil {
		el.Length = p.Data.Len()
	}
	*out = append(*out, el)
	for _, child := range p.Children {
		walk(child, depth+1, out)
	}
}

func className(c asn1.Class) string {
	switch c {
	case asn1.ClassUniversal:
		return "universal"
	case asn1.ClassApplication:
		return "application"
	case asn1.ClassContext:
		return "context"
	default:
		return "private"
	}
}

func label(p *asn1.Packet) string {
	switch p.ClassType {
	case asn1.ClassUniversal:
		if name, ok := universalTags[p.Tag]; ok {
			return name
		}
	case asn1.ClassApplication:
		if name, ok := ldapOps[p.Tag]; ok {
			return name
		}
	}
	return fmt.Sprintf("[%d]", p.Tag)
}

// Format renders elements one per line, indented by depth.
func Format(elements []Element) string {
	var b strings.Builder
	for _, el := range elements {
		kind := "prim"
		if el.Constructed {
			kind = "cons"
		}
		fmt.Fprintf(&b, "%s%s %s %s len=%d\n",
			strings.Repeat("  ", el.Depth), el.Label, el.Class, kind, el.Length)
	}
	return b.String()
}

// HexDump renders data as offset/hex/ascii rows.
func HexDump(data []byte) string {
	return hex.Dump(data)
}
