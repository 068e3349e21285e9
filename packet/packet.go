// Package packet frames and parses ICMPv4 echo messages. The wire layout
// is kept explicit: fields are serialized into a fixed-length buffer in
// network byte order and read back with bounds checks, never by aliasing
// a buffer as a struct.
package packet

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// TypeEchoRequest and TypeEchoReply are the ICMPv4 message types of
	// the ping request/reply pair.
	TypeEchoRequest = 8
	TypeEchoReply   = 0

	// HeaderLen is the ICMP echo header size on the wire.
	HeaderLen = 8

	// Size is the total on-wire size of an echo message, header included.
	// 64 bytes is the conventional ping packet size.
	Size = 64

	// PayloadLen is the number of payload bytes following the header.
	PayloadLen = Size - HeaderLen
)

// ErrTruncated is returned when a buffer is too short to hold a whole
// echo message.
var ErrTruncated = errors.New("truncated echo message")

// EchoPacket is one ICMP echo message. An instance built by
// NewEchoRequest is retained only long enough to match the corresponding
// reply; its payload and identifier are the comparison baseline.
type EchoPacket struct {
	Type     uint8
	Code     uint8
	Checksum uint16
	ID       uint16
	Seq      uint16
	Payload  [PayloadLen]byte
}

// NewEchoRequest builds an echo request with the given identifier and
// sequence number. The payload is a deterministic ascending byte pattern
// so a reply can be compared byte-for-byte against what was sent. The
// checksum is computed last, over the fully populated message.
func NewEchoRequest(id, seq uint16) EchoPacket {
	p := EchoPacket{Type: TypeEchoRequest, ID: id, Seq: seq}
	for i := range p.Payload {
		p.Payload[i] = byte('0' + i)
	}
	p.Checksum = Checksum(p.Marshal())
	return p
}

// Marshal serializes p into a fresh Size-byte buffer in network byte
// order. The checksum field is written as-is; NewEchoRequest computes it
// over the marshaled form with the field still zero.
func (p EchoPacket) Marshal() []byte {
	b := make([]byte, Size)
	b[0] = p.Type
	b[1] = p.Code
	binary.BigEndian.PutUint16(b[2:4], p.Checksum)
	binary.BigEndian.PutUint16(b[4:6], p.ID)
	binary.BigEndian.PutUint16(b[6:8], p.Seq)
	copy(b[HeaderLen:], p.Payload[:])
	return b
}

// Unmarshal parses a Size-byte echo message out of b.
func (p *EchoPacket) Unmarshal(b []byte) error {
	if len(b) < Size {
		return errors.Wrapf(ErrTruncated, "got %d bytes, want %d", len(b), Size)
	}
	p.Type = b[0]
	p.Code = b[1]
	p.Checksum = binary.BigEndian.Uint16(b[2:4])
	p.ID = binary.BigEndian.Uint16(b[4:6])
	p.Seq = binary.BigEndian.Uint16(b[6:8])
	copy(p.Payload[:], b[HeaderLen:Size])
	return nil
}

// MatchesReply reports whether candidate is the echo reply to p for the
// sender identified by id: it must decode, carry type EchoReply with code
// zero, echo the identifier and carry a payload byte-identical to the one
// sent. A raw ICMP socket sees every ICMP datagram addressed to the host,
// so anything else is unrelated traffic to be ignored, not an error.
func (p EchoPacket) MatchesReply(candidate []byte, id uint16) bool {
	var r EchoPacket
	if err := r.Unmarshal(candidate); err != nil {
		return false
	}
	if r.Type != TypeEchoReply || r.Code != 0 {
		return false
	}
	if r.ID != id {
		return false
	}
	return bytes.Equal(r.Payload[:], p.Payload[:])
}
