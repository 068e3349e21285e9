package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

// replyTo fabricates the well-formed echo reply a target would send back
// for req, optionally mutated before the checksum is recomputed.
func replyTo(req EchoPacket, mutate func(*EchoPacket)) []byte {
	r := req
	r.Type = TypeEchoReply
	if mutate != nil {
		mutate(&r)
	}
	r.Checksum = 0
	r.Checksum = Checksum(r.Marshal())
	return r.Marshal()
}

var _ = Describe("EchoPacket", func() {
	const (
		id  = uint16(0x4d2)
		seq = uint16(7)
	)
	var req EchoPacket

	BeforeEach(func() {
		req = NewEchoRequest(id, seq)
	})

	Describe("NewEchoRequest", func() {
		It("frames an echo request with a deterministic payload", func() {
			Expect(req.Type).To(Equal(uint8(TypeEchoRequest)))
			Expect(req.Code).To(Equal(uint8(0)))
			Expect(req.ID).To(Equal(id))
			Expect(req.Seq).To(Equal(seq))
			for i, c := range req.Payload {
				Expect(c).To(Equal(byte('0' + i)))
			}
		})

		It("stores a checksum that satisfies the self-check identity", func() {
			wire := req.Marshal()
			Expect(wire).To(HaveLen(Size))
			Expect(VerifyChecksum(wire)).To(BeTrue())
		})

		It("is byte-identical to what gopacket serializes", func() {
			icmp := layers.ICMPv4{
				TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
				Id:       id,
				Seq:      seq,
			}
			buf := gopacket.NewSerializeBuffer()
			err := gopacket.SerializeLayers(buf,
				gopacket.SerializeOptions{ComputeChecksums: true},
				&icmp, gopacket.Payload(req.Payload[:]))
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.Bytes()).To(Equal(req.Marshal()))
		})
	})

	Describe("Marshal and Unmarshal", func() {
		It("round-trips every field", func() {
			var got EchoPacket
			Expect(got.Unmarshal(req.Marshal())).To(Succeed())
			Expect(got).To(Equal(req))
		})

		It("rejects a truncated buffer", func() {
			var got EchoPacket
			err := got.Unmarshal(req.Marshal()[:Size-1])
			Expect(errors.Is(err, ErrTruncated)).To(BeTrue())
		})

		It("is decodable by gopacket", func() {
			pkt := gopacket.NewPacket(req.Marshal(), layers.LayerTypeICMPv4, gopacket.Default)
			layer := pkt.Layer(layers.LayerTypeICMPv4)
			Expect(layer).NotTo(BeNil())
			decoded := layer.(*layers.ICMPv4)
			Expect(decoded.TypeCode.Type()).To(Equal(uint8(layers.ICMPv4TypeEchoRequest)))
			Expect(decoded.Id).To(Equal(id))
			Expect(decoded.Seq).To(Equal(seq))
			Expect(decoded.Payload).To(Equal(req.Payload[:]))
		})
	})

	Describe("MatchesReply", func() {
		It("accepts the matching reply", func() {
			Expect(req.MatchesReply(replyTo(req, nil), id)).To(BeTrue())
		})

		It("rejects a message that is not an echo reply, even with id and payload intact", func() {
			Expect(req.MatchesReply(req.Marshal(), id)).To(BeFalse())
		})

		It("rejects a non-zero code", func() {
			candidate := replyTo(req, func(r *EchoPacket) { r.Code = 1 })
			Expect(req.MatchesReply(candidate, id)).To(BeFalse())
		})

		It("rejects a foreign identifier", func() {
			candidate := replyTo(req, func(r *EchoPacket) { r.ID = id + 1 })
			Expect(req.MatchesReply(candidate, id)).To(BeFalse())
		})

		It("rejects a payload differing in a single byte", func() {
			candidate := replyTo(req, func(r *EchoPacket) { r.Payload[17] ^= 0x01 })
			Expect(req.MatchesReply(candidate, id)).To(BeFalse())
		})

		It("rejects a truncated candidate", func() {
			Expect(req.MatchesReply(replyTo(req, nil)[:Size-4], id)).To(BeFalse())
		})
	})
})

var _ = Describe("Dump", func() {
	It("renders hex and printable ascii", func() {
		Expect(Dump([]byte{0x41, 0x42, 0x01})).To(Equal("41 42 01 ;AB."))
	})
})
