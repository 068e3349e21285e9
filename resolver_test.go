package pingprobe

import (
	"context"
	"net/netip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("Resolve", func() {
	It("passes numeric addresses through", func() {
		addr, err := Resolve(context.Background(), "127.0.0.1")
		Expect(err).NotTo(HaveOccurred())
		Expect(addr).To(Equal(netip.MustParseAddr("127.0.0.1")))
	})

	It("reports ErrResolution for a name that cannot resolve", func() {
		// .invalid is reserved to never resolve (RFC 2606).
		_, err := Resolve(context.Background(), "host.invalid")
		Expect(errors.Is(err, ErrResolution)).To(BeTrue())
	})
})

var _ = Describe("Probe", func() {
	It("maps a resolution failure to a TransportFailure result", func() {
		p := New()
		res := p.Probe(context.Background(), "host.invalid")
		Expect(res.Outcome).To(Equal(TransportFailure))
		Expect(errors.Is(res.Err, ErrResolution)).To(BeTrue())
	})
})
