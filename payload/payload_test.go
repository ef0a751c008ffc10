package payload_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/netsim-project/netsim/payload"
)

var _ = Describe("Bytes", func() {
	It("reports its length as BytesSize", func() {
		b := payload.NewBytes([]byte("Hello"))
		Expect(b.BytesSize()).To(BeEquivalentTo(5))
	})

	It("invokes the release hook exactly once when Free is called", func() {
		released := 0
		var releasedBody []byte
		b := payload.NewOwnedBytes([]byte("Hello"), func(body []byte) {
			released++
			releasedBody = body
		})
		b.Free()
		Expect(released).To(Equal(1))
		Expect(string(releasedBody)).To(Equal("Hello"))
	})

	It("tolerates Free on a zero-value Bytes", func() {
		var b payload.Bytes
		Expect(func() { b.Free() }).NotTo(Panic())
	})
})

var _ = Describe("Sized", func() {
	It("reports the wrapped size with no backing bytes", func() {
		Expect(payload.Sized(42).BytesSize()).To(BeEquivalentTo(42))
	})
})
