package backend_test

import (
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/talal02/inference-autoscaler/internal/backend"
)

var _ = Describe("Backend", func() {
	var b *backend.Backend

	BeforeEach(func() {
		u, err := url.Parse("http://10.0.0.1:5000")
		Expect(err).NotTo(HaveOccurred())
		b = backend.New(u, true)
	})

	Describe("Ready", func() {
		It("should reflect the initial state", func() {
			Expect(b.Ready()).To(BeTrue())
		})
	})

	Describe("SetReady", func() {
		It("should report a change", func() {
			Expect(b.SetReady(false)).To(BeTrue())
			Expect(b.Ready()).To(BeFalse())
		})

		It("should report no change when state is unchanged", func() {
			Expect(b.SetReady(true)).To(BeFalse())
		})
	})

	Describe("URL", func() {
		It("should return the endpoint", func() {
			Expect(b.URL().Host).To(Equal("10.0.0.1:5000"))
		})
	})
})
