package scaler_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/talal02/inference-autoscaler/internal/scaler"
	"github.com/talal02/inference-autoscaler/internal/window"
)

func statsWithP99(p99 time.Duration, count int) window.Stats {
	return window.Stats{Count: count, P99: p99}
}

var _ = Describe("Policy", func() {
	var policy scaler.Policy

	BeforeEach(func() {
		policy = scaler.Policy{
			Ceiling:    330 * time.Millisecond,
			UpFactor:   1.2,
			DownStep:   1,
			Min:        1,
			Max:        8,
			MinSamples: 5,
		}
	})

	Describe("Decide", func() {
		Context("with insufficient samples", func() {
			It("should skip on an empty window", func() {
				_, err := policy.Decide(window.Stats{}, 3)
				Expect(err).To(MatchError(scaler.ErrInsufficientData))
			})

			It("should skip below the sample floor", func() {
				_, err := policy.Decide(statsWithP99(time.Second, 4), 3)
				Expect(err).To(MatchError(scaler.ErrInsufficientData))
			})
		})

		Context("when p99 exceeds the ceiling", func() {
			It("should scale up multiplicatively with ceil", func() {
				policy.Max = 20

				decision, err := policy.Decide(statsWithP99(500*time.Millisecond, 100), 10)
				Expect(err).NotTo(HaveOccurred())
				Expect(decision.Target).To(Equal(int32(12)))
			})

			It("should clamp the target to max replicas", func() {
				policy.Max = 20

				decision, err := policy.Decide(statsWithP99(500*time.Millisecond, 100), 18)
				Expect(err).NotTo(HaveOccurred())
				// ceil(18 * 1.2) = 22, clamped.
				Expect(decision.Target).To(Equal(int32(20)))
			})

			It("should hold steady when already at max", func() {
				decision, err := policy.Decide(statsWithP99(time.Second, 100), 8)
				Expect(err).NotTo(HaveOccurred())
				Expect(decision.NoOp()).To(BeTrue())
			})

			It("should always grow by at least one replica below max", func() {
				decision, err := policy.Decide(statsWithP99(time.Second, 100), 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(decision.Target).To(BeNumerically(">", 1))
			})
		})

		Context("when p99 is within the ceiling", func() {
			It("should scale down additively", func() {
				policy.Min = 2

				decision, err := policy.Decide(statsWithP99(100*time.Millisecond, 100), 5)
				Expect(err).NotTo(HaveOccurred())
				Expect(decision.Target).To(Equal(int32(4)))
			})

			It("should never go below min replicas", func() {
				policy.Min = 2

				decision, err := policy.Decide(statsWithP99(100*time.Millisecond, 100), 2)
				Expect(err).NotTo(HaveOccurred())
				Expect(decision.Target).To(Equal(int32(2)))
				Expect(decision.NoOp()).To(BeTrue())
			})

			It("should clamp a large down step to min", func() {
				policy.Min = 2
				policy.DownStep = 10

				decision, err := policy.Decide(statsWithP99(100*time.Millisecond, 100), 5)
				Expect(err).NotTo(HaveOccurred())
				Expect(decision.Target).To(Equal(int32(2)))
			})
		})

		Context("at the exact ceiling boundary", func() {
			It("should never scale up", func() {
				decision, err := policy.Decide(statsWithP99(330*time.Millisecond, 100), 5)
				Expect(err).NotTo(HaveOccurred())
				Expect(decision.Target).To(BeNumerically("<=", 5))
			})

			It("should flip to scale-up just past the ceiling", func() {
				decision, err := policy.Decide(statsWithP99(330*time.Millisecond+time.Nanosecond, 100), 5)
				Expect(err).NotTo(HaveOccurred())
				Expect(decision.Target).To(BeNumerically(">", 5))
			})
		})
	})
})
