package pool_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/talal02/inference-autoscaler/internal/cluster"
	"github.com/talal02/inference-autoscaler/internal/pool"
)

// stubController serves canned discovery results and counts calls.
type stubController struct {
	mutex     sync.Mutex
	endpoints []cluster.Endpoint
	err       error
	calls     int
}

func (s *stubController) Endpoints(ctx context.Context) ([]cluster.Endpoint, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.endpoints, nil
}

func (s *stubController) Replicas(ctx context.Context) (int32, error) { return 0, nil }

func (s *stubController) Scale(ctx context.Context, replicas int32) error { return nil }

func (s *stubController) set(endpoints []cluster.Endpoint, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.endpoints = endpoints
	s.err = err
}

func (s *stubController) callCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls
}

var _ = Describe("Pool", func() {
	var (
		log    *slog.Logger
		source *stubController
		p      *pool.Pool
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		source = &stubController{}
		p = pool.New(log, source, time.Second)
	})

	Describe("New", func() {
		It("should start with an empty snapshot", func() {
			Expect(p.Backends()).To(BeEmpty())
			Expect(p.Ready()).To(BeEmpty())
		})
	})

	Describe("Refresh", func() {
		It("should replace the snapshot with discovered endpoints", func() {
			source.set([]cluster.Endpoint{
				{Address: "10.0.0.1:5000", Ready: true},
				{Address: "10.0.0.2:5000", Ready: true},
			}, nil)

			Expect(p.Refresh(context.Background())).To(Succeed())
			Expect(p.Backends()).To(HaveLen(2))
		})

		It("should never include not-ready endpoints in Ready", func() {
			source.set([]cluster.Endpoint{
				{Address: "10.0.0.1:5000", Ready: true},
				{Address: "10.0.0.2:5000", Ready: false},
			}, nil)

			Expect(p.Refresh(context.Background())).To(Succeed())
			Expect(p.Backends()).To(HaveLen(2))

			ready := p.Ready()
			Expect(ready).To(HaveLen(1))
			Expect(ready[0].URL().Host).To(Equal("10.0.0.1:5000"))
		})

		It("should keep the previous snapshot on discovery failure", func() {
			source.set([]cluster.Endpoint{{Address: "10.0.0.1:5000", Ready: true}}, nil)
			Expect(p.Refresh(context.Background())).To(Succeed())

			source.set(nil, errors.New("controller down"))
			Expect(p.Refresh(context.Background())).NotTo(Succeed())
			Expect(p.Backends()).To(HaveLen(1))
		})
	})

	Describe("Run", func() {
		It("should refresh periodically until cancelled", func() {
			source.set([]cluster.Endpoint{{Address: "10.0.0.1:5000", Ready: true}}, nil)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				defer close(done)
				p.Run(ctx, 10*time.Millisecond)
			}()

			Eventually(source.callCount).Should(BeNumerically(">=", 3))
			Expect(p.Ready()).To(HaveLen(1))

			cancel()
			Eventually(done).Should(BeClosed())
		})
	})
})
