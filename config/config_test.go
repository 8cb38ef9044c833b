package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/talal02/inference-autoscaler/config"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		viper.Reset()

		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tempDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	writeConfig := func(content string) {
		configPath := filepath.Join(tempDir, "config.yaml")
		err := os.WriteFile(configPath, []byte(content), 0644)
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("Load", func() {
		Context("with defaults only", func() {
			It("should load successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).NotTo(BeNil())
			})

			It("should default the scaling bounds", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Autoscaler.MinReplicas).To(Equal(1))
				Expect(cfg.Autoscaler.MaxReplicas).To(Equal(8))
				Expect(cfg.Autoscaler.ScaleUpFactor).To(Equal(1.2))
				Expect(cfg.Autoscaler.ScaleDownStep).To(Equal(1))
			})

			It("should default the window capacity", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Monitor.WindowCapacity).To(Equal(1000))
			})

			It("should parse duration accessors", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Autoscaler.PollEvery()).To(Equal(10 * time.Second))
				Expect(cfg.Autoscaler.Ceiling()).To(Equal(330 * time.Millisecond))
				Expect(cfg.Dispatcher.RefreshEvery()).To(Equal(5 * time.Second))
			})
		})

		Context("with a valid config file", func() {
			BeforeEach(func() {
				writeConfig(`
server:
  environment: "prod"

monitor:
  address: ":9100"
  window_capacity: 500

autoscaler:
  latency_ceiling: "250ms"
  max_replicas: 12

dispatcher:
  strategy: "round-robin"

logging:
  level: "debug"
`)
			})

			It("should override the defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Environment).To(Equal("prod"))
				Expect(cfg.Monitor.Address).To(Equal(":9100"))
				Expect(cfg.Monitor.WindowCapacity).To(Equal(500))
				Expect(cfg.Autoscaler.Ceiling()).To(Equal(250 * time.Millisecond))
				Expect(cfg.Autoscaler.MaxReplicas).To(Equal(12))
				Expect(cfg.Dispatcher.Strategy).To(Equal("round-robin"))
				Expect(cfg.Logging.Level).To(Equal("debug"))
			})
		})

		Context("with invalid scaling bounds", func() {
			It("should refuse min above max", func() {
				writeConfig(`
autoscaler:
  min_replicas: 5
  max_replicas: 2
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should refuse a scale-up factor of one or less", func() {
				writeConfig(`
autoscaler:
  scale_up_factor: 1.0
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with an invalid strategy", func() {
			It("should refuse startup", func() {
				writeConfig(`
dispatcher:
  strategy: "least-conn"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with an invalid duration", func() {
			It("should refuse startup", func() {
				writeConfig(`
autoscaler:
  poll_interval: "often"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with an invalid logging level", func() {
			It("should refuse startup", func() {
				writeConfig(`
logging:
  level: "verbose"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
