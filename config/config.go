package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Environment string `mapstructure:"environment"`
}

type MonitorConfig struct {
	Address        string `mapstructure:"address"`
	BaseURL        string `mapstructure:"base_url"`
	WindowCapacity int    `mapstructure:"window_capacity"`
}

type DispatcherConfig struct {
	Address         string `mapstructure:"address"`
	Strategy        string `mapstructure:"strategy"`
	RefreshInterval string `mapstructure:"refresh_interval"`
	RequestTimeout  string `mapstructure:"request_timeout"`
	ReportTimeout   string `mapstructure:"report_timeout"`
	ReportBuffer    int    `mapstructure:"report_buffer"`
	BackendPort     int    `mapstructure:"backend_port"`
	BackendPath     string `mapstructure:"backend_path"`
}

type AutoscalerConfig struct {
	PollInterval   string  `mapstructure:"poll_interval"`
	LatencyCeiling string  `mapstructure:"latency_ceiling"`
	ScaleUpFactor  float64 `mapstructure:"scale_up_factor"`
	ScaleDownStep  int     `mapstructure:"scale_down_step"`
	MinReplicas    int     `mapstructure:"min_replicas"`
	MaxReplicas    int     `mapstructure:"max_replicas"`
	MinSamples     int     `mapstructure:"min_samples"`
	CallTimeout    string  `mapstructure:"call_timeout"`
}

type KubernetesConfig struct {
	Namespace     string `mapstructure:"namespace"`
	Deployment    string `mapstructure:"deployment"`
	LabelSelector string `mapstructure:"label_selector"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Autoscaler AutoscalerConfig `mapstructure:"autoscaler"`
	Kubernetes KubernetesConfig `mapstructure:"kubernetes"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("monitor.address", ":9000")
	viper.SetDefault("monitor.base_url", "http://monitor:9000")
	viper.SetDefault("monitor.window_capacity", 1000)
	viper.SetDefault("dispatcher.address", ":8080")
	viper.SetDefault("dispatcher.strategy", "random")
	viper.SetDefault("dispatcher.refresh_interval", "5s")
	viper.SetDefault("dispatcher.request_timeout", "10s")
	viper.SetDefault("dispatcher.report_timeout", "1s")
	viper.SetDefault("dispatcher.report_buffer", 1024)
	viper.SetDefault("dispatcher.backend_port", 5000)
	viper.SetDefault("dispatcher.backend_path", "/predict")
	viper.SetDefault("autoscaler.poll_interval", "10s")
	viper.SetDefault("autoscaler.latency_ceiling", "330ms")
	viper.SetDefault("autoscaler.scale_up_factor", 1.2)
	viper.SetDefault("autoscaler.scale_down_step", 1)
	viper.SetDefault("autoscaler.min_replicas", 1)
	viper.SetDefault("autoscaler.max_replicas", 8)
	viper.SetDefault("autoscaler.min_samples", 20)
	viper.SetDefault("autoscaler.call_timeout", "10s")
	viper.SetDefault("kubernetes.namespace", "default")
	viper.SetDefault("kubernetes.deployment", "image-classifier")
	viper.SetDefault("kubernetes.label_selector", "app=image-classifier")
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
				)
			}),
		),
		validation.Field(&c.Monitor,
			validation.Required,
			validation.By(validateMonitorConfig),
		),
		validation.Field(&c.Dispatcher,
			validation.Required,
			validation.By(validateDispatcherConfig),
		),
		validation.Field(&c.Autoscaler,
			validation.Required,
			validation.By(validateAutoscalerConfig),
		),
		validation.Field(&c.Kubernetes,
			validation.Required,
			validation.By(func(value interface{}) error {
				kc, ok := value.(KubernetesConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a KubernetesConfig")
				}
				return validation.ValidateStruct(&kc,
					validation.Field(&kc.Namespace, validation.Required),
					validation.Field(&kc.Deployment, validation.Required),
					validation.Field(&kc.LabelSelector, validation.Required),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}

func validateMonitorConfig(value interface{}) error {
	mc, ok := value.(MonitorConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a MonitorConfig")
	}
	return validation.ValidateStruct(&mc,
		validation.Field(&mc.Address,
			validation.Required,
			validation.By(validateHostPort),
		),
		validation.Field(&mc.BaseURL,
			validation.Required,
			validation.By(validateServerURL),
		),
		validation.Field(&mc.WindowCapacity,
			validation.Required,
			validation.Min(1),
		),
	)
}

func validateDispatcherConfig(value interface{}) error {
	dc, ok := value.(DispatcherConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a DispatcherConfig")
	}
	return validation.ValidateStruct(&dc,
		validation.Field(&dc.Address,
			validation.Required,
			validation.By(validateHostPort),
		),
		validation.Field(&dc.Strategy,
			validation.Required,
			validation.In("random", "round-robin"),
		),
		validation.Field(&dc.RefreshInterval,
			validation.Required,
			validation.By(validateDuration),
		),
		validation.Field(&dc.RequestTimeout,
			validation.Required,
			validation.By(validateDuration),
		),
		validation.Field(&dc.ReportTimeout,
			validation.Required,
			validation.By(validateDuration),
		),
		validation.Field(&dc.ReportBuffer,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&dc.BackendPort,
			validation.Required,
			validation.Min(1),
			validation.Max(65535),
		),
		validation.Field(&dc.BackendPath, validation.Required),
	)
}

func validateAutoscalerConfig(value interface{}) error {
	ac, ok := value.(AutoscalerConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be an AutoscalerConfig")
	}

	if err := validation.ValidateStruct(&ac,
		validation.Field(&ac.PollInterval,
			validation.Required,
			validation.By(validateDuration),
		),
		validation.Field(&ac.LatencyCeiling,
			validation.Required,
			validation.By(validateDuration),
		),
		validation.Field(&ac.ScaleUpFactor,
			validation.Required,
			validation.Min(1.0).Exclusive(),
		),
		validation.Field(&ac.ScaleDownStep,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&ac.MinReplicas,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&ac.MaxReplicas,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&ac.MinSamples,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&ac.CallTimeout,
			validation.Required,
			validation.By(validateDuration),
		),
	); err != nil {
		return err
	}

	if ac.MinReplicas > ac.MaxReplicas {
		return validation.NewError("validation_invalid_bounds", "min_replicas cannot exceed max_replicas")
	}

	return nil
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.ParseDuration(durationStr); err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	return nil
}

func validateServerURL(value interface{}) error {
	serverURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if serverURL == "" {
		return validation.NewError("validation_empty_url", "server URL cannot be empty")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

// The duration accessors below assume Validate has already passed; the
// string forms are checked there, so the parse cannot fail here.

func (dc DispatcherConfig) RefreshEvery() time.Duration {
	d, _ := time.ParseDuration(dc.RefreshInterval)
	return d
}

func (dc DispatcherConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(dc.RequestTimeout)
	return d
}

func (dc DispatcherConfig) ReportTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(dc.ReportTimeout)
	return d
}

func (ac AutoscalerConfig) PollEvery() time.Duration {
	d, _ := time.ParseDuration(ac.PollInterval)
	return d
}

func (ac AutoscalerConfig) Ceiling() time.Duration {
	d, _ := time.ParseDuration(ac.LatencyCeiling)
	return d
}

func (ac AutoscalerConfig) CallTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(ac.CallTimeout)
	return d
}
