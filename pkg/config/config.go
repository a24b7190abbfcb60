package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config carries every runtime setting of the autoscaler. All sections
// can be set in one yaml file; missing values keep their defaults.
type Config struct {
	LogFile string `yaml:"logFile"`
	Debug   bool   `yaml:"debug"`

	Broker BrokerConfig `yaml:"broker"`
	Http   HttpConfig   `yaml:"http"`
	Etcd   EtcdConfig   `yaml:"etcd"`
	Queue  QueueConfig  `yaml:"queue"`
	Engine EngineConfig `yaml:"engine"`
	Scaler ScalerConfig `yaml:"scaler"`

	Defaults AppDefaults `yaml:"defaults"`
}

// BrokerConfig holds the secret incoming requests authenticate with.
type BrokerConfig struct {
	Secret string `yaml:"secret"`
}

type HttpConfig struct {
	Port int `yaml:"port"`
}

type EtcdConfig struct {
	Endpoints      []string `yaml:"endpoints"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
}

func (c EtcdConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// QueueConfig holds the connection settings for the message queue.
type QueueConfig struct {
	User                 string `yaml:"user"`
	Password             string `yaml:"password"`
	Host                 string `yaml:"host"`
	Port                 string `yaml:"port"`
	MaxRetry             int    `yaml:"maxRetry"`
	RetryIntervalSeconds int    `yaml:"retryIntervalSeconds"`
}

func (c QueueConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalSeconds) * time.Second
}

// EngineConfig holds the connection settings for the scaling engine.
type EngineConfig struct {
	Host            string `yaml:"host"`
	ScalingEndpoint string `yaml:"scalingEndpoint"`
	NameEndpoint    string `yaml:"nameEndpoint"`
	Secret          string `yaml:"secret"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds"`
}

func (c EngineConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ScalerConfig holds the settings of the metric pipeline and the scaler loop.
type ScalerConfig struct {
	MaxMetricListSize      int   `yaml:"maxMetricListSize"`
	MaxMetricAgeMillis     int64 `yaml:"maxMetricAge"`
	UpdateAppNameAtBinding bool  `yaml:"updateAppNameAtBinding"`
	StaticScalingSize      int   `yaml:"staticScalingSize"`

	AggregatorIntervalSeconds int `yaml:"aggregatorIntervalSeconds"`
	ScalerIntervalSeconds     int `yaml:"scalerIntervalSeconds"`
}

func (c ScalerConfig) AggregatorInterval() time.Duration {
	return time.Duration(c.AggregatorIntervalSeconds) * time.Second
}

func (c ScalerConfig) ScalerInterval() time.Duration {
	return time.Duration(c.ScalerIntervalSeconds) * time.Second
}

// AppDefaults are the parameters a new binding starts with.
type AppDefaults struct {
	CpuUpperLimit      int    `yaml:"cpuUpperLimit"`
	CpuLowerLimit      int    `yaml:"cpuLowerLimit"`
	CpuThresholdPolicy string `yaml:"cpuThresholdPolicy"`

	RamUpperLimit      int64  `yaml:"ramUpperLimit"`
	RamLowerLimit      int64  `yaml:"ramLowerLimit"`
	RamThresholdPolicy string `yaml:"ramThresholdPolicy"`

	RequestUpperLimit      int    `yaml:"requestUpperLimit"`
	RequestLowerLimit      int    `yaml:"requestLowerLimit"`
	RequestThresholdPolicy string `yaml:"requestThresholdPolicy"`
	QuotientScalingEnabled bool   `yaml:"quotientScalingEnabled"`

	LatencyUpperLimit      int    `yaml:"latencyUpperLimit"`
	LatencyLowerLimit      int    `yaml:"latencyLowerLimit"`
	LatencyThresholdPolicy string `yaml:"latencyThresholdPolicy"`

	MinQuotient  int `yaml:"minQuotient"`
	MinInstances int `yaml:"minInstances"`
	MaxInstances int `yaml:"maxInstances"`

	CooldownTime              int64 `yaml:"cooldownTime"`
	LearningTimeMultiplier    int   `yaml:"learningTimeMultiplier"`
	ScalingIntervalMultiplier int   `yaml:"scalingIntervalMultiplier"`
}

func DefaultConfig() *Config {
	return &Config{
		LogFile: "",
		Debug:   false,
		Broker:  BrokerConfig{Secret: "secret"},
		Http:    HttpConfig{Port: 8080},
		Etcd: EtcdConfig{
			Endpoints:      []string{"localhost:2379"},
			TimeoutSeconds: 5,
		},
		Queue: QueueConfig{
			User:                 "guest",
			Password:             "guest",
			Host:                 "localhost",
			Port:                 "5672",
			MaxRetry:             10,
			RetryIntervalSeconds: 5,
		},
		Engine: EngineConfig{
			Host:            "localhost:8081",
			ScalingEndpoint: "resources",
			NameEndpoint:    "namefromid",
			Secret:          "secret",
			TimeoutSeconds:  10,
		},
		Scaler: ScalerConfig{
			MaxMetricListSize:         100,
			MaxMetricAgeMillis:        60000,
			UpdateAppNameAtBinding:    false,
			StaticScalingSize:         1,
			AggregatorIntervalSeconds: 30,
			ScalerIntervalSeconds:     30,
		},
		Defaults: AppDefaults{
			CpuUpperLimit:             90,
			CpuLowerLimit:             30,
			CpuThresholdPolicy:        "mean",
			RamUpperLimit:             734003200,
			RamLowerLimit:             157286400,
			RamThresholdPolicy:        "mean",
			RequestUpperLimit:         1000,
			RequestLowerLimit:         25,
			RequestThresholdPolicy:    "mean",
			QuotientScalingEnabled:    false,
			LatencyUpperLimit:         1200,
			LatencyLowerLimit:         25,
			LatencyThresholdPolicy:    "mean",
			MinQuotient:               0,
			MinInstances:              1,
			MaxInstances:              5,
			CooldownTime:              60000,
			LearningTimeMultiplier:    1,
			ScalingIntervalMultiplier: 1,
		},
	}
}

// LoadFile reads the yaml file at path over the defaults. An empty path
// returns the defaults unchanged.
func LoadFile(path string) (*Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	c.sanitize()
	return c, nil
}

func (c *Config) sanitize() {
	if c.Scaler.StaticScalingSize <= 0 {
		c.Scaler.StaticScalingSize = 1
	}
	if c.Scaler.MaxMetricListSize <= 0 {
		c.Scaler.MaxMetricListSize = 1
	}
}
