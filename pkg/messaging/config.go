package messaging

import "time"

// Exchange names of the autoscaler topics. Every topic is a fanout
// exchange. Container, http and instance metrics are consumed; application
// metrics, scaling logs and binding events are published, and scaling logs
// are consumed as well to mirror them into the service log.
const (
	TopicContainerMetric   = "metric_container"
	TopicHttpMetric        = "metric_http"
	TopicInstanceMetric    = "metric_instance"
	TopicApplicationMetric = "metric_application"
	TopicScalingLog        = "scaling_log"
	TopicBinding           = "binding"
)

type QConfig struct {
	User          string
	Password      string
	Host          string
	Port          string
	MaxRetry      int
	RetryInterval time.Duration
}

func DefaultQConfig() *QConfig {
	return &QConfig{
		User:          "guest",
		Password:      "guest",
		Host:          "localhost",
		Port:          "5672",
		MaxRetry:      10,
		RetryInterval: 5 * time.Second,
	}
}
