package producer

import (
	"encoding/json"

	uuid "github.com/satori/go.uuid"

	"autoscaler/object"
	"autoscaler/pkg/klog"
	"autoscaler/pkg/messaging"
)

const contentTypeJson = "application/json"

// publisher is the part of messaging.Publisher the producer needs.
type publisher interface {
	Publish(exchangeName string, body []byte, contentType string) error
}

// MetricProducer publishes the outgoing topics of the autoscaler:
// aggregated application metrics, scaling logs and binding events.
// Publish failures are logged, never propagated; the bus is retried by
// the next cycle anyway.
type MetricProducer struct {
	publisher publisher
}

func NewMetricProducer(p *messaging.Publisher) *MetricProducer {
	return &MetricProducer{publisher: p}
}

func (p *MetricProducer) ProduceApplicationMetric(metric *object.ApplicationMetric) {
	p.publish(messaging.TopicApplicationMetric, metric)
}

func (p *MetricProducer) ProduceScalingLog(scalingLog *object.ScalingLog) {
	p.publish(messaging.TopicScalingLog, scalingLog)
}

func (p *MetricProducer) ProduceBindingEvent(action string, binding *object.Binding) {
	event := &object.BindingEvent{
		EventId:    uuid.NewV4().String(),
		Timestamp:  object.NowMillis(),
		Action:     action,
		BindingId:  binding.Id,
		ResourceId: binding.ResourceId,
		ScalerId:   binding.ScalerId,
	}
	p.publish(messaging.TopicBinding, event)
}

func (p *MetricProducer) publish(topic string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		klog.Errorf("Producer : error marshalling message for %s : %s\n", topic, err.Error())
		return
	}
	if err := p.publisher.Publish(topic, body, contentTypeJson); err != nil {
		klog.Errorf("Producer : error publishing on %s : %s\n", topic, err.Error())
	}
}
