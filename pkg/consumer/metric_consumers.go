package consumer

import (
	"encoding/json"

	"github.com/streadway/amqp"

	"autoscaler/object"
	"autoscaler/pkg/applications"
	"autoscaler/pkg/klog"
	"autoscaler/pkg/manager"
	"autoscaler/pkg/messaging"
)

// ContainerMetricConsumer routes container metrics from the bus onto the
// buffer of the bound application.
type ContainerMetricConsumer struct {
	consumerBase
}

func NewContainerMetricConsumer(appManager *manager.ScalableAppManager, sub subscriber) *ContainerMetricConsumer {
	return &ContainerMetricConsumer{
		consumerBase: newConsumerBase(appManager, sub, messaging.TopicContainerMetric),
	}
}

func (c *ContainerMetricConsumer) Start() error {
	return c.start(c.consume)
}

func (c *ContainerMetricConsumer) consume(d amqp.Delivery) {
	metric := object.ContainerMetric{}
	if err := json.Unmarshal(d.Body, &metric); err != nil {
		klog.Errorf("ContainerMetricConsumer : error decoding message : %s\n", err.Error())
		return
	}
	c.withApp(metric.AppId, func(app *applications.ScalableApp) {
		app.AddContainerMetric(metric)
	})
}

// HttpMetricConsumer routes http metrics from the bus onto the buffer of
// the bound application.
type HttpMetricConsumer struct {
	consumerBase
}

func NewHttpMetricConsumer(appManager *manager.ScalableAppManager, sub subscriber) *HttpMetricConsumer {
	return &HttpMetricConsumer{
		consumerBase: newConsumerBase(appManager, sub, messaging.TopicHttpMetric),
	}
}

func (c *HttpMetricConsumer) Start() error {
	return c.start(c.consume)
}

func (c *HttpMetricConsumer) consume(d amqp.Delivery) {
	metric := object.HttpMetric{}
	if err := json.Unmarshal(d.Body, &metric); err != nil {
		klog.Errorf("HttpMetricConsumer : error decoding message : %s\n", err.Error())
		return
	}
	c.withApp(metric.AppId, func(app *applications.ScalableApp) {
		app.AddHttpMetric(metric)
	})
}

// InstanceMetricConsumer records platform instance-count notifications,
// both on the bound application and in the tracker so that counts
// reported before a bind are not lost.
type InstanceMetricConsumer struct {
	consumerBase
	tracker *InstanceCountTracker
}

func NewInstanceMetricConsumer(appManager *manager.ScalableAppManager, sub subscriber,
	tracker *InstanceCountTracker) *InstanceMetricConsumer {
	return &InstanceMetricConsumer{
		consumerBase: newConsumerBase(appManager, sub, messaging.TopicInstanceMetric),
		tracker:      tracker,
	}
}

func (c *InstanceMetricConsumer) Start() error {
	return c.start(c.consume)
}

func (c *InstanceMetricConsumer) consume(d amqp.Delivery) {
	metric := object.InstanceMetric{}
	if err := json.Unmarshal(d.Body, &metric); err != nil {
		klog.Errorf("InstanceMetricConsumer : error decoding message : %s\n", err.Error())
		return
	}
	if c.tracker != nil {
		c.tracker.Record(metric.AppId, metric.InstanceCount)
	}
	c.withApp(metric.AppId, func(app *applications.ScalableApp) {
		app.SetCurrentInstanceCount(metric.InstanceCount)
	})
}

// ScalingLogConsumer mirrors published scaling logs into the service log
// for operator visibility.
type ScalingLogConsumer struct {
	consumerBase
}

func NewScalingLogConsumer(appManager *manager.ScalableAppManager, sub subscriber) *ScalingLogConsumer {
	return &ScalingLogConsumer{
		consumerBase: newConsumerBase(appManager, sub, messaging.TopicScalingLog),
	}
}

func (c *ScalingLogConsumer) Start() error {
	return c.start(c.consume)
}

func (c *ScalingLogConsumer) consume(d amqp.Delivery) {
	scalingLog := object.ScalingLog{}
	if err := json.Unmarshal(d.Body, &scalingLog); err != nil {
		klog.Errorf("ScalingLogConsumer : error decoding message : %s\n", err.Error())
		return
	}
	klog.Infof("ScalingLog : %s/%s scaled %d -> %d (%s) %s\n",
		scalingLog.BindingId, scalingLog.ResourceId,
		scalingLog.OldInstances, scalingLog.NewInstances,
		scalingLog.Reason, scalingLog.Description)
}
