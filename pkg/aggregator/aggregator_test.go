package aggregator

import (
	"testing"

	"gotest.tools/v3/assert"

	"autoscaler/object"
	"autoscaler/pkg/applications"
)

type fakeProducer struct {
	metrics []*object.ApplicationMetric
}

func (p *fakeProducer) ProduceApplicationMetric(metric *object.ApplicationMetric) {
	p.metrics = append(p.metrics, metric)
}

func testApp() *applications.ScalableApp {
	bp := &object.AppBlueprint{
		Binding: &object.Binding{
			Id:         "binding-1",
			ResourceId: "resource-1",
		},
		CpuUpperLimit:             70,
		CpuLowerLimit:             20,
		CpuThresholdPolicy:        applications.PolicyMean,
		RamUpperLimit:             1073741824,
		RamLowerLimit:             0,
		RamThresholdPolicy:        applications.PolicyMean,
		RequestUpperLimit:         1000,
		RequestLowerLimit:         25,
		RequestThresholdPolicy:    applications.PolicyMean,
		LatencyUpperLimit:         1200,
		LatencyLowerLimit:         25,
		LatencyThresholdPolicy:    applications.PolicyMean,
		MinInstances:              1,
		MaxInstances:              5,
		CooldownTime:              60000,
		LearningTimeMultiplier:    1,
		ScalingIntervalMultiplier: 1,
	}
	return applications.NewApp(bp, 100, 60000)
}

func TestAggregateProducesApplicationMetric(t *testing.T) {
	app := testApp()
	app.SetCurrentInstanceCount(2)
	app.Request().SetQuotient(7)
	now := object.NowMillis()
	app.AddContainerMetric(object.ContainerMetric{Timestamp: now, AppId: "resource-1", InstanceIndex: 0, Cpu: 40, Ram: 100})
	app.AddContainerMetric(object.ContainerMetric{Timestamp: now, AppId: "resource-1", InstanceIndex: 1, Cpu: 60, Ram: 300})
	app.AddHttpMetric(object.HttpMetric{Timestamp: now, AppId: "resource-1", Requests: 10, Latency: 100})
	app.AddHttpMetric(object.HttpMetric{Timestamp: now, AppId: "resource-1", Requests: 20, Latency: 300})

	producer := &fakeProducer{}
	metric := AggregateApp(app, producer)

	assert.Assert(t, metric != nil)
	assert.Equal(t, 50, metric.Cpu)
	assert.Equal(t, int64(200), metric.Ram)
	assert.Equal(t, 30, metric.Requests)
	assert.Equal(t, 200, metric.Latency)
	assert.Equal(t, 7, metric.Quotient)
	assert.Equal(t, 2, metric.InstanceCount)
	assert.Equal(t, "resource-1", metric.AppId)

	// published and appended to the app's window
	assert.Equal(t, 1, len(producer.metrics))
	assert.Equal(t, 1, len(app.GetCopyOfApplicationMetricsList()))
	// both buffers drained
	assert.Equal(t, 0, len(app.GetCopyOfContainerMetricsList()))
	assert.Equal(t, 0, len(app.GetCopyOfHttpMetricsList()))
}

func TestAggregateRequiresJointCpuAndRamPresence(t *testing.T) {
	app := testApp()
	now := object.NowMillis()
	// cpu present, ram missing on every sample
	app.AddContainerMetric(object.ContainerMetric{Timestamp: now, InstanceIndex: 0, Cpu: 40, Ram: object.MetricValueMissing})
	app.AddHttpMetric(object.HttpMetric{Timestamp: now, Requests: 10, Latency: 100})

	producer := &fakeProducer{}
	metric := AggregateApp(app, producer)

	assert.Assert(t, metric == nil)
	assert.Equal(t, 0, len(producer.metrics))
	// buffers are drained regardless of the outcome
	assert.Equal(t, 0, len(app.GetCopyOfContainerMetricsList()))
	assert.Equal(t, 0, len(app.GetCopyOfHttpMetricsList()))
}

func TestAggregateEmptyWindow(t *testing.T) {
	app := testApp()
	producer := &fakeProducer{}
	metric := AggregateApp(app, producer)
	assert.Assert(t, metric == nil)
	assert.Equal(t, 0, len(producer.metrics))
}

func TestAggregateFiltersOldAndZeroRequestMetrics(t *testing.T) {
	app := testApp()
	now := object.NowMillis()
	app.AddContainerMetric(object.ContainerMetric{Timestamp: now, InstanceIndex: 0, Cpu: 50, Ram: 100})
	app.AddContainerMetric(object.ContainerMetric{Timestamp: now - 120000, InstanceIndex: 1, Cpu: 90, Ram: 900})
	app.AddHttpMetric(object.HttpMetric{Timestamp: now, Requests: 10, Latency: 100})
	app.AddHttpMetric(object.HttpMetric{Timestamp: now, Requests: 0, Latency: 900})
	app.AddHttpMetric(object.HttpMetric{Timestamp: now, Requests: 5, Latency: object.MetricValueMissing})

	metric := AggregateApp(app, nil)

	assert.Assert(t, metric != nil)
	assert.Equal(t, 50, metric.Cpu)
	assert.Equal(t, int64(100), metric.Ram)
	assert.Equal(t, 15, metric.Requests)
	assert.Equal(t, 100, metric.Latency)
}
