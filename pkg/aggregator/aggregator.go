package aggregator

import (
	"context"
	"time"

	"autoscaler/object"
	"autoscaler/pkg/applications"
	"autoscaler/pkg/klog"
	"autoscaler/pkg/manager"
)

// AppMetricProducer publishes aggregated application metrics on the bus.
type AppMetricProducer interface {
	ProduceApplicationMetric(metric *object.ApplicationMetric)
}

// Aggregator periodically collapses the buffered container and http
// metrics of every registered app into one application metric.
type Aggregator struct {
	manager  *manager.ScalableAppManager
	producer AppMetricProducer
	interval time.Duration
	stopCh   chan struct{}
}

func NewAggregator(appManager *manager.ScalableAppManager, producer AppMetricProducer, interval time.Duration) *Aggregator {
	return &Aggregator{
		manager:  appManager,
		producer: producer,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (a *Aggregator) Run() {
	go func() {
		for {
			select {
			case <-a.stopCh:
				return
			default:
			}
			a.AggregateApps()
			time.Sleep(a.interval)
		}
	}()
}

func (a *Aggregator) Stop() {
	close(a.stopCh)
}

// AggregateApps runs one aggregation tick over a snapshot of the registry.
func (a *Aggregator) AggregateApps() {
	ctx, cancel := context.WithTimeout(context.Background(), a.interval)
	defer cancel()
	for _, app := range a.manager.GetFlatCopyOfApps() {
		if err := app.Acquire(ctx); err != nil {
			klog.Warnf("Aggregator : skipping %s : %s\n", app.IdentifierString(), err.Error())
			continue
		}
		AggregateApp(app, a.producer)
		app.Release()
	}
}

/*
AggregateApp collapses the app's buffered metrics into one application
metric. Both buffers are drained regardless of the outcome; a metric is
only produced when the window holds at least one CPU and one RAM sample.
The caller must hold the app's mutex.
*/
func AggregateApp(app *applications.ScalableApp, producer AppMetricProducer) *object.ApplicationMetric {
	containerMetrics := app.GetCopyOfContainerMetricsList()
	httpMetrics := app.GetCopyOfHttpMetricsList()
	klog.Debugf("Aggregator : aggregating %d container and %d http metrics for %s\n",
		len(containerMetrics), len(httpMetrics), app.IdentifierString())

	maxAge := app.MaxMetricAge()
	var cpuSum int64
	var ramSum int64
	cpuCount := 0
	ramCount := 0
	for _, m := range containerMetrics {
		if m.TooOld(maxAge) {
			continue
		}
		if m.Cpu >= 0 {
			cpuSum += int64(m.Cpu)
			cpuCount++
		}
		if m.Ram >= 0 {
			ramSum += m.Ram
			ramCount++
		}
	}
	app.ResetContainerMetricsList()

	requests := 0
	var latencySum int64
	latencyCount := 0
	for _, m := range httpMetrics {
		if m.TooOld(maxAge) || m.Requests <= 0 {
			continue
		}
		requests += m.Requests
		if m.Latency >= 0 {
			latencySum += int64(m.Latency)
			latencyCount++
		}
	}
	app.ResetHttpMetricList()

	if cpuCount == 0 || ramCount == 0 {
		return nil
	}

	latency := 0
	if latencyCount > 0 {
		latency = int(latencySum / int64(latencyCount))
	}
	metric := &object.ApplicationMetric{
		Timestamp:     object.NowMillis(),
		AppId:         app.Binding().ResourceId,
		Cpu:           int(cpuSum / int64(cpuCount)),
		Ram:           ramSum / int64(ramCount),
		Requests:      requests,
		Latency:       latency,
		Quotient:      app.Request().Quotient(),
		InstanceCount: app.CurrentInstanceCount(),
		Description:   "",
	}
	if producer != nil {
		producer.ProduceApplicationMetric(metric)
	}
	app.AddApplicationMetric(*metric)
	klog.Debugf("Aggregator : new application metric for %s : %+v\n", app.IdentifierString(), metric)
	return metric
}
