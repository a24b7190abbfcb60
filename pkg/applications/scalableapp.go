package applications

import (
	"context"
	"fmt"

	"autoscaler/object"
	"autoscaler/util/queue"
)

// Floors enforced by validation.
const (
	CooldownMin                  = 60000
	LearningMultiplierMin        = 1
	ScalingIntervalMultiplierMin = 1
)

/*
ScalableApp is the per-binding aggregate: the binding identity, the four
component wrappers, the bounded metric buffers and the scheduling state of
the scaler loop.

Every read and mutation of wrappers, buffers and scheduling state must
happen with the app's mutex held via Acquire/Release. Critical sections
span several calls, which is why the mutex is exposed instead of being
scoped inside each method.
*/
type ScalableApp struct {
	binding *object.Binding

	cpu     *ComponentWrapper
	ram     *ComponentWrapper
	request *ComponentWrapper
	latency *ComponentWrapper

	minQuotient  int
	minInstances int
	maxInstances int

	cooldownTime              int64
	learningTimeMultiplier    int
	scalingIntervalMultiplier int

	currentIntervalState int
	lastScalingTime      int64
	learningStartTime    int64

	currentInstanceCount int
	maxMetricAge         int64

	containerMetrics *queue.RingQueue[object.ContainerMetric]
	httpMetrics      *queue.RingQueue[object.HttpMetric]
	appMetrics       *queue.RingQueue[object.ApplicationMetric]

	lock chan struct{}
}

// NewApp builds a ScalableApp from a blueprint. The blueprint is expected
// to have passed Validate; no checks are repeated here.
func NewApp(bp *object.AppBlueprint, maxMetricListSize int, maxMetricAge int64) *ScalableApp {
	app := &ScalableApp{
		binding:                   bp.Binding,
		cpu:                       newComponentWrapper(ComponentCpu, int64(bp.CpuUpperLimit), int64(bp.CpuLowerLimit), bp.CpuThresholdPolicy),
		ram:                       newComponentWrapper(ComponentRam, bp.RamUpperLimit, bp.RamLowerLimit, bp.RamThresholdPolicy),
		request:                   newComponentWrapper(ComponentHttpRequests, int64(bp.RequestUpperLimit), int64(bp.RequestLowerLimit), bp.RequestThresholdPolicy),
		latency:                   newComponentWrapper(ComponentLatency, int64(bp.LatencyUpperLimit), int64(bp.LatencyLowerLimit), bp.LatencyThresholdPolicy),
		minQuotient:               bp.MinQuotient,
		minInstances:              bp.MinInstances,
		maxInstances:              bp.MaxInstances,
		cooldownTime:              bp.CooldownTime,
		learningTimeMultiplier:    bp.LearningTimeMultiplier,
		scalingIntervalMultiplier: bp.ScalingIntervalMultiplier,
		currentIntervalState:      bp.CurrentIntervalState,
		lastScalingTime:           bp.LastScalingTime,
		learningStartTime:         bp.LearningStartTime,
		currentInstanceCount:      0,
		maxMetricAge:              maxMetricAge,
		containerMetrics:          queue.NewRingQueue[object.ContainerMetric](maxMetricListSize),
		httpMetrics:               queue.NewRingQueue[object.HttpMetric](maxMetricListSize),
		appMetrics:                queue.NewRingQueue[object.ApplicationMetric](maxMetricListSize),
		lock:                      make(chan struct{}, 1),
	}
	app.request.SetQuotientScalingEnabled(bp.QuotientScalingEnabled)
	return app
}

// Acquire takes the app's mutex, blocking until it is available or the
// context is done.
func (app *ScalableApp) Acquire(ctx context.Context) error {
	select {
	case app.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release gives the mutex back. Callers must hold it.
func (app *ScalableApp) Release() {
	<-app.lock
}

func (app *ScalableApp) Binding() *object.Binding {
	return app.binding
}

// IdentifierString returns the log identifier of the app's binding.
func (app *ScalableApp) IdentifierString() string {
	return app.binding.IdentifierString()
}

func (app *ScalableApp) Cpu() *ComponentWrapper {
	return app.cpu
}

func (app *ScalableApp) Ram() *ComponentWrapper {
	return app.ram
}

func (app *ScalableApp) Request() *ComponentWrapper {
	return app.request
}

func (app *ScalableApp) Latency() *ComponentWrapper {
	return app.latency
}

func (app *ScalableApp) MinQuotient() int {
	return app.minQuotient
}

func (app *ScalableApp) MinInstances() int {
	return app.minInstances
}

func (app *ScalableApp) MaxInstances() int {
	return app.maxInstances
}

func (app *ScalableApp) CooldownTime() int64 {
	return app.cooldownTime
}

func (app *ScalableApp) LearningTimeMultiplier() int {
	return app.learningTimeMultiplier
}

func (app *ScalableApp) ScalingIntervalMultiplier() int {
	return app.scalingIntervalMultiplier
}

func (app *ScalableApp) CurrentIntervalState() int {
	return app.currentIntervalState
}

func (app *ScalableApp) SetCurrentIntervalState(state int) {
	app.currentIntervalState = state
}

func (app *ScalableApp) LastScalingTime() int64 {
	return app.lastScalingTime
}

func (app *ScalableApp) SetLastScalingTime(timestamp int64) {
	app.lastScalingTime = timestamp
}

func (app *ScalableApp) LearningStartTime() int64 {
	return app.learningStartTime
}

func (app *ScalableApp) SetLearningStartTime(timestamp int64) {
	app.learningStartTime = timestamp
}

func (app *ScalableApp) CurrentInstanceCount() int {
	return app.currentInstanceCount
}

func (app *ScalableApp) SetCurrentInstanceCount(count int) {
	app.currentInstanceCount = count
}

func (app *ScalableApp) MaxMetricAge() int64 {
	return app.maxMetricAge
}

func (app *ScalableApp) AddContainerMetric(metric object.ContainerMetric) {
	app.containerMetrics.Push(metric)
}

func (app *ScalableApp) AddHttpMetric(metric object.HttpMetric) {
	app.httpMetrics.Push(metric)
}

func (app *ScalableApp) AddApplicationMetric(metric object.ApplicationMetric) {
	app.appMetrics.Push(metric)
}

func (app *ScalableApp) ResetContainerMetricsList() {
	app.containerMetrics.Reset()
}

func (app *ScalableApp) ResetHttpMetricList() {
	app.httpMetrics.Reset()
}

func (app *ScalableApp) GetCopyOfContainerMetricsList() []object.ContainerMetric {
	return app.containerMetrics.GetElements()
}

func (app *ScalableApp) GetCopyOfHttpMetricsList() []object.HttpMetric {
	return app.httpMetrics.GetElements()
}

func (app *ScalableApp) GetCopyOfApplicationMetricsList() []object.ApplicationMetric {
	return app.appMetrics.GetElements()
}

// ValueOfCpu collapses the last CPU sample of every instance, filtered by
// maxMetricAge, with the cpu wrapper's threshold policy. The second return
// value is false when no usable sample exists.
func (app *ScalableApp) ValueOfCpu() (int, bool) {
	samples := app.latestContainerSamples(func(m object.ContainerMetric) int64 { return int64(m.Cpu) })
	value, ok := applyPolicy(app.cpu.ThresholdPolicy(), samples)
	return int(value), ok
}

// ValueOfRam collapses the last RAM sample of every instance, filtered by
// maxMetricAge, with the ram wrapper's threshold policy.
func (app *ScalableApp) ValueOfRam() (int64, bool) {
	samples := app.latestContainerSamples(func(m object.ContainerMetric) int64 { return m.Ram })
	return applyPolicy(app.ram.ThresholdPolicy(), samples)
}

// ValueOfRequests collapses the request counts of the aggregated
// application metric window with the request wrapper's threshold policy.
func (app *ScalableApp) ValueOfRequests() (int, bool) {
	metrics := app.appMetrics.GetElements()
	samples := make([]int64, 0, len(metrics))
	for _, m := range metrics {
		samples = append(samples, int64(m.Requests))
	}
	value, ok := applyPolicy(app.request.ThresholdPolicy(), samples)
	return int(value), ok
}

// ValueOfLatency collapses the latencies of the aggregated application
// metric window with the latency wrapper's threshold policy.
func (app *ScalableApp) ValueOfLatency() (int, bool) {
	metrics := app.appMetrics.GetElements()
	samples := make([]int64, 0, len(metrics))
	for _, m := range metrics {
		if m.Latency >= 0 {
			samples = append(samples, int64(m.Latency))
		}
	}
	value, ok := applyPolicy(app.latency.ThresholdPolicy(), samples)
	return int(value), ok
}

// latestContainerSamples returns the selected value of the most recent
// container metric per instance, skipping samples that are too old or
// reported as missing.
func (app *ScalableApp) latestContainerSamples(value func(object.ContainerMetric) int64) []int64 {
	latest := make(map[int]object.ContainerMetric)
	for _, m := range app.containerMetrics.GetElements() {
		if m.TooOld(app.maxMetricAge) || value(m) < 0 {
			continue
		}
		prev, ok := latest[m.InstanceIndex]
		if !ok || m.Timestamp >= prev.Timestamp {
			latest[m.InstanceIndex] = m
		}
	}
	samples := make([]int64, 0, len(latest))
	for _, m := range latest {
		samples = append(samples, value(m))
	}
	return samples
}

// Blueprint returns a copy of the app's persisted configuration.
func (app *ScalableApp) Blueprint() *object.AppBlueprint {
	return &object.AppBlueprint{
		Binding:                   app.binding,
		CpuUpperLimit:             int(app.cpu.UpperLimit()),
		CpuLowerLimit:             int(app.cpu.LowerLimit()),
		CpuThresholdPolicy:        app.cpu.ThresholdPolicy(),
		RamUpperLimit:             app.ram.UpperLimit(),
		RamLowerLimit:             app.ram.LowerLimit(),
		RamThresholdPolicy:        app.ram.ThresholdPolicy(),
		RequestUpperLimit:         int(app.request.UpperLimit()),
		RequestLowerLimit:         int(app.request.LowerLimit()),
		RequestThresholdPolicy:    app.request.ThresholdPolicy(),
		QuotientScalingEnabled:    app.request.QuotientScalingEnabled(),
		LatencyUpperLimit:         int(app.latency.UpperLimit()),
		LatencyLowerLimit:         int(app.latency.LowerLimit()),
		LatencyThresholdPolicy:    app.latency.ThresholdPolicy(),
		MinQuotient:               app.minQuotient,
		MinInstances:              app.minInstances,
		MaxInstances:              app.maxInstances,
		CooldownTime:              app.cooldownTime,
		LearningTimeMultiplier:    app.learningTimeMultiplier,
		ScalingIntervalMultiplier: app.scalingIntervalMultiplier,
		CurrentIntervalState:      app.currentIntervalState,
		LastScalingTime:           app.lastScalingTime,
		LearningStartTime:         app.learningStartTime,
	}
}

// ResponseApplication returns the serialization object for the management
// API. The mutex must be held.
func (app *ScalableApp) ResponseApplication() *object.ResponseApplication {
	bp := app.Blueprint()
	return &object.ResponseApplication{
		Binding:                   bp.Binding,
		CpuUpperLimit:             bp.CpuUpperLimit,
		CpuLowerLimit:             bp.CpuLowerLimit,
		CpuThresholdPolicy:        bp.CpuThresholdPolicy,
		RamUpperLimit:             bp.RamUpperLimit,
		RamLowerLimit:             bp.RamLowerLimit,
		RamThresholdPolicy:        bp.RamThresholdPolicy,
		RequestUpperLimit:         bp.RequestUpperLimit,
		RequestLowerLimit:         bp.RequestLowerLimit,
		RequestThresholdPolicy:    bp.RequestThresholdPolicy,
		QuotientScalingEnabled:    bp.QuotientScalingEnabled,
		LatencyUpperLimit:         bp.LatencyUpperLimit,
		LatencyLowerLimit:         bp.LatencyLowerLimit,
		LatencyThresholdPolicy:    bp.LatencyThresholdPolicy,
		MinQuotient:               bp.MinQuotient,
		MinInstances:              bp.MinInstances,
		MaxInstances:              bp.MaxInstances,
		CooldownTime:              bp.CooldownTime,
		LearningTimeMultiplier:    bp.LearningTimeMultiplier,
		ScalingIntervalMultiplier: bp.ScalingIntervalMultiplier,
	}
}

// ResponseApplicationWithLock acquires the app, builds the serialization
// object and releases again. Do not call while holding the mutex.
func (app *ScalableApp) ResponseApplicationWithLock(ctx context.Context) (*object.ResponseApplication, error) {
	if err := app.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire %s: %w", app.binding.Id, err)
	}
	defer app.Release()
	return app.ResponseApplication(), nil
}
