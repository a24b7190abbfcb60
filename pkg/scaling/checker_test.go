package scaling

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"autoscaler/object"
	"autoscaler/pkg/applications"
)

func testBlueprint() *object.AppBlueprint {
	return &object.AppBlueprint{
		Binding: &object.Binding{
			Id:           "binding-1",
			ResourceId:   "resource-1",
			ScalerId:     "scaler-1",
			ServiceId:    "service-1",
			CreationTime: 0,
		},
		CpuUpperLimit:             70,
		CpuLowerLimit:             20,
		CpuThresholdPolicy:        applications.PolicyMax,
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
		LastScalingTime:           0,
		LearningStartTime:         0,
	}
}

// testApp builds an app with the given cpu samples, one per instance.
// RAM is reported as missing so only the cpu component is evaluable.
func testApp(bp *object.AppBlueprint, oldInstances int, cpuSamples []int) *applications.ScalableApp {
	app := applications.NewApp(bp, 100, 60000)
	app.SetCurrentInstanceCount(oldInstances)
	for i, cpu := range cpuSamples {
		app.AddContainerMetric(object.ContainerMetric{
			Timestamp:     object.NowMillis(),
			AppId:         bp.Binding.ResourceId,
			InstanceIndex: i,
			Cpu:           cpu,
			Ram:           object.MetricValueMissing,
		})
	}
	return app
}

func newTestChecker() *Checker {
	return NewChecker(1, time.Second)
}

func TestNoScaleWithinLimits(t *testing.T) {
	app := testApp(testBlueprint(), 3, []int{40, 50, 60})
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, false, action.NeedsScaling)
	assert.Equal(t, ReasonNone, action.Reason)
	assert.Equal(t, 3, action.NewInstances)
}

func TestUpscaleAboveUpperLimit(t *testing.T) {
	app := testApp(testBlueprint(), 3, []int{80, 82, 90})
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, true, action.NeedsScaling)
	assert.Equal(t, true, action.IsUpscale())
	assert.Equal(t, ReasonCpu, action.Reason)
	assert.Equal(t, 4, action.NewInstances)
}

func TestDownscaleBelowLowerLimit(t *testing.T) {
	bp := testBlueprint()
	bp.CpuLowerLimit = 10
	app := testApp(bp, 3, []int{5, 6, 7})
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, true, action.NeedsScaling)
	assert.Equal(t, true, action.IsDownscale())
	assert.Equal(t, ReasonCpu, action.Reason)
	assert.Equal(t, 2, action.NewInstances)
}

func TestUpscaleClampedToMaxInstances(t *testing.T) {
	app := testApp(testBlueprint(), 5, []int{80, 82, 90})
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, false, action.NeedsScaling)
	assert.Equal(t, ReasonNone, action.Reason)
	assert.Equal(t, 5, action.NewInstances)
}

func TestDownscaleClampedToMinInstances(t *testing.T) {
	bp := testBlueprint()
	bp.CpuLowerLimit = 10
	app := testApp(bp, 1, []int{5, 6, 7})
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, false, action.NeedsScaling)
	assert.Equal(t, ReasonNone, action.Reason)
	assert.Equal(t, 1, action.NewInstances)
}

func TestNoScaleWithinCooldown(t *testing.T) {
	bp := testBlueprint()
	bp.LastScalingTime = object.NowMillis() - 1000
	app := testApp(bp, 3, []int{80, 82, 90})
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, false, action.NeedsScaling)
	assert.Equal(t, ReasonNone, action.Reason)
}

func TestNoScaleWithinLearningPhase(t *testing.T) {
	bp := testBlueprint()
	bp.LearningStartTime = object.NowMillis()
	bp.LearningTimeMultiplier = 10
	app := testApp(bp, 3, []int{80, 82, 90})
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, false, action.NeedsScaling)
	assert.Equal(t, ReasonNone, action.Reason)
}

func TestQuotientGateSuppressesUpscale(t *testing.T) {
	bp := testBlueprint()
	bp.QuotientScalingEnabled = true
	bp.MinQuotient = 10
	app := testApp(bp, 3, []int{80, 82, 90})
	app.Request().SetQuotient(5)
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, false, action.NeedsScaling)
	assert.Equal(t, ReasonNone, action.Reason)
}

func TestQuotientGateScalesDownToMinInstances(t *testing.T) {
	bp := testBlueprint()
	bp.QuotientScalingEnabled = true
	bp.MinQuotient = 10
	bp.CpuLowerLimit = 10
	app := testApp(bp, 4, []int{5, 6, 7})
	app.Request().SetQuotient(5)
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, true, action.NeedsScaling)
	assert.Equal(t, ReasonQuotient, action.Reason)
	assert.Equal(t, 1, action.NewInstances)
}

func TestQuotientAboveMinimumDoesNotInterfere(t *testing.T) {
	bp := testBlueprint()
	bp.QuotientScalingEnabled = true
	bp.MinQuotient = 10
	app := testApp(bp, 3, []int{80, 82, 90})
	app.Request().SetQuotient(50)
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, true, action.IsUpscale())
	assert.Equal(t, ReasonCpu, action.Reason)
}

func TestRamBlocksDownscaleWhenWithinLimits(t *testing.T) {
	bp := testBlueprint()
	bp.CpuLowerLimit = 10
	bp.RamLowerLimit = 100
	app := applications.NewApp(bp, 100, 60000)
	app.SetCurrentInstanceCount(3)
	// cpu below its lower limit, ram well within its limits
	app.AddContainerMetric(object.ContainerMetric{
		Timestamp: object.NowMillis(), InstanceIndex: 0, Cpu: 5, Ram: 500000,
	})
	action := newTestChecker().ChooseScalingAction(app)
	assert.Equal(t, false, action.NeedsScaling)
}

func TestPerComponentCpuActions(t *testing.T) {
	checker := newTestChecker()

	app := testApp(testBlueprint(), 3, []int{40, 50, 60})
	app.Cpu().SetThresholdPolicy(applications.PolicyMax)
	app.Cpu().SetUpperLimit(61)
	app.Cpu().SetLowerLimit(59)
	action := checker.ChooseScalingActionForCpu(app)
	assert.Equal(t, false, action.NeedsScaling)

	app.Cpu().SetUpperLimit(59)
	app.Cpu().SetLowerLimit(0)
	action = checker.ChooseScalingActionForCpu(app)
	assert.Equal(t, true, action.IsUpscale())
	assert.Equal(t, ReasonCpu, action.Reason)

	app.Cpu().SetUpperLimit(100)
	app.Cpu().SetLowerLimit(61)
	action = checker.ChooseScalingActionForCpu(app)
	assert.Equal(t, true, action.IsDownscale())
	assert.Equal(t, ReasonCpu, action.Reason)
}

func TestThresholdMonotonicity(t *testing.T) {
	samples := []int{80, 82, 90}
	upscales := func(upper int) bool {
		bp := testBlueprint()
		bp.CpuUpperLimit = upper
		app := testApp(bp, 3, samples)
		return newTestChecker().ChooseScalingAction(app).IsUpscale()
	}
	// raising the upper limit can only turn upscales into no-ops
	assert.Equal(t, true, upscales(70))
	assert.Equal(t, true, upscales(85))
	assert.Equal(t, false, upscales(95))
}
