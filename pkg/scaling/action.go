package scaling

import (
	"autoscaler/object"
	"autoscaler/pkg/applications"
)

// Reasons of a scaling action.
const (
	ReasonCpu      = "cpu"
	ReasonRam      = "ram"
	ReasonHttp     = "http_requests"
	ReasonLatency  = "latency"
	ReasonQuotient = "quotient"
	ReasonNone     = "none"
)

// ScalingAction is the outcome of one evaluation of one application.
type ScalingAction struct {
	App          *applications.ScalableApp
	OldInstances int
	NewInstances int
	Reason       string
	NeedsScaling bool
	Description  string
}

func (a *ScalingAction) IsUpscale() bool {
	return a.NeedsScaling && a.NewInstances > a.OldInstances
}

func (a *ScalingAction) IsDownscale() bool {
	return a.NeedsScaling && a.NewInstances < a.OldInstances
}

// ScalingLog builds the bus record for an executed action together with
// the component metric values that drove it. The app mutex must be held.
func (a *ScalingAction) ScalingLog(timestamp int64) *object.ScalingLog {
	cpu, ok := a.App.ValueOfCpu()
	if !ok {
		cpu = object.MetricValueMissing
	}
	ram, ok := a.App.ValueOfRam()
	if !ok {
		ram = object.MetricValueMissing
	}
	requests, ok := a.App.ValueOfRequests()
	if !ok {
		requests = object.MetricValueMissing
	}
	latency, ok := a.App.ValueOfLatency()
	if !ok {
		latency = object.MetricValueMissing
	}
	binding := a.App.Binding()
	return &object.ScalingLog{
		Timestamp:           timestamp,
		BindingId:           binding.Id,
		ResourceId:          binding.ResourceId,
		ResourceName:        binding.ResourceName,
		Reason:              a.Reason,
		OldInstances:        a.OldInstances,
		NewInstances:        a.NewInstances,
		CurrentCpuLoad:      cpu,
		CurrentRamLoad:      ram,
		CurrentRequestCount: requests,
		CurrentLatency:      latency,
		CurrentQuotient:     a.App.Request().Quotient(),
		Description:         a.Description,
	}
}
