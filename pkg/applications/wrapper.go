package applications

// Threshold policies for collapsing per-instance samples into a scalar.
const (
	PolicyMax  = "max"
	PolicyMin  = "min"
	PolicyMean = "mean"
)

// Component names one scalable dimension of an application.
type Component int

const (
	ComponentCpu Component = iota
	ComponentRam
	ComponentHttpRequests
	ComponentLatency
)

func (c Component) String() string {
	switch c {
	case ComponentCpu:
		return "cpu"
	case ComponentRam:
		return "ram"
	case ComponentHttpRequests:
		return "http_requests"
	case ComponentLatency:
		return "latency"
	}
	return "unknown"
}

// ComponentWrapper carries the scaling configuration of one dimension.
// Quotient and QuotientScalingEnabled are only meaningful on the request
// wrapper. All accessors assume the owning application's mutex is held.
type ComponentWrapper struct {
	component       Component
	upperLimit      int64
	lowerLimit      int64
	thresholdPolicy string

	quotient               int
	quotientScalingEnabled bool
}

func newComponentWrapper(component Component, upperLimit, lowerLimit int64, thresholdPolicy string) *ComponentWrapper {
	return &ComponentWrapper{
		component:       component,
		upperLimit:      upperLimit,
		lowerLimit:      lowerLimit,
		thresholdPolicy: thresholdPolicy,
	}
}

func (w *ComponentWrapper) Component() Component {
	return w.component
}

func (w *ComponentWrapper) UpperLimit() int64 {
	return w.upperLimit
}

func (w *ComponentWrapper) SetUpperLimit(limit int64) {
	w.upperLimit = limit
}

func (w *ComponentWrapper) LowerLimit() int64 {
	return w.lowerLimit
}

func (w *ComponentWrapper) SetLowerLimit(limit int64) {
	w.lowerLimit = limit
}

func (w *ComponentWrapper) ThresholdPolicy() string {
	return w.thresholdPolicy
}

func (w *ComponentWrapper) SetThresholdPolicy(policy string) {
	w.thresholdPolicy = policy
}

func (w *ComponentWrapper) Quotient() int {
	return w.quotient
}

func (w *ComponentWrapper) SetQuotient(quotient int) {
	w.quotient = quotient
}

func (w *ComponentWrapper) ResetQuotient() {
	w.quotient = 0
}

func (w *ComponentWrapper) QuotientScalingEnabled() bool {
	return w.quotientScalingEnabled
}

func (w *ComponentWrapper) SetQuotientScalingEnabled(enabled bool) {
	w.quotientScalingEnabled = enabled
}

// applyPolicy collapses samples into one value. The second return value
// is false when there are no samples to collapse.
func applyPolicy(policy string, samples []int64) (int64, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	switch policy {
	case PolicyMax:
		best := samples[0]
		for _, s := range samples[1:] {
			if s > best {
				best = s
			}
		}
		return best, true
	case PolicyMin:
		best := samples[0]
		for _, s := range samples[1:] {
			if s < best {
				best = s
			}
		}
		return best, true
	case PolicyMean:
		var sum int64
		for _, s := range samples {
			sum += s
		}
		return sum / int64(len(samples)), true
	}
	return 0, false
}
