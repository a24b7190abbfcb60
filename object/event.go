package object

// Binding event actions published on the bus.
const (
	BindingCreating = "CREATING"
	BindingLoading  = "LOADING"
	BindingDeleting = "DELETING"
)

// BindingEvent notifies bus listeners about a binding lifecycle change.
type BindingEvent struct {
	EventId    string `json:"eventId"`
	Timestamp  int64  `json:"timestamp"`
	Action     string `json:"action"`
	BindingId  string `json:"bindingId"`
	ResourceId string `json:"resourceId"`
	ScalerId   string `json:"scalerId"`
}

// ScalingLog records one scaling decision together with the component
// metric values that drove it.
type ScalingLog struct {
	Timestamp    int64  `json:"timestamp"`
	BindingId    string `json:"bindingId"`
	ResourceId   string `json:"resourceId"`
	ResourceName string `json:"resourceName"`
	Reason       string `json:"reason"`
	OldInstances int    `json:"oldInstances"`
	NewInstances int    `json:"newInstances"`

	CurrentCpuLoad      int    `json:"currentCpuLoad"`
	CurrentRamLoad      int64  `json:"currentRamLoad"`
	CurrentRequestCount int    `json:"currentRequestCount"`
	CurrentLatency      int    `json:"currentLatency"`
	CurrentQuotient     int    `json:"currentQuotient"`
	Description         string `json:"description"`
}
