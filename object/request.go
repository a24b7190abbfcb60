package object

// ScalingRequest is the body of a scaling order sent to the scaling engine.
type ScalingRequest struct {
	NewInstances int               `json:"newInstances"`
	Context      map[string]string `json:"context"`
}

// ApplicationNameRequest asks the scaling engine to resolve the name of a
// resource. The engine answers with the same structure, Name filled in.
type ApplicationNameRequest struct {
	ResourceId string            `json:"resourceId"`
	Name       string            `json:"name"`
	Context    map[string]string `json:"context"`
}

// ErrorMessage is the body of an error response of the management API.
type ErrorMessage struct {
	Error string `json:"error"`
}

// ResponseApplication is the serialization of an application's
// configuration returned on a successful bind.
type ResponseApplication struct {
	Binding *Binding `json:"binding"`

	CpuUpperLimit      int    `json:"cpuUpperLimit"`
	CpuLowerLimit      int    `json:"cpuLowerLimit"`
	CpuThresholdPolicy string `json:"cpuThresholdPolicy"`

	RamUpperLimit      int64  `json:"ramUpperLimit"`
	RamLowerLimit      int64  `json:"ramLowerLimit"`
	RamThresholdPolicy string `json:"ramThresholdPolicy"`

	RequestUpperLimit      int    `json:"requestUpperLimit"`
	RequestLowerLimit      int    `json:"requestLowerLimit"`
	RequestThresholdPolicy string `json:"requestThresholdPolicy"`
	QuotientScalingEnabled bool   `json:"quotientScalingEnabled"`

	LatencyUpperLimit      int    `json:"latencyUpperLimit"`
	LatencyLowerLimit      int    `json:"latencyLowerLimit"`
	LatencyThresholdPolicy string `json:"latencyThresholdPolicy"`

	MinQuotient  int `json:"minQuotient"`
	MinInstances int `json:"minInstances"`
	MaxInstances int `json:"maxInstances"`

	CooldownTime              int64 `json:"cooldownTime"`
	LearningTimeMultiplier    int   `json:"learningTimeMultiplier"`
	ScalingIntervalMultiplier int   `json:"scalingIntervalMultiplier"`
}
