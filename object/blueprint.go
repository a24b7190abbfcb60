package object

// AppBlueprint is the persisted configuration of a scalable application.
// A valid blueprint is sufficient to reconstruct the application after a
// restart; it is the value stored under the binding id in etcd.
type AppBlueprint struct {
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

	CurrentIntervalState int   `json:"currentIntervalState"`
	LastScalingTime      int64 `json:"lastScalingTime"`
	LearningStartTime    int64 `json:"learningStartTime"`
}
