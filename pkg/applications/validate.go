package applications

import (
	"fmt"
	"math"
	"regexp"

	mapset "github.com/deckarep/golang-set/v2"

	"autoscaler/object"
)

var (
	validPolicies    = mapset.NewSet(PolicyMax, PolicyMin, PolicyMean)
	resourceIdFormat = regexp.MustCompile(`^[\w-]*$`)
)

// Validate checks a blueprint against every invariant a ScalableApp
// relies on. A nil error means NewApp can be called on the blueprint.
func Validate(bp *object.AppBlueprint) error {
	if bp == nil || bp.Binding == nil {
		return &LimitError{Message: "Blueprint or binding is nil."}
	}
	if err := validateBinding(bp.Binding); err != nil {
		return err
	}
	if err := validatePolicies(bp); err != nil {
		return err
	}
	if err := validateLimits(bp); err != nil {
		return err
	}
	return validateWorkingSet(bp)
}

// ValidateBinding checks the binding information of an incoming bind
// request before a blueprint exists.
func ValidateBinding(binding *object.Binding) error {
	if binding == nil {
		return &LimitError{Message: "Binding is nil."}
	}
	if binding.CreationTime < 0 {
		return &TimeError{Message: "CreationTime is smaller than 0."}
	}
	return validateBinding(binding)
}

func validateBinding(binding *object.Binding) error {
	if !resourceIdFormat.MatchString(binding.ResourceId) {
		return &SpecialCharacterError{Message: "ResourceId contains special characters."}
	}
	return nil
}

func validatePolicies(bp *object.AppBlueprint) error {
	named := []struct {
		name   string
		policy string
	}{
		{"CpuThresholdPolicy", bp.CpuThresholdPolicy},
		{"RamThresholdPolicy", bp.RamThresholdPolicy},
		{"RequestThresholdPolicy", bp.RequestThresholdPolicy},
		{"LatencyThresholdPolicy", bp.LatencyThresholdPolicy},
	}
	for _, p := range named {
		if p.policy == "" {
			return &PolicyError{Message: p.name + " is empty."}
		}
		if !validPolicies.Contains(p.policy) {
			return &PolicyError{Message: p.name + " is invalid."}
		}
	}
	return nil
}

func validateLimits(bp *object.AppBlueprint) error {
	if bp.CpuUpperLimit <= bp.CpuLowerLimit {
		return &LimitError{Message: "CpuUpperLimit is smaller than or equals CpuLowerLimit."}
	}
	if bp.CpuUpperLimit > 100 {
		return &LimitError{Message: "CpuUpperLimit is bigger than 100."}
	}
	if bp.CpuLowerLimit < 0 {
		return &LimitError{Message: "CpuLowerLimit is smaller than 0."}
	}
	if bp.RamUpperLimit <= bp.RamLowerLimit {
		return &LimitError{Message: "RamUpperLimit is smaller than or equals RamLowerLimit."}
	}
	if bp.RamUpperLimit > math.MaxInt32 {
		return &LimitError{Message: fmt.Sprintf("RamUpperLimit is bigger than %d.", math.MaxInt32)}
	}
	if bp.RamLowerLimit < 0 {
		return &LimitError{Message: "RamLowerLimit is smaller than 0."}
	}
	if bp.RequestUpperLimit <= bp.RequestLowerLimit {
		return &LimitError{Message: "RequestUpperLimit is smaller than or equals RequestLowerLimit."}
	}
	if bp.RequestLowerLimit < 0 {
		return &LimitError{Message: "RequestLowerLimit is smaller than 0."}
	}
	if bp.LatencyUpperLimit <= bp.LatencyLowerLimit {
		return &LimitError{Message: "LatencyUpperLimit is smaller than or equals LatencyLowerLimit."}
	}
	if bp.LatencyUpperLimit > math.MaxInt32 {
		return &LimitError{Message: fmt.Sprintf("LatencyUpperLimit is bigger than %d.", math.MaxInt32)}
	}
	if bp.LatencyLowerLimit < 0 {
		return &LimitError{Message: "LatencyLowerLimit is smaller than 0."}
	}
	if bp.MinQuotient < 0 {
		return &LimitError{Message: "MinQuotient is smaller than 0."}
	}
	if bp.MinInstances < 0 {
		return &LimitError{Message: "MinInstances is smaller than 0."}
	}
	if bp.MaxInstances < bp.MinInstances {
		return &LimitError{Message: "MaxInstances is smaller than MinInstances."}
	}
	if bp.CooldownTime < CooldownMin {
		return &LimitError{Message: fmt.Sprintf("CooldownTime is smaller than %d.", CooldownMin)}
	}
	if bp.LearningTimeMultiplier < LearningMultiplierMin {
		return &LimitError{Message: fmt.Sprintf("LearningTimeMultiplier is smaller than %d.", LearningMultiplierMin)}
	}
	if bp.ScalingIntervalMultiplier < ScalingIntervalMultiplierMin {
		return &LimitError{Message: fmt.Sprintf("ScalingIntervalMultiplier is smaller than %d.", ScalingIntervalMultiplierMin)}
	}
	return nil
}

func validateWorkingSet(bp *object.AppBlueprint) error {
	if bp.CurrentIntervalState < 0 || bp.CurrentIntervalState > bp.ScalingIntervalMultiplier {
		return &WorkingSetError{Message: "CurrentIntervalState is smaller than 0 or bigger than ScalingIntervalMultiplier."}
	}
	creationTime := bp.Binding.CreationTime
	if creationTime < 0 {
		return &TimeError{Message: "CreationTime is smaller than 0."}
	}
	if bp.LastScalingTime < 0 || bp.LastScalingTime < creationTime {
		return &TimeError{Message: "LastScalingTime is smaller than 0 or smaller than CreationTime."}
	}
	if bp.LearningStartTime < 0 || bp.LearningStartTime < creationTime {
		return &TimeError{Message: "LearningStartTime is smaller than 0 or smaller than CreationTime."}
	}
	return nil
}
