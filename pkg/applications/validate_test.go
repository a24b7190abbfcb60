package applications

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"
)

func TestValidateAcceptsValidBlueprint(t *testing.T) {
	assert.NilError(t, Validate(testBlueprint()))
}

func TestValidateNilBlueprint(t *testing.T) {
	assert.Assert(t, Validate(nil) != nil)
	bp := testBlueprint()
	bp.Binding = nil
	assert.Assert(t, Validate(bp) != nil)
}

func TestValidateSpecialCharacters(t *testing.T) {
	bp := testBlueprint()
	bp.Binding.ResourceId = "resource$1"
	err := Validate(bp)
	var specialCharacterError *SpecialCharacterError
	assert.Equal(t, true, errors.As(err, &specialCharacterError))

	bp.Binding.ResourceId = "resource-1_a"
	assert.NilError(t, Validate(bp))
}

func TestValidatePolicies(t *testing.T) {
	var policyError *PolicyError

	bp := testBlueprint()
	bp.CpuThresholdPolicy = ""
	assert.Equal(t, true, errors.As(Validate(bp), &policyError))

	bp = testBlueprint()
	bp.LatencyThresholdPolicy = "median"
	assert.Equal(t, true, errors.As(Validate(bp), &policyError))
}

func TestValidateLimits(t *testing.T) {
	var limitError *LimitError

	bp := testBlueprint()
	bp.CpuUpperLimit = bp.CpuLowerLimit
	assert.Equal(t, true, errors.As(Validate(bp), &limitError))

	bp = testBlueprint()
	bp.CpuUpperLimit = 101
	assert.Equal(t, true, errors.As(Validate(bp), &limitError))

	bp = testBlueprint()
	bp.CpuLowerLimit = -1
	assert.Equal(t, true, errors.As(Validate(bp), &limitError))

	bp = testBlueprint()
	bp.RamUpperLimit = 1 << 40
	assert.Equal(t, true, errors.As(Validate(bp), &limitError))

	bp = testBlueprint()
	bp.MaxInstances = 0
	assert.Equal(t, true, errors.As(Validate(bp), &limitError))

	bp = testBlueprint()
	bp.CooldownTime = CooldownMin - 1
	assert.Equal(t, true, errors.As(Validate(bp), &limitError))

	bp = testBlueprint()
	bp.ScalingIntervalMultiplier = 0
	assert.Equal(t, true, errors.As(Validate(bp), &limitError))
}

func TestValidateWorkingSet(t *testing.T) {
	var workingSetError *WorkingSetError

	bp := testBlueprint()
	bp.CurrentIntervalState = bp.ScalingIntervalMultiplier + 1
	assert.Equal(t, true, errors.As(Validate(bp), &workingSetError))

	bp = testBlueprint()
	bp.CurrentIntervalState = -1
	assert.Equal(t, true, errors.As(Validate(bp), &workingSetError))
}

func TestValidateTimes(t *testing.T) {
	var timeError *TimeError

	bp := testBlueprint()
	bp.Binding.CreationTime = 100
	bp.LastScalingTime = 50
	bp.LearningStartTime = 100
	assert.Equal(t, true, errors.As(Validate(bp), &timeError))

	bp = testBlueprint()
	bp.Binding.CreationTime = 100
	bp.LastScalingTime = 100
	bp.LearningStartTime = 50
	assert.Equal(t, true, errors.As(Validate(bp), &timeError))

	bp = testBlueprint()
	bp.Binding.CreationTime = -1
	bp.LastScalingTime = 0
	bp.LearningStartTime = 0
	assert.Equal(t, true, errors.As(Validate(bp), &timeError))
}

func TestValidateBinding(t *testing.T) {
	bp := testBlueprint()
	assert.NilError(t, ValidateBinding(bp.Binding))

	bp.Binding.ResourceId = "bad!id"
	assert.Assert(t, ValidateBinding(bp.Binding) != nil)
}
