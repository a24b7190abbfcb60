package applications

// Validation error kinds. Each kind maps to one family of invariants so
// callers can report the failure class without parsing messages.

// LimitError indicates a violated numeric invariant.
type LimitError struct {
	Message string
}

func (e *LimitError) Error() string {
	return e.Message
}

// PolicyError indicates an empty or unknown threshold policy.
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string {
	return e.Message
}

// SpecialCharacterError indicates a resource id with disallowed characters.
type SpecialCharacterError struct {
	Message string
}

func (e *SpecialCharacterError) Error() string {
	return e.Message
}

// TimeError indicates a violated timestamp invariant.
type TimeError struct {
	Message string
}

func (e *TimeError) Error() string {
	return e.Message
}

// WorkingSetError indicates an interval counter out of range.
type WorkingSetError struct {
	Message string
}

func (e *WorkingSetError) Error() string {
	return e.Message
}
