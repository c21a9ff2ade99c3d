package omnibus

import "math"

// Collaborator is the contract of the functions on the other side of the
// boundary that the delegated operations call into.
type Collaborator interface {
	// DoubleInput returns its input doubled.
	DoubleInput(input int32) int32
	// IncrementArray adds one to every element in place.
	IncrementArray(array []int32)
}

// ReferenceCollaborator mirrors the C collaborator library, including its
// overflow guards.
type ReferenceCollaborator struct{}

// DoubleInput returns 2*input, or 0 when input is above MaxInt32/2.
func (ReferenceCollaborator) DoubleInput(input int32) int32 {
	if input > math.MaxInt32/2 {
		return 0
	}
	return 2 * input
}

// IncrementArray increments in place and stops at the first element that is
// at least MaxInt32-1, leaving it and everything after it untouched.
func (ReferenceCollaborator) IncrementArray(array []int32) {
	for i := range array {
		if array[i] >= math.MaxInt32-1 {
			return
		}
		array[i]++
	}
}
