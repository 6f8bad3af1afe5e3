// Package testutil provides reusable signal generators and assertions for
// demodulator tests.
package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance  = 1e-12
	RelativeTolerance = 1e-9
	NormalTolerance   = 1e-6
	FrequencyPercent  = 0.01
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return assert.Fail(t, fmt.Sprintf("s[%d] is %v", i, v), msgAndArgs...)
		}
	}
	return true
}

// AssertAllInRange verifies that every output lies in [minVal, maxVal].
// NaN is always out of range.
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if !(v >= minVal && v <= maxVal) {
			return assert.Fail(t, fmt.Sprintf("s[%d]=%v is outside [%v, %v]", i, v, minVal, maxVal), msgAndArgs...)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertBitIdentical verifies that two slices hold exactly the same IEEE 754
// bit patterns, so NaN compares equal to NaN and -0 differs from +0.
func AssertBitIdentical(t *testing.T, expected, actual []float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Float64bits(expected[i]) != math.Float64bits(actual[i]) {
			return assert.Fail(t, "outputs differ",
				"index %d: expected %v (%#x), got %v (%#x)",
				i, expected[i], math.Float64bits(expected[i]), actual[i], math.Float64bits(actual[i]))
		}
	}
	return true
}
