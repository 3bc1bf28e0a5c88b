package standards

import "math"

// DefaultTolerance is the slack ValidateMeasurement allows around a target.
const DefaultTolerance = 0.01

// ValidateMeasurement reports whether value is within tolerance of target.
func ValidateMeasurement(value, target, tolerance float64) bool {
	return math.Abs(value-target) <= tolerance
}

// ValidateMinimum reports whether value meets the lower limit.
func ValidateMinimum(value, min float64) bool {
	return value >= min
}

// ValidateMaximum reports whether value does not exceed the upper limit.
func ValidateMaximum(value, max float64) bool {
	return value <= max
}

// ValidatePercentage reports whether value lies in [min, max]. A max of zero
// means 100.
func ValidatePercentage(value, min, max float64) bool {
	if max == 0 {
		max = 100
	}
	return value >= min && value <= max
}
