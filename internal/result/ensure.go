package result

import (
	"cmp"
	"strings"
)

// NotBlank fails with a Validation error when value is empty or whitespace.
func NotBlank(value, message string) Status {
	return SuccessIf(strings.TrimSpace(value) != "", message, Validation)
}

// GreaterThan fails with a Validation error unless value > limit.
func GreaterThan[T cmp.Ordered](value, limit T, message string) Status {
	return SuccessIf(value > limit, message, Validation)
}

// InRange fails with a Validation error unless lo <= value <= hi.
func InRange[T cmp.Ordered](value, lo, hi T, message string) Status {
	return SuccessIf(value >= lo && value <= hi, message, Validation)
}

// Combine returns the first failure among checks, or Success.
func Combine(checks ...Status) Status {
	for _, c := range checks {
		if c.IsFailure() {
			return c
		}
	}
	return Success()
}
