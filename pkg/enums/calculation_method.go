package enums

import "fmt"

// CalculationMethod selects how billable hours convert into an amount.
type CalculationMethod string

const (
	CalculationMethodFixedAmount CalculationMethod = "FixedAmount"
	CalculationMethodPercentage  CalculationMethod = "Percentage"
)

var validCalculationMethods = []CalculationMethod{
	CalculationMethodFixedAmount,
	CalculationMethodPercentage,
}

// String implements fmt.Stringer.
func (c CalculationMethod) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CalculationMethod.
func (c CalculationMethod) IsValid() bool {
	for _, candidate := range validCalculationMethods {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCalculationMethod converts raw input into a CalculationMethod.
func ParseCalculationMethod(value string) (CalculationMethod, error) {
	for _, candidate := range validCalculationMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid calculation method %q", value)
}
