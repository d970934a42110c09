package enums

import "fmt"

// ContractSide distinguishes the client billing record from its mirrored
// partner sourcing record. The two sides are linked 1:1 by the
// (project period, talent assignment) pair.
type ContractSide string

const (
	ContractSideClient  ContractSide = "client"
	ContractSidePartner ContractSide = "partner"
)

var validContractSides = []ContractSide{
	ContractSideClient,
	ContractSidePartner,
}

// Opposite returns the linked side.
func (c ContractSide) Opposite() ContractSide {
	if c == ContractSideClient {
		return ContractSidePartner
	}
	return ContractSideClient
}

// String implements fmt.Stringer.
func (c ContractSide) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContractSide.
func (c ContractSide) IsValid() bool {
	for _, candidate := range validContractSides {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContractSide converts raw input into a ContractSide.
func ParseContractSide(value string) (ContractSide, error) {
	for _, candidate := range validContractSides {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract side %q", value)
}
