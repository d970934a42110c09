package enums

import "fmt"

// ContractStatus tracks the approval lifecycle of a contract payment. Values are
// the literal strings exchanged with the backing store and must stay case-exact.
type ContractStatus string

const (
	ContractStatusDraft               ContractStatus = "Draft"
	ContractStatusNeedMoreInformation ContractStatus = "NeedMoreInformation"
	ContractStatusSubmitted           ContractStatus = "Submitted"
	ContractStatusVerified            ContractStatus = "Verified"
	ContractStatusApproved            ContractStatus = "Approved"
	ContractStatusRejected            ContractStatus = "Rejected"
)

var validContractStatuses = []ContractStatus{
	ContractStatusDraft,
	ContractStatusNeedMoreInformation,
	ContractStatusSubmitted,
	ContractStatusVerified,
	ContractStatusApproved,
	ContractStatusRejected,
}

// String implements fmt.Stringer.
func (c ContractStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContractStatus.
func (c ContractStatus) IsValid() bool {
	for _, candidate := range validContractStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContractStatus converts raw input into a ContractStatus.
func ParseContractStatus(value string) (ContractStatus, error) {
	for _, candidate := range validContractStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract status %q", value)
}
