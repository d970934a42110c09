package enums

import "testing"

// The store exchanges these literals case-sensitively; a drift here is a data
// corruption bug, not a style choice.
func TestWireValuesAreExact(t *testing.T) {
	contractWire := map[ContractStatus]string{
		ContractStatusDraft:               "Draft",
		ContractStatusNeedMoreInformation: "NeedMoreInformation",
		ContractStatusSubmitted:           "Submitted",
		ContractStatusVerified:            "Verified",
		ContractStatusApproved:            "Approved",
		ContractStatusRejected:            "Rejected",
	}
	for status, wire := range contractWire {
		if status.String() != wire {
			t.Fatalf("contract status %v drifted from wire value %q", status, wire)
		}
	}

	paymentWire := map[PaymentStatus]string{
		PaymentStatusPending:       "Pending",
		PaymentStatusProcessing:    "Processing",
		PaymentStatusInvoiced:      "Invoiced",
		PaymentStatusPartiallyPaid: "PartiallyPaid",
		PaymentStatusPaid:          "Paid",
	}
	for status, wire := range paymentWire {
		if status.String() != wire {
			t.Fatalf("payment status %v drifted from wire value %q", status, wire)
		}
	}

	if CalculationMethodFixedAmount.String() != "FixedAmount" || CalculationMethodPercentage.String() != "Percentage" {
		t.Fatal("calculation method wire values drifted")
	}
}

func TestParseRejectsCaseDrift(t *testing.T) {
	if _, err := ParseContractStatus("draft"); err == nil {
		t.Fatal("lowercase must not parse")
	}
	if _, err := ParsePaymentStatus("PARTIALLYPAID"); err == nil {
		t.Fatal("uppercase must not parse")
	}
	if _, err := ParseCalculationMethod("fixed_amount"); err == nil {
		t.Fatal("snake case must not parse")
	}
}

func TestContractSideOpposite(t *testing.T) {
	if ContractSideClient.Opposite() != ContractSidePartner {
		t.Fatal("client opposite should be partner")
	}
	if ContractSidePartner.Opposite() != ContractSideClient {
		t.Fatal("partner opposite should be client")
	}
}

func TestDocumentKindValidation(t *testing.T) {
	for _, kind := range []DocumentKind{DocumentKindContract, DocumentKindTimesheet, DocumentKindAcceptance, DocumentKindInvoice} {
		if !kind.IsValid() {
			t.Fatalf("kind %v should be valid", kind)
		}
	}
	if DocumentKind("receipt").IsValid() {
		t.Fatal("unknown kind should be invalid")
	}
}
