package contracts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
)

// Each transition takes an explicit command struct validated up front, so the
// state machine never sees half-filled form state.

// SubmitCommand carries the pricing terms and the supporting contract file
// for Draft/NeedMoreInformation -> Submitted.
type SubmitCommand struct {
	ContractPaymentID     uuid.UUID
	UnitPriceForeign      decimal.Decimal
	CurrencyCode          string
	ExchangeRate          decimal.Decimal
	CalculationMethod     enums.CalculationMethod
	PercentageValue       decimal.Decimal
	FixedAmount           decimal.Decimal
	StandardHours         decimal.Decimal
	ContractFileReference string
	Notes                 string
}

func (c SubmitCommand) Validate() error {
	if c.ContractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	if !c.CalculationMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "calculation method is required")
	}
	if strings.TrimSpace(c.ContractFileReference) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "supporting contract file is required")
	}
	if strings.TrimSpace(c.CurrencyCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "currency code is required")
	}
	switch c.CalculationMethod {
	case enums.CalculationMethodPercentage:
		if c.UnitPriceForeign.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
		}
		if c.PercentageValue.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "percentage value must be positive")
		}
		if c.ExchangeRate.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "exchange rate must be positive")
		}
	case enums.CalculationMethodFixedAmount:
		if c.FixedAmount.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "fixed amount must be positive")
		}
	}
	return nil
}

// RequestInfoCommand moves Draft -> NeedMoreInformation. Metadata only, no
// amount recompute.
type RequestInfoCommand struct {
	ContractPaymentID uuid.UUID
	Notes             string
}

func (c RequestInfoCommand) Validate() error {
	if c.ContractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	if strings.TrimSpace(c.Notes) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notes describing the missing information are required")
	}
	return nil
}

// VerifyCommand moves Submitted -> Verified.
type VerifyCommand struct {
	ContractPaymentID uuid.UUID
}

func (c VerifyCommand) Validate() error {
	if c.ContractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	return nil
}

// ApproveCommand moves Verified -> Approved. Administrative.
type ApproveCommand struct {
	ContractPaymentID uuid.UUID
}

func (c ApproveCommand) Validate() error {
	if c.ContractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	return nil
}

// RejectCommand moves Submitted/Verified back to Draft and triggers the
// partner-side cascade.
type RejectCommand struct {
	ContractPaymentID uuid.UUID
	Reason            string
}

func (c RejectCommand) Validate() error {
	if c.ContractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	if strings.TrimSpace(c.Reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	return nil
}

// StartBillingCommand moves Pending -> Processing once both sides are
// Approved, recording the hours the amount computation runs on.
type StartBillingCommand struct {
	ContractPaymentID      uuid.UUID
	ReportedHours          decimal.Decimal
	BillableHours          decimal.Decimal
	TimesheetFileReference string
}

func (c StartBillingCommand) Validate() error {
	if c.ContractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	if c.BillableHours.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "billable hours must be positive")
	}
	if strings.TrimSpace(c.TimesheetFileReference) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "supporting timesheet file is required")
	}
	return nil
}

// AcceptanceCommand records the period acceptance while Processing.
type AcceptanceCommand struct {
	ContractPaymentID       uuid.UUID
	AcceptanceFileReference string
}

func (c AcceptanceCommand) Validate() error {
	if c.ContractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	if strings.TrimSpace(c.AcceptanceFileReference) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "acceptance file is required")
	}
	return nil
}

// InvoiceCommand moves Processing -> Invoiced; executed by the invoice
// recorder with retry semantics.
type InvoiceCommand struct {
	ContractPaymentID  uuid.UUID
	InvoiceNumber      string
	InvoiceDate        time.Time
	InvoiceFileName    string
	InvoiceContentType string
}

func (c InvoiceCommand) Validate() error {
	if c.ContractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	if strings.TrimSpace(c.InvoiceNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice number is required")
	}
	if c.InvoiceDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice date is required")
	}
	if strings.TrimSpace(c.InvoiceFileName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice file is required")
	}
	return nil
}

// PaymentCommand applies a received amount against the invoiced balance.
type PaymentCommand struct {
	ContractPaymentID uuid.UUID
	ReceivedAmount    decimal.Decimal
	PaymentDate       time.Time
}

func (c PaymentCommand) Validate() error {
	if c.ContractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	if c.ReceivedAmount.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "received amount must be positive")
	}
	if c.PaymentDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment date is required")
	}
	return nil
}
