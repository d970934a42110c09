package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
)

// ContractPayment is one billing obligation tied to a project period and a
// talent assignment. The client-side record and its partner-side mirror share
// the (project_period_id, talent_assignment_id) pair.
type ContractPayment struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ContractNumber string             `gorm:"column:contract_number;not null;unique"`
	Side           enums.ContractSide `gorm:"column:side;type:contract_side;not null;uniqueIndex:uq_contract_payments_link,priority:3"`

	ProjectPeriodID    uuid.UUID `gorm:"column:project_period_id;type:uuid;not null;uniqueIndex:uq_contract_payments_link,priority:1"`
	TalentAssignmentID uuid.UUID `gorm:"column:talent_assignment_id;type:uuid;not null;uniqueIndex:uq_contract_payments_link,priority:2"`
	PeriodStart        time.Time `gorm:"column:period_start;not null"`
	PeriodEnd          time.Time `gorm:"column:period_end;not null"`

	ContractStatus enums.ContractStatus `gorm:"column:contract_status;type:contract_status;not null;default:'Draft'"`
	PaymentStatus  enums.PaymentStatus  `gorm:"column:payment_status;type:payment_status;not null;default:'Pending'"`

	UnitPriceForeign  decimal.Decimal         `gorm:"column:unit_price_foreign;type:numeric(18,4);not null"`
	CurrencyCode      string                  `gorm:"column:currency_code;not null"`
	ExchangeRate      decimal.Decimal         `gorm:"column:exchange_rate;type:numeric(18,4);not null"`
	CalculationMethod enums.CalculationMethod `gorm:"column:calculation_method;type:calculation_method;not null"`
	PercentageValue   decimal.Decimal         `gorm:"column:percentage_value;type:numeric(9,4)"`
	FixedAmount       decimal.Decimal         `gorm:"column:fixed_amount;type:numeric(18,0)"`
	StandardHours     decimal.Decimal         `gorm:"column:standard_hours;type:numeric(6,2);not null;default:160"`

	PlannedAmountVND    decimal.Decimal `gorm:"column:planned_amount_vnd;type:numeric(18,0)"`
	ReportedHours       decimal.Decimal `gorm:"column:reported_hours;type:numeric(6,2)"`
	BillableHours       decimal.Decimal `gorm:"column:billable_hours;type:numeric(6,2)"`
	ManMonthCoefficient decimal.Decimal `gorm:"column:man_month_coefficient;type:numeric(9,4)"`
	ActualAmountVND     decimal.Decimal `gorm:"column:actual_amount_vnd;type:numeric(18,0)"`
	TotalPaidAmount     decimal.Decimal `gorm:"column:total_paid_amount;type:numeric(18,0);not null;default:0"`

	InvoiceNumber   *string    `gorm:"column:invoice_number;unique"`
	InvoiceDate     *time.Time `gorm:"column:invoice_date"`
	AcceptanceAt    *time.Time `gorm:"column:acceptance_at"`
	LastPaymentDate *time.Time `gorm:"column:last_payment_date"`

	Notes           *string `gorm:"column:notes"`
	RejectionReason *string `gorm:"column:rejection_reason"`
	IsFinished      bool    `gorm:"column:is_finished;not null;default:false"`

	// Version backs optimistic concurrency; every status write bumps it.
	Version int `gorm:"column:version;not null;default:1"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// RemainingBalance is the amount still collectible against the actual amount.
func (c *ContractPayment) RemainingBalance() decimal.Decimal {
	return c.ActualAmountVND.Sub(c.TotalPaidAmount)
}

// HasAcceptance reports whether an acceptance was recorded for the period.
func (c *ContractPayment) HasAcceptance() bool {
	return c.AcceptanceAt != nil
}
