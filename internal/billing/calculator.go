package billing

import (
	"github.com/shopspring/decimal"

	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
)

// Rounding happens immediately after every multiplication and division so the
// same inputs always reproduce the same breakdown bit for bit. Foreign
// currency intermediates keep 4 places; VND has no subunit.
const (
	foreignScale     = 4
	vndScale         = 0
	coefficientScale = 4
)

var (
	defaultStandardHours = decimal.NewFromInt(160)
	oneHundred           = decimal.NewFromInt(100)
)

// overtimeTiers partitions billable hours into ordered bands. Only the last
// band is unbounded; the first covers the standard 160h month, subsequent
// bands are 20h wide.
type overtimeTier struct {
	width      decimal.Decimal // zero means unbounded
	multiplier decimal.Decimal
}

var overtimeTiers = []overtimeTier{
	{width: decimal.NewFromInt(160), multiplier: decimal.RequireFromString("1.00")},
	{width: decimal.NewFromInt(20), multiplier: decimal.RequireFromString("1.00")},
	{width: decimal.NewFromInt(20), multiplier: decimal.RequireFromString("1.25")},
	{width: decimal.NewFromInt(20), multiplier: decimal.RequireFromString("1.50")},
	{width: decimal.NewFromInt(20), multiplier: decimal.RequireFromString("1.50")},
	{width: decimal.NewFromInt(20), multiplier: decimal.RequireFromString("1.75")},
	{width: decimal.Decimal{}, multiplier: decimal.RequireFromString("2.00")},
}

// Input carries the pricing terms of one contract payment.
type Input struct {
	Method           enums.CalculationMethod
	BillableHours    decimal.Decimal
	UnitPrice        decimal.Decimal
	ExchangeRate     decimal.Decimal
	StandardHours    decimal.Decimal
	PercentageValue  decimal.Decimal
	FixedAmount      decimal.Decimal
	PlannedAmountVND decimal.Decimal
}

// BandAmount is the contribution of one consumed tier.
type BandAmount struct {
	Band          int
	Hours         decimal.Decimal
	Multiplier    decimal.Decimal
	AmountForeign decimal.Decimal
	AmountVND     decimal.Decimal
}

// Breakdown is the monetary result of one computation.
type Breakdown struct {
	Bands               []BandAmount
	TotalForeign        decimal.Decimal
	ActualAmountVND     decimal.Decimal
	ManMonthCoefficient decimal.Decimal
}

// PlanAmount computes the planned VND amount at submission time, before any
// hours exist: percentage of the unit price, or the fixed amount directly.
func PlanAmount(in Input) (decimal.Decimal, error) {
	switch in.Method {
	case enums.CalculationMethodFixedAmount:
		if in.FixedAmount.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "fixed amount must be positive")
		}
		return in.FixedAmount.Round(vndScale), nil
	case enums.CalculationMethodPercentage:
		if in.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
		}
		if in.PercentageValue.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "percentage value must be positive")
		}
		if in.ExchangeRate.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "exchange rate must be positive")
		}
		fraction := in.PercentageValue.Div(oneHundred).Round(foreignScale)
		foreign := in.UnitPrice.Mul(fraction).Round(foreignScale)
		return foreign.Mul(in.ExchangeRate).Round(vndScale), nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unknown calculation method")
	}
}

// Compute converts billable hours into the actual amount. The result is a
// deterministic function of its inputs; callers persist it verbatim and never
// hand-edit the stored amount.
func Compute(in Input) (*Breakdown, error) {
	if in.BillableHours.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "billable hours must be positive")
	}

	standardHours := in.StandardHours
	if standardHours.LessThanOrEqual(decimal.Zero) {
		standardHours = defaultStandardHours
	}

	switch in.Method {
	case enums.CalculationMethodFixedAmount:
		return computeFixed(in, standardHours)
	case enums.CalculationMethodPercentage:
		return computeTiered(in, standardHours)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown calculation method")
	}
}

// Fixed-price engagements bill the lump sum regardless of effort; the
// coefficient is reported for observability only.
func computeFixed(in Input, standardHours decimal.Decimal) (*Breakdown, error) {
	if in.PlannedAmountVND.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "planned amount is required for fixed-amount contracts")
	}
	coefficient := in.BillableHours.Div(standardHours).Round(coefficientScale)
	return &Breakdown{
		ActualAmountVND:     in.PlannedAmountVND.Round(vndScale),
		ManMonthCoefficient: coefficient,
	}, nil
}

func computeTiered(in Input, standardHours decimal.Decimal) (*Breakdown, error) {
	if in.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}
	if in.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange rate must be positive")
	}

	baseRate := in.UnitPrice.Div(standardHours).Round(foreignScale)

	breakdown := &Breakdown{}
	remaining := in.BillableHours
	totalForeign := decimal.Zero
	totalVND := decimal.Zero

	for i, tier := range overtimeTiers {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		hours := remaining
		if !tier.width.IsZero() && hours.GreaterThan(tier.width) {
			hours = tier.width
		}
		remaining = remaining.Sub(hours)

		amountForeign := hours.Mul(baseRate).Round(foreignScale)
		amountForeign = amountForeign.Mul(tier.multiplier).Round(foreignScale)
		amountVND := amountForeign.Mul(in.ExchangeRate).Round(vndScale)

		breakdown.Bands = append(breakdown.Bands, BandAmount{
			Band:          i + 1,
			Hours:         hours,
			Multiplier:    tier.multiplier,
			AmountForeign: amountForeign,
			AmountVND:     amountVND,
		})
		totalForeign = totalForeign.Add(amountForeign)
		totalVND = totalVND.Add(amountVND)
	}

	breakdown.TotalForeign = totalForeign
	breakdown.ActualAmountVND = totalVND
	breakdown.ManMonthCoefficient = totalForeign.Div(in.UnitPrice).Round(coefficientScale)
	return breakdown, nil
}
