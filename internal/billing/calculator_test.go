package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
)

func percentageInput(hours int64) Input {
	return Input{
		Method:        enums.CalculationMethodPercentage,
		BillableHours: decimal.NewFromInt(hours),
		UnitPrice:     decimal.NewFromInt(3200),
		ExchangeRate:  decimal.NewFromInt(25000),
		StandardHours: decimal.NewFromInt(160),
	}
}

func TestComputeTieredScenario(t *testing.T) {
	// 200h at unit price 3200, standard 160h, rate 25000 VND.
	got, err := Compute(percentageInput(200))
	require.NoError(t, err)
	require.Len(t, got.Bands, 3)

	assert.True(t, got.Bands[0].Hours.Equal(decimal.NewFromInt(160)))
	assert.True(t, got.Bands[0].AmountForeign.Equal(decimal.NewFromInt(3200)))
	assert.True(t, got.Bands[1].Hours.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.Bands[1].AmountForeign.Equal(decimal.NewFromInt(400)))
	assert.True(t, got.Bands[2].Hours.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.Bands[2].AmountForeign.Equal(decimal.NewFromInt(500)))

	assert.True(t, got.TotalForeign.Equal(decimal.NewFromInt(4100)), "total foreign %s", got.TotalForeign)
	assert.True(t, got.ActualAmountVND.Equal(decimal.NewFromInt(102_500_000)), "actual VND %s", got.ActualAmountVND)
}

func TestComputeTieredDeepOvertime(t *testing.T) {
	// 270h walks every band: 160+20+20+20+20+20+10.
	got, err := Compute(percentageInput(270))
	require.NoError(t, err)
	require.Len(t, got.Bands, 7)

	// base rate 20/h: 3200 + 400 + 500 + 600 + 600 + 700 + 10*20*2.
	assert.True(t, got.Bands[6].Hours.Equal(decimal.NewFromInt(10)))
	assert.True(t, got.Bands[6].AmountForeign.Equal(decimal.NewFromInt(400)))
	assert.True(t, got.TotalForeign.Equal(decimal.NewFromInt(6400)))
	assert.True(t, got.ActualAmountVND.Equal(decimal.NewFromInt(160_000_000)))
	assert.True(t, got.ManMonthCoefficient.Equal(decimal.NewFromInt(2)))
}

// Bands must be consumed in ascending order with no gaps or overlaps, and the
// consumed hours must always add back up to the input.
func TestTierPartitionProperty(t *testing.T) {
	widths := []int64{160, 20, 20, 20, 20, 20}

	for hours := int64(1); hours <= 400; hours++ {
		got, err := Compute(percentageInput(hours))
		require.NoError(t, err, "hours=%d", hours)

		sum := decimal.Zero
		for i, band := range got.Bands {
			require.Equal(t, i+1, band.Band, "hours=%d band order", hours)
			require.True(t, band.Hours.GreaterThan(decimal.Zero), "hours=%d empty band emitted", hours)
			if i < len(widths) {
				require.True(t, band.Hours.LessThanOrEqual(decimal.NewFromInt(widths[i])),
					"hours=%d band %d exceeds width", hours, i+1)
			}
			// A later band may only be reached once every earlier one is full.
			if i > 0 && i-1 < len(widths) {
				require.True(t, got.Bands[i-1].Hours.Equal(decimal.NewFromInt(widths[i-1])),
					"hours=%d band %d consumed before band %d filled", hours, i+1, i)
			}
			sum = sum.Add(band.Hours)
		}
		require.True(t, sum.Equal(decimal.NewFromInt(hours)), "hours=%d partition sum %s", hours, sum)
	}
}

func TestComputeFixedAmountIgnoresHours(t *testing.T) {
	planned := decimal.NewFromInt(50_000_000)
	for _, hours := range []int64{140, 220} {
		got, err := Compute(Input{
			Method:           enums.CalculationMethodFixedAmount,
			BillableHours:    decimal.NewFromInt(hours),
			StandardHours:    decimal.NewFromInt(160),
			PlannedAmountVND: planned,
		})
		require.NoError(t, err)
		assert.True(t, got.ActualAmountVND.Equal(planned), "hours=%d actual %s", hours, got.ActualAmountVND)
		assert.Empty(t, got.Bands)
	}
}

func TestComputeFixedAmountCoefficientIsObservational(t *testing.T) {
	got, err := Compute(Input{
		Method:           enums.CalculationMethodFixedAmount,
		BillableHours:    decimal.NewFromInt(120),
		StandardHours:    decimal.NewFromInt(160),
		PlannedAmountVND: decimal.NewFromInt(50_000_000),
	})
	require.NoError(t, err)
	assert.True(t, got.ManMonthCoefficient.Equal(decimal.RequireFromString("0.75")))
}

func TestComputeRejectsNonPositiveHours(t *testing.T) {
	for _, hours := range []int64{0, -5} {
		got, err := Compute(percentageInput(hours))
		require.Nil(t, got)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestComputeIsReproducible(t *testing.T) {
	in := Input{
		Method:        enums.CalculationMethodPercentage,
		BillableHours: decimal.RequireFromString("187.5"),
		UnitPrice:     decimal.RequireFromString("3333.33"),
		ExchangeRate:  decimal.RequireFromString("24123.45"),
		StandardHours: decimal.NewFromInt(160),
	}
	first, err := Compute(in)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Compute(in)
		require.NoError(t, err)
		require.True(t, first.ActualAmountVND.Equal(again.ActualAmountVND))
		require.True(t, first.TotalForeign.Equal(again.TotalForeign))
		require.True(t, first.ManMonthCoefficient.Equal(again.ManMonthCoefficient))
	}
	// VND amounts carry no fractional part.
	assert.True(t, first.ActualAmountVND.Equal(first.ActualAmountVND.Round(0)))
}

func TestPlanAmountPercentage(t *testing.T) {
	got, err := PlanAmount(Input{
		Method:          enums.CalculationMethodPercentage,
		UnitPrice:       decimal.NewFromInt(3200),
		PercentageValue: decimal.NewFromInt(100),
		ExchangeRate:    decimal.NewFromInt(25000),
	})
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(80_000_000)), "planned %s", got)
}

func TestPlanAmountFixed(t *testing.T) {
	got, err := PlanAmount(Input{
		Method:      enums.CalculationMethodFixedAmount,
		FixedAmount: decimal.NewFromInt(50_000_000),
	})
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(50_000_000)))
}

func TestPlanAmountValidation(t *testing.T) {
	cases := []Input{
		{Method: enums.CalculationMethodFixedAmount},
		{Method: enums.CalculationMethodPercentage, UnitPrice: decimal.NewFromInt(3200)},
		{Method: enums.CalculationMethod("Hourly")},
	}
	for _, in := range cases {
		if _, err := PlanAmount(in); err == nil {
			t.Fatalf("expected validation error for %+v", in)
		}
	}
}
