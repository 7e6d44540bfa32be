package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateAnnualTax(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name   string
		income int64
		annual string
	}{
		{"below exemption", 500_000, "0"},
		{"exemption boundary", 600_000, "0"},
		{"second slab", 1_000_000, "10000"},
		{"second slab top", 1_200_000, "15000"},
		{"third slab", 2_000_000, "115000"},
		{"fourth slab", 3_000_000, "285000"},
		{"fifth slab top", 6_000_000, "1005000"},
		{"top slab", 8_000_000, "1655000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.AnnualTax(decimal.NewFromInt(tt.income))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.annual)), "got %s want %s", got, tt.annual)
		})
	}
}

func TestMonthlyTaxIsAnnualOverTwelve(t *testing.T) {
	res := NewCalculator().Calculate(decimal.NewFromInt(1_000_000))
	assert.Equal(t, "10000", res.AnnualTax.String())
	assert.Equal(t, "833.33", res.MonthlyTax.StringFixed(2))
}

func TestBreakdownCoversEverySlab(t *testing.T) {
	res := NewCalculator().Calculate(decimal.NewFromInt(3_000_000))
	require.Len(t, res.Breakdown, len(DefaultBrackets))

	assert.Equal(t, "600000", res.Breakdown[0].TaxableAmount.String())
	assert.True(t, res.Breakdown[0].Tax.IsZero())
	assert.Equal(t, "15000", res.Breakdown[1].Tax.String())
	assert.Equal(t, "150000", res.Breakdown[2].Tax.String())
	assert.Equal(t, "600000", res.Breakdown[3].TaxableAmount.String())
	assert.Equal(t, "120000", res.Breakdown[3].Tax.String())
	assert.True(t, res.Breakdown[4].TaxableAmount.IsZero())

	sum := decimal.Zero
	for _, b := range res.Breakdown {
		sum = sum.Add(b.Tax)
	}
	assert.True(t, sum.Equal(res.AnnualTax))
}

func TestNegativeIncomeIsUntaxed(t *testing.T) {
	res := NewCalculator().Calculate(decimal.NewFromInt(-10))
	assert.True(t, res.AnnualTax.IsZero())
	assert.True(t, res.AnnualIncome.IsZero())
}

func TestCustomBrackets(t *testing.T) {
	top := decimal.NewFromInt(100)
	calc := NewCalculator(
		Bracket{LowerBound: decimal.Zero, UpperBound: &top, Rate: decimal.Zero},
		Bracket{LowerBound: top, Rate: decimal.RequireFromString("0.5")},
	)
	assert.Equal(t, "50", calc.AnnualTax(decimal.NewFromInt(200)).String())
}
