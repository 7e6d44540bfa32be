// Package tax implements the progressive annual income tax used by payroll.
package tax

import (
	"github.com/shopspring/decimal"
)

// Bracket is one marginal slab. UpperBound is nil for the open-ended top slab.
type Bracket struct {
	LowerBound decimal.Decimal
	UpperBound *decimal.Decimal
	Rate       decimal.Decimal
}

// BracketTax is the tax charged inside a single slab
type BracketTax struct {
	Bracket
	TaxableAmount decimal.Decimal
	Tax           decimal.Decimal
}

// Result summarizes a computation for one annual income
type Result struct {
	AnnualIncome decimal.Decimal
	AnnualTax    decimal.Decimal
	MonthlyTax   decimal.Decimal
	Breakdown    []BracketTax
}

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// DefaultBrackets are the salaried-individual slabs
var DefaultBrackets = []Bracket{
	{LowerBound: decimal.Zero, UpperBound: bound(600_000), Rate: decimal.Zero},
	{LowerBound: decimal.NewFromInt(600_000), UpperBound: bound(1_200_000), Rate: decimal.RequireFromString("0.025")},
	{LowerBound: decimal.NewFromInt(1_200_000), UpperBound: bound(2_400_000), Rate: decimal.RequireFromString("0.125")},
	{LowerBound: decimal.NewFromInt(2_400_000), UpperBound: bound(3_600_000), Rate: decimal.RequireFromString("0.20")},
	{LowerBound: decimal.NewFromInt(3_600_000), UpperBound: bound(6_000_000), Rate: decimal.RequireFromString("0.25")},
	{LowerBound: decimal.NewFromInt(6_000_000), Rate: decimal.RequireFromString("0.325")},
}

var twelve = decimal.NewFromInt(12)

// Calculator applies a fixed set of ascending brackets
type Calculator struct {
	brackets []Bracket
}

// NewCalculator returns a calculator over brackets, or DefaultBrackets when none are given
func NewCalculator(brackets ...Bracket) *Calculator {
	if len(brackets) == 0 {
		brackets = DefaultBrackets
	}
	return &Calculator{brackets: brackets}
}

// Brackets returns the slabs in ascending order
func (c *Calculator) Brackets() []Bracket {
	return c.brackets
}

// Calculate sums the taxed portion of income in each slab. Negative income is taxed as zero.
// Annual tax keeps full precision until the monthly split; both are rounded to 2 places.
func (c *Calculator) Calculate(annualIncome decimal.Decimal) Result {
	if annualIncome.IsNegative() {
		annualIncome = decimal.Zero
	}

	total := decimal.Zero
	breakdown := make([]BracketTax, 0, len(c.brackets))
	for _, b := range c.brackets {
		taxable := decimal.Zero
		if annualIncome.GreaterThan(b.LowerBound) {
			top := annualIncome
			if b.UpperBound != nil && top.GreaterThan(*b.UpperBound) {
				top = *b.UpperBound
			}
			taxable = top.Sub(b.LowerBound)
		}
		amount := taxable.Mul(b.Rate)
		total = total.Add(amount)
		breakdown = append(breakdown, BracketTax{
			Bracket:       b,
			TaxableAmount: taxable.Round(2),
			Tax:           amount.Round(2),
		})
	}

	return Result{
		AnnualIncome: annualIncome.Round(2),
		AnnualTax:    total.Round(2),
		MonthlyTax:   total.Div(twelve).Round(2),
		Breakdown:    breakdown,
	}
}

// AnnualTax is a shorthand for Calculate(income).AnnualTax
func (c *Calculator) AnnualTax(annualIncome decimal.Decimal) decimal.Decimal {
	return c.Calculate(annualIncome).AnnualTax
}

// MonthlyTax is annual tax divided by twelve
func (c *Calculator) MonthlyTax(annualIncome decimal.Decimal) decimal.Decimal {
	return c.Calculate(annualIncome).MonthlyTax
}
