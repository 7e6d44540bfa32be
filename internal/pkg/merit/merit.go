// Package merit computes admission eligibility scores and ranks applicants into a merit list.
package merit

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the placement a ranked candidate receives
type Outcome string

const (
	Selected   Outcome = "SELECTED"
	Waitlisted Outcome = "WAITLISTED"
)

var (
	hundred = decimal.NewFromInt(100)

	weightMatricWithTest = decimal.RequireFromString("0.10")
	weightInterWithTest  = decimal.RequireFromString("0.40")
	weightTest           = decimal.RequireFromString("0.50")
	weightMatric         = decimal.RequireFromString("0.30")
	weightInter          = decimal.RequireFromString("0.70")
)

// Marks are obtained and total marks for one examination
type Marks struct {
	Obtained decimal.Decimal
	Total    decimal.Decimal
}

// Percent returns obtained/total as a percentage, zero when total is not positive
func (m Marks) Percent() decimal.Decimal {
	if !m.Total.IsPositive() {
		return decimal.Zero
	}
	return m.Obtained.Div(m.Total).Mul(hundred)
}

// Score returns the weighted eligibility score in [0, 100] rounded to 4 places.
// A nil test means the applicant sat no entry test.
func Score(matric, inter Marks, test *Marks) decimal.Decimal {
	var score decimal.Decimal
	if test != nil && test.Total.IsPositive() {
		score = matric.Percent().Mul(weightMatricWithTest).
			Add(inter.Percent().Mul(weightInterWithTest)).
			Add(test.Percent().Mul(weightTest))
	} else {
		score = matric.Percent().Mul(weightMatric).
			Add(inter.Percent().Mul(weightInter))
	}
	return score.Round(4)
}

// Eligible reports whether the intermediate percentage meets the program threshold
func Eligible(inter Marks, minPercentage decimal.Decimal) bool {
	return inter.Percent().GreaterThanOrEqual(minPercentage)
}

// Candidate is one application entering the ranking
type Candidate struct {
	ID           int64
	Score        decimal.Decimal
	InterPercent decimal.Decimal
	SubmittedAt  time.Time
}

// Placement is a candidate with its assigned rank and outcome
type Placement struct {
	Candidate
	Rank    int
	Outcome Outcome
}

// Rank orders candidates by score descending and marks the first seats as selected.
// Ties fall back to the higher intermediate percentage, the earlier submission, then the lower id.
// Negative seats are treated as zero. The input slice is not modified.
func Rank(candidates []Candidate, seats int) []Placement {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if c := a.Score.Cmp(b.Score); c != 0 {
			return c > 0
		}
		if c := a.InterPercent.Cmp(b.InterPercent); c != 0 {
			return c > 0
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.ID < b.ID
	})

	placements := make([]Placement, len(sorted))
	for i, c := range sorted {
		outcome := Waitlisted
		if i < seats {
			outcome = Selected
		}
		placements[i] = Placement{Candidate: c, Rank: i + 1, Outcome: outcome}
	}
	return placements
}
