package merit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marks(obtained, total int64) Marks {
	return Marks{Obtained: decimal.NewFromInt(obtained), Total: decimal.NewFromInt(total)}
}

func TestScore(t *testing.T) {
	// matric 80%, inter 70%, test 60% -> 8 + 28 + 30
	test := marks(60, 100)
	got := Score(marks(880, 1100), marks(770, 1100), &test)
	assert.Equal(t, "66", got.String())

	// without a test -> 24 + 49
	got = Score(marks(880, 1100), marks(770, 1100), nil)
	assert.Equal(t, "73", got.String())

	// zero test total falls back to the no-test weights
	empty := marks(0, 0)
	assert.Equal(t, "73", Score(marks(880, 1100), marks(770, 1100), &empty).String())
}

func TestScoreRoundsToFourPlaces(t *testing.T) {
	got := Score(marks(1, 3), marks(2, 3), nil)
	// 33.333..*0.3 + 66.666..*0.7 = 10 + 46.6666.. = 56.6667
	assert.Equal(t, "56.6667", got.String())
}

func TestEligible(t *testing.T) {
	min := decimal.NewFromInt(60)
	assert.True(t, Eligible(marks(60, 100), min))
	assert.False(t, Eligible(marks(599, 1000), min))
}

func TestRankSelectsTopSeats(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	candidates := []Candidate{
		{ID: 1, Score: decimal.RequireFromString("70.5"), InterPercent: decimal.NewFromInt(70), SubmittedAt: base},
		{ID: 2, Score: decimal.RequireFromString("88"), InterPercent: decimal.NewFromInt(85), SubmittedAt: base},
		{ID: 3, Score: decimal.RequireFromString("75"), InterPercent: decimal.NewFromInt(72), SubmittedAt: base},
		{ID: 4, Score: decimal.RequireFromString("60"), InterPercent: decimal.NewFromInt(60), SubmittedAt: base},
	}

	got := Rank(candidates, 2)
	require.Len(t, got, 4)

	ids := []int64{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []int64{2, 3, 1, 4}, ids)
	for i, p := range got {
		assert.Equal(t, i+1, p.Rank)
	}
	assert.Equal(t, Selected, got[0].Outcome)
	assert.Equal(t, Selected, got[1].Outcome)
	assert.Equal(t, Waitlisted, got[2].Outcome)
	assert.Equal(t, Waitlisted, got[3].Outcome)

	// input order untouched
	assert.Equal(t, int64(1), candidates[0].ID)
}

func TestRankTieBreaks(t *testing.T) {
	early := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	score := decimal.NewFromInt(80)

	got := Rank([]Candidate{
		{ID: 5, Score: score, InterPercent: decimal.NewFromInt(75), SubmittedAt: late},
		{ID: 9, Score: score, InterPercent: decimal.NewFromInt(75), SubmittedAt: early},
		{ID: 7, Score: score, InterPercent: decimal.NewFromInt(75), SubmittedAt: early},
		{ID: 3, Score: score, InterPercent: decimal.NewFromInt(90), SubmittedAt: late},
	}, 1)

	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(7), got[1].ID)
	assert.Equal(t, int64(9), got[2].ID)
	assert.Equal(t, int64(5), got[3].ID)
	assert.Equal(t, Selected, got[0].Outcome)
}

func TestRankSeatEdgeCases(t *testing.T) {
	c := []Candidate{{ID: 1, Score: decimal.NewFromInt(50)}, {ID: 2, Score: decimal.NewFromInt(40)}}

	for _, p := range Rank(c, 0) {
		assert.Equal(t, Waitlisted, p.Outcome)
	}
	for _, p := range Rank(c, -3) {
		assert.Equal(t, Waitlisted, p.Outcome)
	}
	for _, p := range Rank(c, 10) {
		assert.Equal(t, Selected, p.Outcome)
	}
	assert.Empty(t, Rank(nil, 5))
}
