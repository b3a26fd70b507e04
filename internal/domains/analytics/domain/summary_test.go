package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	limit, err := NormalizeLimit(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, limit)

	limit, err = NormalizeLimit(50)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)

	for _, bad := range []int{-1, 51} {
		_, err := NormalizeLimit(bad)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	}
}

func TestMonthStartKeepsLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 7, 1, 2, 15, 0, 0, kolkata)
	start := MonthStart(now)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, kolkata), start)
	assert.True(t, start.Before(now))

	// Still June in UTC, but the month boundary follows the server zone.
	assert.Equal(t, time.June, now.UTC().Month())
}

func TestRankProductsTieBreaksOnID(t *testing.T) {
	low := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")
	mid := uuid.MustParse("80000000-0000-0000-0000-000000000000")
	ranked := RankProducts([]ProductSales{
		{ProductID: high, UnitsSold: 4},
		{ProductID: mid, UnitsSold: 9},
		{ProductID: low, UnitsSold: 4},
	}, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, mid, ranked[0].ProductID)
	assert.Equal(t, low, ranked[1].ProductID)
}

func TestSortCategories(t *testing.T) {
	totals := []CategoryTotal{
		{Category: "snacks", Amount: decimal.NewFromInt(10)},
		{Category: "beverages", Amount: decimal.NewFromInt(40)},
		{Category: "desserts", Amount: decimal.NewFromInt(10)},
	}
	SortCategories(totals)
	assert.Equal(t, []string{"beverages", "desserts", "snacks"}, []string{totals[0].Category, totals[1].Category, totals[2].Category})
}
