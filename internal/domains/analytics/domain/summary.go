// Package domain holds the dashboard rollups for vendors and suppliers.
package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultLimit bounds recent orders and top products when none is requested.
	DefaultLimit = 5
	// MaxLimit is the largest accepted limit.
	MaxLimit = 50
)

// ErrInvalidLimit rejects limits outside 1..MaxLimit.
var ErrInvalidLimit = errors.New("limit must be between 1 and 50")

// NormalizeLimit maps zero to DefaultLimit and rejects out-of-range values.
func NormalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultLimit, nil
	}
	if limit < 1 || limit > MaxLimit {
		return 0, ErrInvalidLimit
	}
	return limit, nil
}

// MonthStart is midnight on the first day of now's month, in now's location.
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// Totals are the order counters of one party.
// Volume only counts orders that have shipped or been delivered.
type Totals struct {
	Orders      int
	MonthOrders int
	Volume      decimal.Decimal
	MonthVolume decimal.Decimal
}

// CategoryTotal is the spend or revenue attributed to one product category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
	Units    int
}

// SortCategories orders by amount descending, then by category name.
func SortCategories(totals []CategoryTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		if c := totals[i].Amount.Cmp(totals[j].Amount); c != 0 {
			return c > 0
		}
		return totals[i].Category < totals[j].Category
	})
}

// ProductSales is the sell-through of one product.
type ProductSales struct {
	ProductID uuid.UUID
	Name      string
	UnitsSold int
	Revenue   decimal.Decimal
}

// RankProducts orders by units sold descending, ties by product id ascending, and truncates to limit.
func RankProducts(sales []ProductSales, limit int) []ProductSales {
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].UnitsSold != sales[j].UnitsSold {
			return sales[i].UnitsSold > sales[j].UnitsSold
		}
		return sales[i].ProductID.String() < sales[j].ProductID.String()
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales
}

// ProductCounts summarizes a supplier's catalog.
type ProductCounts struct {
	Total  int
	Active int
}
