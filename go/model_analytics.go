package ventrestserver

import (
	analyticsdomain "github.com/Apurer/ventrest-api/internal/domains/analytics/domain"
	analyticsports "github.com/Apurer/ventrest-api/internal/domains/analytics/ports"
)

type CategoryTotal struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int    `json:"count"`
}

type TopProduct struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	TotalSold    int    `json:"totalSold"`
	TotalRevenue string `json:"totalRevenue"`
}

type VendorAnalytics struct {
	TotalOrders       int             `json:"totalOrders"`
	ThisMonthOrders   int             `json:"thisMonthOrders"`
	TotalSpent        string          `json:"totalSpent"`
	ThisMonthSpent    string          `json:"thisMonthSpent"`
	RecentOrders      []Order         `json:"recentOrders"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
}

type SupplierAnalytics struct {
	TotalProducts     int             `json:"totalProducts"`
	ActiveProducts    int             `json:"activeProducts"`
	TotalOrders       int             `json:"totalOrders"`
	ThisMonthOrders   int             `json:"thisMonthOrders"`
	TotalRevenue      string          `json:"totalRevenue"`
	ThisMonthRevenue  string          `json:"thisMonthRevenue"`
	RecentOrders      []Order         `json:"recentOrders"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
	TopProducts       []TopProduct    `json:"topProducts"`
}

func fromCategories(totals []analyticsdomain.CategoryTotal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, CategoryTotal{Category: t.Category, Total: t.Amount.StringFixed(2), Count: t.Units})
	}
	return out
}

func fromVendorSummary(s *analyticsports.VendorSummary) VendorAnalytics {
	return VendorAnalytics{
		TotalOrders:       s.TotalOrders,
		ThisMonthOrders:   s.ThisMonthOrders,
		TotalSpent:        s.TotalSpent.StringFixed(2),
		ThisMonthSpent:    s.ThisMonthSpent.StringFixed(2),
		RecentOrders:      fromOrders(s.RecentOrders),
		CategoryBreakdown: fromCategories(s.CategoryBreakdown),
	}
}

func fromSupplierSummary(s *analyticsports.SupplierSummary) SupplierAnalytics {
	top := make([]TopProduct, 0, len(s.TopProducts))
	for _, p := range s.TopProducts {
		top = append(top, TopProduct{
			ProductID:    p.ProductID.String(),
			Name:         p.Name,
			TotalSold:    p.UnitsSold,
			TotalRevenue: p.Revenue.StringFixed(2),
		})
	}
	return SupplierAnalytics{
		TotalProducts:     s.TotalProducts,
		ActiveProducts:    s.ActiveProducts,
		TotalOrders:       s.TotalOrders,
		ThisMonthOrders:   s.ThisMonthOrders,
		TotalRevenue:      s.TotalRevenue.StringFixed(2),
		ThisMonthRevenue:  s.ThisMonthRevenue.StringFixed(2),
		RecentOrders:      fromOrders(s.RecentOrders),
		CategoryBreakdown: fromCategories(s.CategoryBreakdown),
		TopProducts:       top,
	}
}
