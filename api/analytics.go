package api

import (
	"context"
)

// The analytics payloads feed charts and maps. Only the parts that are
// rendered as tables are typed; the rest are kept as rows.

type Dashboard struct {
	KPIs                map[string]float64 `json:"kpis"`
	RevenuePerformance  []Row              `json:"revenuePerformance"`
	ProductCategories   []Row              `json:"productCategories"`
	RegionalPerformance []Row              `json:"regionalPerformance"`
	TopPharmacies       []Row              `json:"topPharmacies"`
}

type TopProduct struct {
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	Revenue     float64 `json:"revenue"`
	Quantity    float64 `json:"quantity"`
}

type SalesByRegion struct {
	Region  string  `json:"region"`
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
	Growth  float64 `json:"growth"`
}

// Label is the region name; some endpoints send it as "name".
func (s SalesByRegion) Label() string {
	if s.Region != "" {
		return s.Region
	}
	return s.Name
}

type Analytics struct {
	KPIs          map[string]float64 `json:"kpis"`
	SalesTrend    []Row              `json:"salesTrend"`
	TopProducts   []TopProduct       `json:"topProducts"`
	SalesByRegion []SalesByRegion    `json:"salesByRegion"`
}

type ProductInsights struct {
	KPIs              map[string]float64 `json:"kpis"`
	TopSKUs           []Row              `json:"topSkus"`
	LifecycleStages   []Row              `json:"lifecycleStages"`
	Products          []Row              `json:"products"`
	AIRecommendations []Row              `json:"aiRecommendations"`
}

type StockAlert struct {
	Product  string `json:"product"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Stock    string `json:"stock"`
	Action   string `json:"action"`
}

type InventoryAnalytics struct {
	KPIs            map[string]float64 `json:"kpis"`
	StockByCategory []Row              `json:"stockByCategory"`
	TurnoverRatio   []Row              `json:"turnoverRatio"`
	StockAlerts     []StockAlert       `json:"stockAlerts"`
}

func (c Client) GetDashboard(ctx context.Context) (*Dashboard, error) {
	return get[Dashboard](ctx, c, "/Analytics/dashboard", nil, "Failed to fetch dashboard data")
}

func (c Client) GetAnalytics(ctx context.Context) (*Analytics, error) {
	return get[Analytics](ctx, c, "/Analytics", nil, "Failed to fetch analytics")
}

func (c Client) GetProductInsights(ctx context.Context) (*ProductInsights, error) {
	return get[ProductInsights](ctx, c, "/Analytics/product-insights", nil, "Failed to fetch product insights")
}

func (c Client) GetInventoryAnalytics(ctx context.Context) (*InventoryAnalytics, error) {
	return get[InventoryAnalytics](ctx, c, "/Analytics/inventory", nil, "Failed to fetch inventory analytics")
}
