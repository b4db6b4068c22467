package api

import (
	"context"
	"fmt"
)

type Product struct {
	ID               int     `json:"drugId"`
	Code             string  `json:"drugCode"`
	QuickCode        string  `json:"drugQuickcode"`
	Name             string  `json:"drugName"`
	Short            string  `json:"drugShort"`
	Strength         string  `json:"strength"`
	BrandName        string  `json:"brandName"`
	QuantityPack     string  `json:"quantityPack"`
	MaxLevel         int     `json:"maxLevel,omitempty"`
	MinLevel         int     `json:"minLevel,omitempty"`
	Narcotics        bool    `json:"narcotics,omitempty"`
	UnitCost         float64 `json:"unitCost,omitempty"`
	Margin           float64 `json:"margin,omitempty"`
	IsActive         bool    `json:"bitIsActive,omitempty"`
	DateCreated      Time    `json:"dateCreated"`
	DrugTypeName     string  `json:"drugTypeName,omitempty"`
	Description      string  `json:"drugDescription,omitempty"`
	DosageFormName   string  `json:"dosageFormName,omitempty"`
	ManufacturerName string  `json:"manufacturerName,omitempty"`
	CurrentStock     float64 `json:"currentStock,omitempty"`
	SellingPrice     float64 `json:"sellingPrice,omitempty"`
	TotalSales       float64 `json:"totalSales,omitempty"`
	TotalRevenue     float64 `json:"totalRevenue,omitempty"`
	TurnoverRate     string  `json:"turnoverRate,omitempty"`
}

func (p Product) Status() string {
	if p.IsActive {
		return "Active"
	}
	return "Inactive"
}

// Category is the drug type, or "Uncategorized" when the backend omits it.
func (p Product) Category() string {
	if p.DrugTypeName == "" {
		return "Uncategorized"
	}
	return p.DrugTypeName
}

type StockSummary struct {
	TotalPurchased float64 `json:"totalPurchased"`
	TotalSold      float64 `json:"totalSold"`
	CurrentStock   float64 `json:"currentStock"`
	MinLevel       float64 `json:"minLevel"`
	MaxLevel       float64 `json:"maxLevel"`
	IsLowStock     bool    `json:"isLowStock"`
	IsOutOfStock   bool    `json:"isOutOfStock"`
}

type Batch struct {
	BatchNo        string  `json:"batchNo"`
	ExpiryDate     Time    `json:"expiryDate"`
	RemainingQty   float64 `json:"remainingQty"`
	IsExpiringSoon bool    `json:"isExpiringSoon"`
}

type Pricing struct {
	UnitCost      float64 `json:"unitCost"`
	MarginPercent float64 `json:"marginPercent"`
	MarginAmount  float64 `json:"marginAmount"`
	SalePrice     float64 `json:"salePrice"`
}

type RegionalSale struct {
	Region   string  `json:"region"`
	Amount   float64 `json:"amount"`
	Quantity float64 `json:"quantity"`
}

type RecentOrder struct {
	OrderID  string  `json:"orderId"`
	Date     Time    `json:"date"`
	Customer string  `json:"customer"`
	Quantity float64 `json:"quantity"`
	Total    float64 `json:"total"`
}

type StockMovement struct {
	Date        Time    `json:"date"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Type        string  `json:"type"`
}

type ProductAlert struct {
	Message string `json:"message"`
}

type ProductDetail struct {
	Product

	TherapeuticClass  string          `json:"theRapeuticclass"`
	NDCCode           string          `json:"drugNdccode"`
	DrugType          string          `json:"drugType"`
	DrugTypeID        int             `json:"drugTypeId"`
	IsNarcotic        bool            `json:"isNarcotic"`
	StockSummary      *StockSummary   `json:"stockSummary,omitempty"`
	ActiveBatches     []Batch         `json:"activeBatches"`
	Pricing           *Pricing        `json:"pricing,omitempty"`
	MonthlySalesTrend []MonthlyAmount `json:"monthlySalesTrend"`
	RegionalSales     []RegionalSale  `json:"regionalSales"`
	RecentOrders      []RecentOrder   `json:"recentOrders"`
	StockMovements    []StockMovement `json:"stockMovements"`
	Alerts            []ProductAlert  `json:"alerts"`
}

type ProductFilter struct {
	Search     string `url:"search,omitempty" json:"search,omitempty"`
	DrugTypeID int    `url:"drugTypeId,omitempty" json:"drugTypeId,omitempty"`
}

func (c Client) ListProducts(ctx context.Context, page PageRequest, filter ProductFilter) (*Page[Product], error) {
	return list[Product](ctx, c, "/products", page, filter, "Failed to load products")
}

func (c Client) GetProduct(ctx context.Context, id int) (*ProductDetail, error) {
	return get[ProductDetail](ctx, c, fmt.Sprintf("/products/%d", id), nil, "Product not found")
}
