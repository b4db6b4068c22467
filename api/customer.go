package api

import (
	"context"
	"fmt"
	"strings"
)

type Customer struct {
	ID                   int     `json:"customerId"`
	Code                 string  `json:"cusCode"`
	FirstName            string  `json:"cusFirstname"`
	LastName             string  `json:"cusLastname"`
	Mobile               string  `json:"cusMobileno"`
	PhoneOffice          string  `json:"cusPhonenoO"`
	PhoneResidence       string  `json:"cusPhonenoR"`
	Email                string  `json:"cusEmail"`
	City                 string  `json:"city"`
	Address              string  `json:"address"`
	Pin                  string  `json:"pin"`
	District             string  `json:"district"`
	Country              string  `json:"country"`
	Region               string  `json:"region"`
	EmployeeID           int     `json:"employeeId,omitempty"`
	IsActive             *bool   `json:"bitIsActive,omitempty"`
	DateCreated          Time    `json:"dateCreated"`
	StoreAmountRemaining float64 `json:"storeAmtremain"`
	StoreAmountUsed      float64 `json:"storeAmtused"`
	License              string  `json:"pbsllicense"`
	LicenseType          string  `json:"licenseType"`
	LicenseExpiry        *Time   `json:"licenseExpiry,omitempty"`
	CustomerTypeID       int     `json:"cusTypeId,omitempty"`
	CreditLimit          float64 `json:"creditlim"`
	CreditDays           int     `json:"creditdays"`
}

// Name is the display name of the customer.
func (c Customer) Name() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return "Unknown"
	}
	return name
}

// Active reports whether the backend marked the customer active. A missing
// flag is treated as inactive.
func (c Customer) Active() bool {
	return c.IsActive != nil && *c.IsActive
}

func (c Customer) Status() string {
	if c.Active() {
		return "active"
	}
	return "inactive"
}

// Contact is the number used to reach the customer on WhatsApp.
func (c Customer) Contact() string {
	return strings.TrimSpace(c.Mobile)
}

type CustomerType struct {
	ID   int    `json:"cusTypeId"`
	Name string `json:"cusTypeName"`
}

type Employee struct {
	ID       int    `json:"employeeId"`
	Name     string `json:"employeeName"`
	Short    string `json:"empShort"`
	Position string `json:"empPosition,omitempty"`
	Email    string `json:"empEmail,omitempty"`
	Mobile   string `json:"empMobile,omitempty"`
}

type OrderSummary struct {
	OrderID int     `json:"orderId"`
	Date    Time    `json:"date"`
	Items   int     `json:"items"`
	Total   float64 `json:"total"`
	Status  string  `json:"status"`
}

type PaymentSummary struct {
	PaymentID int     `json:"paymentId"`
	Date      Time    `json:"date"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
}

type Engagement struct {
	Type   string `json:"type"`
	Date   Time   `json:"date"`
	Status string `json:"status"`
}

type MonthlyAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type CustomerDetail struct {
	Customer

	CustomerType   *CustomerType    `json:"customerType,omitempty"`
	Employee       *Employee        `json:"employee,omitempty"`
	TotalOrders    int              `json:"totalOrders"`
	LifetimeValue  float64          `json:"lifetimeValue"`
	LastPurchase   Time             `json:"lastPurchase"`
	ActivePolicies int              `json:"activePolicies"`
	OrderHistory   []OrderSummary   `json:"orderHistory"`
	PaymentHistory []PaymentSummary `json:"paymentHistory"`
	Engagement     []Engagement     `json:"engagement"`
	PurchaseTrend  []MonthlyAmount  `json:"purchaseTrend"`
	CategorySplit  []CategoryAmount `json:"categorySplit"`
}

type CustomerFilter struct {
	Search   string `url:"search,omitempty" json:"search,omitempty"`
	IsActive *bool  `url:"isActive,omitempty" json:"isActive,omitempty"`
}

type InactiveCustomerFilter struct {
	// Days selects customers without orders for at least this many days.
	Days int `url:"day,omitempty" json:"day,omitempty"`
}

func (c Client) ListCustomers(ctx context.Context, page PageRequest, filter CustomerFilter) (*Page[Customer], error) {
	return list[Customer](ctx, c, "/customer", page, filter, "Failed to fetch customers")
}

func (c Client) ListInactiveCustomers(ctx context.Context, page PageRequest, filter InactiveCustomerFilter) (*Page[Customer], error) {
	return list[Customer](ctx, c, "/customer/inactive", page, filter, "Failed to fetch inactive customers")
}

func (c Client) GetCustomer(ctx context.Context, id int) (*CustomerDetail, error) {
	return get[CustomerDetail](ctx, c, fmt.Sprintf("/customer/%d", id), nil, "Failed to fetch customer")
}
