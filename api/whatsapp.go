package api

import "context"

type InactiveReminderRequest struct {
	CustomerIDs []int `json:"customerIds"`
}

type InactiveReminderResponse struct {
	TotalSuccessful int `json:"totalSuccessful"`
	TotalFailed     int `json:"totalFailed"`
}

type OrderSummaryRequest struct {
	CustomerIDs []int `json:"customerIds"`
	Days        int   `json:"days"`
}

// BroadcastResponse is the aggregate result of a message sent to many
// customers at once.
type BroadcastResponse struct {
	TotalSent   int              `json:"totalSent"`
	TotalFailed int              `json:"totalFailed"`
	Results     []BroadcastEntry `json:"results,omitempty"`
}

type BroadcastEntry struct {
	CustomerID int    `json:"customerId"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
}

type PaymentReminderRequest struct {
	CustomerID        int     `json:"customerId"`
	OutstandingAmount float64 `json:"outstandingAmount"`
	To                string  `json:"to"`
}

type PaymentReminderResponse struct {
	MessageID string `json:"messageId,omitempty"`
	Status    string `json:"status,omitempty"`
}

func (c Client) SendInactiveReminder(ctx context.Context, req *InactiveReminderRequest) (*InactiveReminderResponse, error) {
	return post[InactiveReminderRequest, InactiveReminderResponse](ctx, c, "/whatsapp/inactive-reminder", req, "Failed to send inactive reminder")
}

func (c Client) SendOrderSummary(ctx context.Context, req *OrderSummaryRequest) (*BroadcastResponse, error) {
	return post[OrderSummaryRequest, BroadcastResponse](ctx, c, "/whatsapp/order-summary", req, "Failed to send order summary")
}

func (c Client) SendPaymentReminder(ctx context.Context, req *PaymentReminderRequest) (*PaymentReminderResponse, error) {
	return post[PaymentReminderRequest, PaymentReminderResponse](ctx, c, "/whatsapp/payment-reminder", req, "Failed to send payment reminder")
}
