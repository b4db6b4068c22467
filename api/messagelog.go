package api

import (
	"context"
)

type MessageLog struct {
	ID              int    `json:"id"`
	CustomerID      int    `json:"customerId"`
	CustomerName    string `json:"customerName"`
	Recipient       string `json:"recipient"`
	MessageContent  string `json:"messageContent"`
	APIEndpoint     string `json:"apiEndpoint"`
	Status          string `json:"status"`
	GatewayResponse string `json:"gatewayResponse"`
	RetryAttempts   int    `json:"retryAttempts"`
	CreatedAtUTC    Time   `json:"createdAtUtc"`
	SentAtUTC       Time   `json:"sentAtUtc"`
}

type MessageLogFilter struct {
	Search      string `json:"search,omitempty"`
	Status      string `json:"status,omitempty"`
	APIEndpoint string `json:"apiEndpoint,omitempty"`
	FromDateUTC *Time  `json:"fromDateUtc,omitempty"`
	ToDateUTC   *Time  `json:"toDateUtc,omitempty"`
}

type searchMessageLogsRequest struct {
	PageRequest
	MessageLogFilter
}

// SearchMessageLogs is a POST search: the page and the non-empty filter
// fields are sent together in the request body.
func (c Client) SearchMessageLogs(ctx context.Context, page PageRequest, filter MessageLogFilter) (*Page[MessageLog], error) {
	req := &searchMessageLogsRequest{PageRequest: page, MessageLogFilter: filter}
	return search[MessageLog](ctx, c, "/whatsapp/logs/search", page, req, "Failed to load message logs")
}
