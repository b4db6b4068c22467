package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/tatipharma/pharmabi/api"
)

func TestPaymentReminderCmd(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	srv := newBackend(t, map[string]any{
		"GET /customer/12":                api.CustomerDetail{Customer: activeCustomer(12, "Ana", " +23276000012 ")},
		"GET /customer/15":                api.CustomerDetail{Customer: activeCustomer(15, "Ibrahim", "")},
		"POST /whatsapp/payment-reminder": api.PaymentReminderResponse{MessageID: "wamid.1", Status: "sent"},
	})

	t.Run("sends one at a time and skips customers without a number", func(t *testing.T) {
		ctx, bufs := PatchCLI(context.Background())
		writeTestSession(t, ctx, home, time.Now().Add(time.Hour))

		err := Run(ctx, "whatsapp", "payment-reminder", "--server", srv.URL,
			"--amount", "1500", "--ids", "12,15,20", "--yes")
		assert.NilError(t, err)

		reqs := srv.Requests(http.MethodPost, "/whatsapp/payment-reminder")
		assert.Assert(t, is.Len(reqs, 1))
		assert.DeepEqual(t, reqs[0].Body, map[string]any{
			"customerId":        float64(12),
			"outstandingAmount": float64(1500),
			"to":                "+23276000012",
		})

		out := bufs.Stdout.String()
		assert.Assert(t, is.Regexp(`Successful:\s+1\n`, out))
		assert.Assert(t, is.Regexp(`Failed:\s+1\n`, out))
		assert.Assert(t, is.Contains(out, "Skipped (no WhatsApp number): 1\n"))

		errOut := bufs.Stderr.String()
		assert.Assert(t, is.Contains(errOut, "customer 15: skipped, no WhatsApp number"))
		assert.Assert(t, is.Contains(errOut, "customer 20: failed: Error Code: 404"))
	})

	t.Run("a fixed recipient needs no lookup", func(t *testing.T) {
		ctx, _ := PatchCLI(context.Background())
		writeTestSession(t, ctx, home, time.Now().Add(time.Hour))
		before := len(srv.Requests(http.MethodGet, "/customer/15"))

		err := Run(ctx, "whatsapp", "payment-reminder", "--server", srv.URL,
			"--amount", "20", "--ids", "15", "--to", "+23299000000", "--yes")
		assert.NilError(t, err)

		assert.Equal(t, len(srv.Requests(http.MethodGet, "/customer/15")), before)
		reqs := srv.Requests(http.MethodPost, "/whatsapp/payment-reminder")
		assert.Equal(t, reqs[len(reqs)-1].Body["to"], "+23299000000")
		assert.Equal(t, reqs[len(reqs)-1].Body["customerId"], float64(15))
	})

	t.Run("confirmation is required without a terminal", func(t *testing.T) {
		ctx, _ := PatchCLI(context.Background())
		writeTestSession(t, ctx, home, time.Now().Add(time.Hour))
		before := len(srv.Requests(http.MethodPost, "/whatsapp/payment-reminder"))

		err := Run(ctx, "whatsapp", "payment-reminder", "--server", srv.URL, "--amount", "20", "--ids", "12")
		assert.ErrorContains(t, err, "confirmation required")
		assert.ErrorContains(t, err, "--yes")
		assert.Equal(t, len(srv.Requests(http.MethodPost, "/whatsapp/payment-reminder")), before)
	})

	t.Run("nothing selected", func(t *testing.T) {
		ctx, _ := PatchCLI(context.Background())
		writeTestSession(t, ctx, home, time.Now().Add(time.Hour))

		err := Run(ctx, "whatsapp", "payment-reminder", "--server", srv.URL, "--amount", "20", "--yes")
		assert.ErrorContains(t, err, "nothing selected")
	})

	t.Run("ids and all", func(t *testing.T) {
		ctx, _ := PatchCLI(context.Background())
		writeTestSession(t, ctx, home, time.Now().Add(time.Hour))

		err := Run(ctx, "whatsapp", "payment-reminder", "--server", srv.URL, "--amount", "20", "--ids", "12", "--all", "--yes")
		assert.ErrorContains(t, err, "--ids and --all cannot be used together")
	})
}

func TestPaymentReminderCmd_TimeoutIsOneFailure(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var calls int32
	srv := newBackend(t, map[string]any{
		"POST /whatsapp/payment-reminder": http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				return
			}
			writeEnvelope(w, api.PaymentReminderResponse{Status: "sent"})
		}),
	})

	ctx, bufs := PatchCLI(context.Background())
	writeTestSession(t, ctx, home, time.Now().Add(time.Hour))

	err := Run(ctx, "whatsapp", "payment-reminder", "--server", srv.URL, "--timeout", "50ms",
		"--amount", "10", "--ids", "12,13,14", "--to", "+23299000000", "--yes")
	assert.NilError(t, err)

	assert.Assert(t, is.Len(srv.Requests(http.MethodPost, "/whatsapp/payment-reminder"), 3))
	out := bufs.Stdout.String()
	assert.Assert(t, is.Regexp(`Successful:\s+2\n`, out))
	assert.Assert(t, is.Regexp(`Failed:\s+1\n`, out))
	assert.Assert(t, is.Contains(bufs.Stderr.String(), "customer 12: failed"))
}

func TestPaymentReminderCmd_AllUsesLoadedCustomers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	srv := newBackend(t, map[string]any{
		"GET /customer": customerList([]api.Customer{
			activeCustomer(1, "Ana", "+2321"),
			activeCustomer(2, "Ibrahim", ""),
		}),
		"POST /whatsapp/payment-reminder": api.PaymentReminderResponse{Status: "sent"},
	})

	ctx, bufs := PatchCLI(context.Background())
	writeTestSession(t, ctx, home, time.Now().Add(time.Hour))

	err := Run(ctx, "whatsapp", "payment-reminder", "--server", srv.URL,
		"--amount", "75", "--all", "--status", "active", "--yes", "--bulk-interval", "1ms")
	assert.NilError(t, err)

	// both customers came with the list, so none is fetched again
	assert.Assert(t, is.Len(srv.Requests(http.MethodGet, "/customer/1"), 0))
	assert.Assert(t, is.Len(srv.Requests(http.MethodPost, "/whatsapp/payment-reminder"), 1))
	assert.Assert(t, is.Contains(bufs.Stdout.String(), "Skipped (no WhatsApp number): 1\n"))

	for _, r := range srv.Requests(http.MethodGet, "/customer") {
		assert.Equal(t, r.Query.Get("isActive"), "true")
	}
}

func TestInactiveReminderCmd(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var inactive []api.Customer
	for i := 1; i <= 3; i++ {
		inactive = append(inactive, activeCustomer(i, fmt.Sprintf("Cust%d", i), ""))
	}
	srv := newBackend(t, map[string]any{
		"GET /customer/inactive":           customerList(inactive),
		"POST /whatsapp/inactive-reminder": api.InactiveReminderResponse{TotalSuccessful: 2, TotalFailed: 1},
	})

	ctx, bufs := PatchCLI(context.Background())
	writeTestSession(t, ctx, home, time.Now().Add(time.Hour))

	err := Run(ctx, "whatsapp", "inactive-reminder", "--server", srv.URL, "--all", "--days", "90", "--yes")
	assert.NilError(t, err)

	for _, r := range srv.Requests(http.MethodGet, "/customer/inactive") {
		assert.Equal(t, r.Query.Get("day"), "90")
	}

	reqs := srv.Requests(http.MethodPost, "/whatsapp/inactive-reminder")
	assert.Assert(t, is.Len(reqs, 1))
	assert.DeepEqual(t, reqs[0].Body, map[string]any{
		"customerIds": []any{float64(1), float64(2), float64(3)},
	})

	out := bufs.Stdout.String()
	assert.Assert(t, is.Contains(out, "Inactive reminders sent.\n"))
	assert.Assert(t, is.Regexp(`Successful:\s+2\n`, out))
	assert.Assert(t, is.Regexp(`Failed:\s+1\n`, out))
}

func TestOrderSummaryCmd(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var customers []api.Customer
	for i := 1; i <= 25; i++ {
		customers = append(customers, activeCustomer(i, fmt.Sprintf("Cust%d", i), ""))
	}
	list := customerList(customers)
	srv := newBackend(t, map[string]any{
		// the first page loads, the request for every id fails
		"GET /customer": http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if size, _ := strconv.Atoi(r.URL.Query().Get("pageSize")); size > 10 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			list(w, r)
		}),
		"POST /whatsapp/order-summary": api.BroadcastResponse{TotalSent: 2},
	})

	t.Run("ids with a negative period", func(t *testing.T) {
		ctx, bufs := PatchCLI(context.Background())
		writeTestSession(t, ctx, home, time.Now().Add(time.Hour))

		err := Run(ctx, "whatsapp", "order-summary", "--server", srv.URL, "--ids", "4,5", "--days", "-3", "--yes")
		assert.NilError(t, err)

		reqs := srv.Requests(http.MethodPost, "/whatsapp/order-summary")
		assert.Assert(t, is.Len(reqs, 1))
		assert.DeepEqual(t, reqs[0].Body, map[string]any{
			"customerIds": []any{float64(4), float64(5)},
			"days":        float64(0),
		})
		assert.Assert(t, is.Regexp(`Sent:\s+2\n`, bufs.Stdout.String()))
	})

	t.Run("incomplete select all", func(t *testing.T) {
		ctx, bufs := PatchCLI(context.Background())
		writeTestSession(t, ctx, home, time.Now().Add(time.Hour))

		err := Run(ctx, "whatsapp", "order-summary", "--server", srv.URL, "--all", "--yes")
		assert.ErrorContains(t, err, "--partial")
		assert.Assert(t, is.Contains(bufs.Stderr.String(), "Failed to load every customer"))
		assert.Assert(t, is.Len(srv.Requests(http.MethodPost, "/whatsapp/order-summary"), 1))
	})

	t.Run("partial select all", func(t *testing.T) {
		ctx, _ := PatchCLI(context.Background())
		writeTestSession(t, ctx, home, time.Now().Add(time.Hour))

		err := Run(ctx, "whatsapp", "order-summary", "--server", srv.URL, "--all", "--partial", "--yes")
		assert.NilError(t, err)

		reqs := srv.Requests(http.MethodPost, "/whatsapp/order-summary")
		assert.Assert(t, is.Len(reqs, 2))
		ids := reqs[1].Body["customerIds"].([]any)
		assert.Equal(t, len(ids), 10)
		assert.Equal(t, reqs[1].Body["days"], float64(defaultSummaryDays))
	})
}
