package invoicing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewInvoicingClient(srv.URL, "secret", srv.Client())
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestCancelInvoice_Accepted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/companies/7/invoices/FCT/0042/cancel", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"status": 200,
			"data":   map[string]string{"seriesName": "ST", "number": "0042"},
		})
	})

	out, err := client.CancelInvoice(context.Background(), 7, "FCT", "0042")
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.NotNil(t, out.Document)
	assert.Equal(t, "ST", out.Document.SeriesName)
}

func TestCancelInvoice_RejectedByProvider(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "statusMessage": "Factura nu poate fi stornata"})
	})

	out, err := client.CancelInvoice(context.Background(), 7, "FCT", "1")
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, "Factura nu poate fi stornata", out.Message)
}

func TestCancelInvoice_StatusInBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": 409, "statusMessage": "already cancelled"})
	})

	out, err := client.CancelInvoice(context.Background(), 7, "FCT", "1")
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, "already cancelled", out.Message)
}

func TestCollectInvoice_SendsTypeAndDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies/7/invoices/FCT/9/collect", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ramburs", body["type"])
		assert.Equal(t, "2024-06-11", body["documentDate"])
		writeJSON(w, http.StatusOK, map[string]any{"status": 200})
	})

	out, err := client.CollectInvoice(context.Background(), 7, "FCT", "9", "Ramburs", time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, out.Accepted)
}

func TestCollectInvoice_ServerErrorIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]any{"message": "upstream down"})
	})

	_, err := client.CollectInvoice(context.Background(), 7, "FCT", "9", "Ramburs", time.Now())
	require.ErrorContains(t, err, "upstream down")
}

func TestCompanyConfigured(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/companies/1":
			writeJSON(w, http.StatusOK, map[string]any{"id": 1, "configured": true})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "unknown company"})
		}
	})

	ok, err := client.CompanyConfigured(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.CompanyConfigured(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewInvoicingClientRequiresBaseURL(t *testing.T) {
	_, err := NewInvoicingClient(" ", "", nil)
	require.Error(t, err)
}
