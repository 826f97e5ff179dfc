package invoicing

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The generated client must stay in step with the contract it is generated from.
func TestGeneratedClientMatchesContract(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "api", "invoicing.yaml"))
	require.NoError(t, err)
	contract := string(raw)

	body := CollectInvoiceJSONRequestBody{Type: "Ramburs", DocumentDate: openapi_types.Date{Time: time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)}}
	cases := []struct {
		operationID string
		template    string
		method      string
		build       func() (*http.Request, error)
	}{
		{"getCompany", "/companies/{companyId}", http.MethodGet, func() (*http.Request, error) {
			return NewGetCompanyRequest("http://provider", 7)
		}},
		{"cancelInvoice", "/companies/{companyId}/invoices/{seriesName}/{number}/cancel", http.MethodPut, func() (*http.Request, error) {
			return NewCancelInvoiceRequest("http://provider", 7, "FCT", "0042")
		}},
		{"collectInvoice", "/companies/{companyId}/invoices/{seriesName}/{number}/collect", http.MethodPut, func() (*http.Request, error) {
			return NewCollectInvoiceRequest("http://provider", 7, "FCT", "0042", body)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.operationID, func(t *testing.T) {
			assert.Contains(t, contract, "operationId: "+tc.operationID)
			assert.Contains(t, contract, "  "+tc.template+":")
			assert.Contains(t, contract, "    "+strings.ToLower(tc.method)+":")

			req, err := tc.build()
			require.NoError(t, err)
			assert.Equal(t, tc.method, req.Method)
			want := strings.NewReplacer("{companyId}", "7", "{seriesName}", "FCT", "{number}", "0042").Replace(tc.template)
			assert.Equal(t, want, req.URL.Path)
		})
	}
}
