package invoicing

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.4.1 --config=oapi-codegen.yaml ../../../../api/invoicing.yaml

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// DefaultTimeout bounds every provider request when the caller does not supply an http.Client.
const DefaultTimeout = 20 * time.Second

// Outcome is the provider verdict on a fiscal document operation.
// Accepted is false when the provider answered with a 4xx; transport failures and 5xx are errors.
type Outcome struct {
	Accepted bool
	Message  string
	Document *DocumentRef
}

// Client wraps the generated invoicing API client with fiscal helpers.
type Client struct {
	api *ClientWithResponses
}

// NewInvoicingClient instantiates the client; apiKey is sent as a bearer token when set.
func NewInvoicingClient(baseURL, apiKey string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("invoicing base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	opts := []ClientOption{WithHTTPClient(httpClient)}
	if key := strings.TrimSpace(apiKey); key != "" {
		opts = append(opts, WithRequestEditorFn(func(_ context.Context, req *http.Request) error {
			req.Header.Set("Authorization", "Bearer "+key)
			return nil
		}))
	}
	api, err := NewClientWithResponses(baseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("build invoicing client: %w", err)
	}
	return &Client{api: api}, nil
}

// CancelInvoice issues the storno for series+number.
func (c *Client) CancelInvoice(ctx context.Context, companyID int64, series, number string) (Outcome, error) {
	if err := c.ready(); err != nil {
		return Outcome{}, err
	}
	resp, err := c.api.CancelInvoiceWithResponse(ctx, companyID, series, number)
	if err != nil {
		return Outcome{}, fmt.Errorf("call invoicing API: %w", err)
	}
	return documentOutcome(resp.StatusCode(), resp.Status(), resp.JSON200, resp.JSON4XX, resp.JSON5XX)
}

// CollectInvoice books a collection of the given type on the invoice.
func (c *Client) CollectInvoice(ctx context.Context, companyID int64, series, number, collectionType string, date time.Time) (Outcome, error) {
	if err := c.ready(); err != nil {
		return Outcome{}, err
	}
	body := CollectInvoiceJSONRequestBody{
		Type:         collectionType,
		DocumentDate: openapi_types.Date{Time: date},
	}
	resp, err := c.api.CollectInvoiceWithResponse(ctx, companyID, series, number, body)
	if err != nil {
		return Outcome{}, fmt.Errorf("call invoicing API: %w", err)
	}
	return documentOutcome(resp.StatusCode(), resp.Status(), resp.JSON200, resp.JSON4XX, resp.JSON5XX)
}

// CompanyConfigured reports whether the provider holds credentials for the company.
func (c *Client) CompanyConfigured(ctx context.Context, companyID int64) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	resp, err := c.api.GetCompanyWithResponse(ctx, companyID)
	if err != nil {
		return false, fmt.Errorf("call invoicing API: %w", err)
	}
	switch status := resp.StatusCode(); {
	case status == http.StatusOK && resp.JSON200 != nil:
		return resp.JSON200.Configured, nil
	case status == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("invoicing API unexpected status: %s", errorMessage(resp.JSON5XX, resp.Status()))
	}
}

func (c *Client) ready() error {
	if c == nil || c.api == nil {
		return errors.New("invoicing client not configured")
	}
	return nil
}

func documentOutcome(status int, statusText string, ok *DocumentResponse, clientErr, serverErr *Error) (Outcome, error) {
	switch {
	case status == 0:
		return Outcome{}, errors.New("invoicing API returned an empty response")
	case status == http.StatusOK && ok != nil:
		if ok.Status != 0 && ok.Status != http.StatusOK {
			return Outcome{Message: stringValue(ok.StatusMessage, statusText)}, nil
		}
		return Outcome{Accepted: true, Message: stringValue(ok.StatusMessage, ""), Document: ok.Data}, nil
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return Outcome{Message: errorMessage(clientErr, statusText)}, nil
	case status >= http.StatusInternalServerError:
		return Outcome{}, fmt.Errorf("invoicing API error: %s", errorMessage(serverErr, statusText))
	default:
		return Outcome{}, fmt.Errorf("invoicing API unexpected status: %s", statusText)
	}
}

func errorMessage(body *Error, fallback string) string {
	if body == nil {
		return fallback
	}
	if msg := stringValue(body.StatusMessage, ""); msg != "" {
		return msg
	}
	return stringValue(body.Message, fallback)
}

func stringValue(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	if v := strings.TrimSpace(*s); v != "" {
		return v
	}
	return fallback
}
