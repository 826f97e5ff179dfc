package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrAlreadyGenerated is returned when the pipeline reports the document exists for the order.
var ErrAlreadyGenerated = errors.New("document already generated for order")

// Client wraps the generated order pipeline client.
type Client struct {
	api *ClientWithResponses
}

// GenerateOption configures a generation request.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header for the request.
func WithIdempotencyKey(key string) GenerateOption {
	return func(opts *generateOptions) {
		opts.idempotencyKey = strings.TrimSpace(key)
	}
}

// NewPipelineClient instantiates the order pipeline client.
func NewPipelineClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("pipeline base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	api, err := NewClientWithResponses(baseURL, WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("build pipeline client: %w", err)
	}
	return &Client{api: api}, nil
}

// GenerateInvoice asks the pipeline to issue the invoice for an order.
func (c *Client) GenerateInvoice(ctx context.Context, orderID int64, optFns ...GenerateOption) (string, error) {
	if c == nil || c.api == nil {
		return "", errors.New("pipeline client not configured")
	}
	opts := collect(optFns)
	var params *GenerateInvoiceParams
	if opts.idempotencyKey != "" {
		params = &GenerateInvoiceParams{IdempotencyKey: &opts.idempotencyKey}
	}
	resp, err := c.api.GenerateInvoiceWithResponse(ctx, orderID, params)
	if err != nil {
		return "", fmt.Errorf("call pipeline invoice API: %w", err)
	}
	return documentReference(resp)
}

// GenerateShippingLabel asks the pipeline to create the courier label for an order.
func (c *Client) GenerateShippingLabel(ctx context.Context, orderID int64, optFns ...GenerateOption) (string, error) {
	if c == nil || c.api == nil {
		return "", errors.New("pipeline client not configured")
	}
	opts := collect(optFns)
	var params *GenerateShippingLabelParams
	if opts.idempotencyKey != "" {
		params = &GenerateShippingLabelParams{IdempotencyKey: &opts.idempotencyKey}
	}
	resp, err := c.api.GenerateShippingLabelWithResponse(ctx, orderID, params)
	if err != nil {
		return "", fmt.Errorf("call pipeline label API: %w", err)
	}
	return documentReference(resp)
}

func collect(optFns []GenerateOption) generateOptions {
	var opts generateOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	return opts
}

func documentReference(resp *GenerateResponse) (string, error) {
	if resp == nil || resp.StatusCode() == 0 {
		return "", errors.New("pipeline API returned an empty response")
	}
	status := resp.StatusCode()
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		if resp.JSON200 == nil {
			return "", nil
		}
		return resp.JSON200.Reference, nil
	case status == http.StatusConflict:
		return "", fmt.Errorf("%w: %s", ErrAlreadyGenerated, errorMessage(resp.JSON409, resp.Status()))
	case status >= http.StatusBadRequest:
		return "", fmt.Errorf("pipeline API error: %s", errorMessage(firstError(resp), resp.Status()))
	default:
		return "", fmt.Errorf("pipeline API unexpected status: %s", resp.Status())
	}
}

func firstError(resp *GenerateResponse) *Error {
	if resp.JSON4XX != nil {
		return resp.JSON4XX
	}
	if resp.JSON5XX != nil {
		return resp.JSON5XX
	}
	return nil
}

func errorMessage(body *Error, fallback string) string {
	if body == nil {
		return fallback
	}
	if body.Message != nil {
		if msg := strings.TrimSpace(*body.Message); msg != "" {
			return msg
		}
	}
	if body.Code != nil {
		if msg := strings.TrimSpace(*body.Code); msg != "" {
			return msg
		}
	}
	return fallback
}
