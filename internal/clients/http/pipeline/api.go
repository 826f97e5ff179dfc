// Package pipeline is a typed client for the order pipeline API. The request plumbing
// follows the oapi-codegen client layout; both generate operations share GenerateResponse.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// Document defines model for Document.
type Document struct {
	// Reference Identifier of the generated invoice or label.
	Reference string `json:"reference"`
}

// Error defines model for Error.
type Error struct {
	Code    *string `json:"code,omitempty"`
	Message *string `json:"message,omitempty"`
}

// GenerateInvoiceParams defines parameters for GenerateInvoice.
type GenerateInvoiceParams struct {
	// IdempotencyKey Deduplicates generation attempts.
	IdempotencyKey *string `json:"Idempotency-Key,omitempty"`
}

// GenerateShippingLabelParams defines parameters for GenerateShippingLabel.
type GenerateShippingLabelParams struct {
	// IdempotencyKey Deduplicates generation attempts.
	IdempotencyKey *string `json:"Idempotency-Key,omitempty"`
}

// RequestEditorFn  is the function signature for the RequestEditor callback function
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Doer performs HTTP requests.
//
// The standard http.Client implements this interface.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// apiClient which conforms to the OpenAPI3 specification for this service.
type apiClient struct {
	// The endpoint of the server conforming to this interface, with scheme,
	// https://api.deepmap.com for example. This can contain a path relative
	// to the server, such as https://api.deepmap.com/dev-test, and all the
	// paths in the swagger spec will be appended to the server.
	Server string

	// Doer for performing requests, typically a *http.Client with any
	// customized settings, such as certificate chains.
	Client HttpRequestDoer

	// A list of callbacks for modifying requests which are generated before sending over
	// the network.
	RequestEditors []RequestEditorFn
}

// ClientOption allows setting custom parameters during construction
type ClientOption func(*apiClient) error

// Creates a new Client, with reasonable defaults
func NewClient(server string, opts ...ClientOption) (*apiClient, error) {
	// create a client with sane default values
	client := apiClient{
		Server: server,
	}
	// mutate client and add all optional params
	for _, o := range opts {
		if err := o(&client); err != nil {
			return nil, err
		}
	}
	// ensure the server URL always has a trailing slash
	if !strings.HasSuffix(client.Server, "/") {
		client.Server += "/"
	}
	// create httpClient, if not already present
	if client.Client == nil {
		client.Client = &http.Client{}
	}
	return &client, nil
}

// WithHTTPClient allows overriding the default Doer, which is
// automatically created using http.Client. This is useful for tests.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *apiClient) error {
		c.Client = doer
		return nil
	}
}

// WithRequestEditorFn allows setting up a callback function, which will be
// called right before sending the request. This can be used to mutate the request.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *apiClient) error {
		c.RequestEditors = append(c.RequestEditors, fn)
		return nil
	}
}

// The interface specification for the client above.
type ClientInterface interface {
	// GenerateInvoice request
	GenerateInvoice(ctx context.Context, orderId int64, params *GenerateInvoiceParams, reqEditors ...RequestEditorFn) (*http.Response, error)

	// GenerateShippingLabel request
	GenerateShippingLabel(ctx context.Context, orderId int64, params *GenerateShippingLabelParams, reqEditors ...RequestEditorFn) (*http.Response, error)
}

func (c *apiClient) GenerateInvoice(ctx context.Context, orderId int64, params *GenerateInvoiceParams, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewGenerateInvoiceRequest(c.Server, orderId, params)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	if err := c.applyEditors(ctx, req, reqEditors); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

func (c *apiClient) GenerateShippingLabel(ctx context.Context, orderId int64, params *GenerateShippingLabelParams, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewGenerateShippingLabelRequest(c.Server, orderId, params)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	if err := c.applyEditors(ctx, req, reqEditors); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

// NewGenerateInvoiceRequest generates requests for GenerateInvoice
func NewGenerateInvoiceRequest(server string, orderId int64, params *GenerateInvoiceParams) (*http.Request, error) {
	var idempotencyKey *string
	if params != nil {
		idempotencyKey = params.IdempotencyKey
	}
	return newGenerateRequest(server, "/orders/%s/invoice", orderId, idempotencyKey)
}

// NewGenerateShippingLabelRequest generates requests for GenerateShippingLabel
func NewGenerateShippingLabelRequest(server string, orderId int64, params *GenerateShippingLabelParams) (*http.Request, error) {
	var idempotencyKey *string
	if params != nil {
		idempotencyKey = params.IdempotencyKey
	}
	return newGenerateRequest(server, "/orders/%s/shipping-label", orderId, idempotencyKey)
}

func newGenerateRequest(server, pathFormat string, orderId int64, idempotencyKey *string) (*http.Request, error) {
	var err error

	var pathParam0 string

	pathParam0, err = runtime.StyleParamWithLocation("simple", false, "orderId", runtime.ParamLocationPath, orderId)
	if err != nil {
		return nil, err
	}

	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, err
	}

	operationPath := fmt.Sprintf(pathFormat, pathParam0)
	if operationPath[0] == '/' {
		operationPath = "." + operationPath
	}

	queryURL, err := serverURL.Parse(operationPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", queryURL.String(), nil)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != nil {
		var headerParam0 string

		headerParam0, err = runtime.StyleParamWithLocation("simple", false, "Idempotency-Key", runtime.ParamLocationHeader, *idempotencyKey)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Idempotency-Key", headerParam0)
	}

	return req, nil
}

func (c *apiClient) applyEditors(ctx context.Context, req *http.Request, additionalEditors []RequestEditorFn) error {
	for _, r := range c.RequestEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	for _, r := range additionalEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// ClientWithResponses builds on ClientInterface to offer response payloads
type ClientWithResponses struct {
	ClientInterface
}

// NewClientWithResponses creates a new ClientWithResponses, which wraps
// Client with return type handling
func NewClientWithResponses(server string, opts ...ClientOption) (*ClientWithResponses, error) {
	client, err := NewClient(server, opts...)
	if err != nil {
		return nil, err
	}
	return &ClientWithResponses{client}, nil
}

// ClientWithResponsesInterface is the interface specification for the client with responses above.
type ClientWithResponsesInterface interface {
	// GenerateInvoiceWithResponse request
	GenerateInvoiceWithResponse(ctx context.Context, orderId int64, params *GenerateInvoiceParams, reqEditors ...RequestEditorFn) (*GenerateResponse, error)

	// GenerateShippingLabelWithResponse request
	GenerateShippingLabelWithResponse(ctx context.Context, orderId int64, params *GenerateShippingLabelParams, reqEditors ...RequestEditorFn) (*GenerateResponse, error)
}

type GenerateResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *Document
	JSON409      *Error
	JSON4XX      *Error
	JSON5XX      *Error
}

// Status returns HTTPResponse.Status
func (r GenerateResponse) Status() string {
	if r.HTTPResponse != nil {
		return r.HTTPResponse.Status
	}
	return http.StatusText(0)
}

// StatusCode returns HTTPResponse.StatusCode
func (r GenerateResponse) StatusCode() int {
	if r.HTTPResponse != nil {
		return r.HTTPResponse.StatusCode
	}
	return 0
}

// GenerateInvoiceWithResponse request returning *GenerateResponse
func (c *ClientWithResponses) GenerateInvoiceWithResponse(ctx context.Context, orderId int64, params *GenerateInvoiceParams, reqEditors ...RequestEditorFn) (*GenerateResponse, error) {
	rsp, err := c.GenerateInvoice(ctx, orderId, params, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseGenerateResponse(rsp)
}

// GenerateShippingLabelWithResponse request returning *GenerateResponse
func (c *ClientWithResponses) GenerateShippingLabelWithResponse(ctx context.Context, orderId int64, params *GenerateShippingLabelParams, reqEditors ...RequestEditorFn) (*GenerateResponse, error) {
	rsp, err := c.GenerateShippingLabel(ctx, orderId, params, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseGenerateResponse(rsp)
}

// ParseGenerateResponse parses an HTTP response from a Generate*WithResponse call
func ParseGenerateResponse(rsp *http.Response) (*GenerateResponse, error) {
	bodyBytes, err := io.ReadAll(rsp.Body)
	defer func() { _ = rsp.Body.Close() }()
	if err != nil {
		return nil, err
	}

	response := &GenerateResponse{
		Body:         bodyBytes,
		HTTPResponse: rsp,
	}

	switch {
	case strings.Contains(rsp.Header.Get("Content-Type"), "json") && (rsp.StatusCode == 200 || rsp.StatusCode == 201):
		var dest Document
		if err := json.Unmarshal(bodyBytes, &dest); err != nil {
			return nil, err
		}
		response.JSON200 = &dest

	case strings.Contains(rsp.Header.Get("Content-Type"), "json") && rsp.StatusCode == 409:
		var dest Error
		if err := json.Unmarshal(bodyBytes, &dest); err != nil {
			return nil, err
		}
		response.JSON409 = &dest

	case strings.Contains(rsp.Header.Get("Content-Type"), "json") && rsp.StatusCode/100 == 4:
		var dest Error
		if err := json.Unmarshal(bodyBytes, &dest); err != nil {
			return nil, err
		}
		response.JSON4XX = &dest

	case strings.Contains(rsp.Header.Get("Content-Type"), "json") && rsp.StatusCode/100 == 5:
		var dest Error
		if err := json.Unmarshal(bodyBytes, &dest); err != nil {
			return nil, err
		}
		response.JSON5XX = &dest

	}

	return response, nil
}
