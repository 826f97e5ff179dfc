package pipeline

import (
	"context"
	"errors"
	"fmt"

	pipelineclient "github.com/Apurer/go-gin-fiscal-server/internal/clients/http/pipeline"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
)

// ErrNotConfigured is returned by Disabled for every run.
var ErrNotConfigured = errors.New("order pipeline is not configured")

// Generator is the part of the pipeline client the runner needs.
type Generator interface {
	GenerateInvoice(ctx context.Context, orderID int64, opts ...pipelineclient.GenerateOption) (string, error)
	GenerateShippingLabel(ctx context.Context, orderID int64, opts ...pipelineclient.GenerateOption) (string, error)
}

// Runner re-invokes invoice and label generation through the order pipeline API.
type Runner struct {
	client Generator
}

func NewRunner(client Generator) *Runner {
	return &Runner{client: client}
}

// Run treats a document that already exists as success.
func (r *Runner) Run(ctx context.Context, orderID int64, op domain.Operation) error {
	if r == nil || r.client == nil {
		return ErrNotConfigured
	}
	key := pipelineclient.WithIdempotencyKey(IdempotencyKey(orderID, op))
	var err error
	switch op {
	case domain.OperationInvoice:
		_, err = r.client.GenerateInvoice(ctx, orderID, key)
	case domain.OperationShippingLabel:
		_, err = r.client.GenerateShippingLabel(ctx, orderID, key)
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidOperation, op)
	}
	if errors.Is(err, pipelineclient.ErrAlreadyGenerated) {
		return nil
	}
	return err
}

// IdempotencyKey is stable per order and operation so repeated retries never issue two documents.
func IdempotencyKey(orderID int64, op domain.Operation) string {
	return fmt.Sprintf("%s-%d", op, orderID)
}

// Disabled fails every run; used when no pipeline URL is configured.
type Disabled struct{}

func (Disabled) Run(context.Context, int64, domain.Operation) error { return ErrNotConfigured }

var (
	_ ports.OperationRunner = (*Runner)(nil)
	_ ports.OperationRunner = Disabled{}
)
