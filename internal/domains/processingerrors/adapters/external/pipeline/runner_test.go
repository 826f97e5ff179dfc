package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipelineclient "github.com/Apurer/go-gin-fiscal-server/internal/clients/http/pipeline"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
)

type fakeGenerator struct {
	invoiceErr error
	labelErr   error
	calls      []string
}

func (f *fakeGenerator) GenerateInvoice(_ context.Context, orderID int64, _ ...pipelineclient.GenerateOption) (string, error) {
	f.calls = append(f.calls, IdempotencyKey(orderID, domain.OperationInvoice))
	return "FCT-1", f.invoiceErr
}

func (f *fakeGenerator) GenerateShippingLabel(_ context.Context, orderID int64, _ ...pipelineclient.GenerateOption) (string, error) {
	f.calls = append(f.calls, IdempotencyKey(orderID, domain.OperationShippingLabel))
	return "AWB-1", f.labelErr
}

func TestRunner_DispatchesOnOperation(t *testing.T) {
	gen := &fakeGenerator{}
	runner := NewRunner(gen)

	require.NoError(t, runner.Run(context.Background(), 5, domain.OperationInvoice))
	require.NoError(t, runner.Run(context.Background(), 6, domain.OperationShippingLabel))
	assert.Equal(t, []string{"invoice-5", "shipping_label-6"}, gen.calls)

	assert.ErrorIs(t, runner.Run(context.Background(), 7, domain.Operation("refund")), domain.ErrInvalidOperation)
}

func TestRunner_AlreadyGeneratedIsSuccess(t *testing.T) {
	gen := &fakeGenerator{
		invoiceErr: pipelineclient.ErrAlreadyGenerated,
		labelErr:   errors.New("courier down"),
	}
	runner := NewRunner(gen)

	assert.NoError(t, runner.Run(context.Background(), 5, domain.OperationInvoice))
	assert.EqualError(t, runner.Run(context.Background(), 5, domain.OperationShippingLabel), "courier down")
}

func TestDisabled(t *testing.T) {
	assert.ErrorIs(t, Disabled{}.Run(context.Background(), 1, domain.OperationInvoice), ErrNotConfigured)
}
