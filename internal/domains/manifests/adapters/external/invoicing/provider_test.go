package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invoicingclient "github.com/Apurer/go-gin-fiscal-server/internal/clients/http/invoicing"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

type stubClient struct {
	outcome     invoicingclient.Outcome
	err         error
	calls       int
	configured  bool
	lookupCalls int
}

func (s *stubClient) CancelInvoice(context.Context, int64, string, string) (invoicingclient.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

func (s *stubClient) CollectInvoice(context.Context, int64, string, string, string, time.Time) (invoicingclient.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

func (s *stubClient) CompanyConfigured(context.Context, int64) (bool, error) {
	s.lookupCalls++
	return s.configured, s.err
}

func TestProvider_MapsAcceptedCancellation(t *testing.T) {
	client := &stubClient{outcome: invoicingclient.Outcome{
		Accepted: true,
		Document: &invoicingclient.DocumentRef{SeriesName: "ST", Number: "12"},
	}}
	provider := NewProvider(client)

	res, err := provider.CancelInvoice(context.Background(), ports.CancelRequest{CompanyID: 1, Series: "FCT", Number: "12"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "ST", res.CancelledInvoiceSeries)
	assert.Equal(t, "12", res.CancelledInvoiceNumber)
}

func TestProvider_RejectionsDoNotTripBreaker(t *testing.T) {
	client := &stubClient{outcome: invoicingclient.Outcome{Message: "already collected"}}
	provider := NewProvider(client, WithBreaker(2, time.Minute))

	for i := 0; i < 5; i++ {
		res, err := provider.CollectInvoice(context.Background(), ports.CollectRequest{CompanyID: 1})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "already collected", res.Error)
	}
	assert.Equal(t, 5, client.calls)
}

func TestProvider_BreakerOpensOnTransportFailures(t *testing.T) {
	client := &stubClient{err: errors.New("dial tcp: connection refused")}
	provider := NewProvider(client, WithBreaker(2, time.Minute))

	for i := 0; i < 2; i++ {
		_, err := provider.CancelInvoice(context.Background(), ports.CancelRequest{CompanyID: 1})
		require.ErrorContains(t, err, "connection refused")
	}
	_, err := provider.CancelInvoice(context.Background(), ports.CancelRequest{CompanyID: 1})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, client.calls)
}

func TestKeyring_CachesAnswers(t *testing.T) {
	client := &stubClient{configured: true}
	keyring := NewKeyring(client, time.Minute)
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	keyring.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := keyring.HasCredentials(context.Background(), 4)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, client.lookupCalls)

	now = now.Add(2 * time.Minute)
	_, err := keyring.HasCredentials(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 2, client.lookupCalls)
}

func TestProvider_RateLimitHonoursContext(t *testing.T) {
	client := &stubClient{outcome: invoicingclient.Outcome{Accepted: true}}
	provider := NewProvider(client, WithRateLimit(1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := provider.CollectInvoice(ctx, ports.CollectRequest{CompanyID: 1})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, client.calls)

	res, err := provider.CollectInvoice(context.Background(), ports.CollectRequest{CompanyID: 1})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, client.calls)
}
