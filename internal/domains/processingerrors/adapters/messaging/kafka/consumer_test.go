package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/external/pipeline"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/memory"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
)

type fakeReader struct {
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

type failingTracker struct {
	ports.Tracker
}

func (failingTracker) Record(context.Context, types.RecordInput) (*domain.ProcessingError, error) {
	return nil, errors.New("database unavailable")
}

// flakyTracker fails the first failures Record calls, then delegates.
type flakyTracker struct {
	ports.Tracker
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyTracker) Record(ctx context.Context, input types.RecordInput) (*domain.ProcessingError, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		return nil, errors.New("database unavailable")
	}
	return f.Tracker.Record(ctx, input)
}

// flakyFetchReader returns fetch errors before serving its queue.
type flakyFetchReader struct {
	fakeReader
	failures int
	fetches  int
}

func (r *flakyFetchReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.fetches++
	if r.fetches <= r.failures {
		return kafka.Message{}, errors.New("broker not available")
	}
	return r.fakeReader.FetchMessage(ctx)
}

func fastBackoff() Option {
	return WithBackoff(time.Millisecond, 5*time.Millisecond)
}

func TestConsumer_RecordsEventsAndCommits(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: []byte(`{"orderId":6001,"operation":"invoice","message":"timeout"}`)},
		{Offset: 2, Value: []byte(`{"orderId":6002,"operation":"shipping_label","message":"courier down","maxRetries":5}`)},
	}}
	tracker := application.NewTracker(memory.NewRepository(), pipeline.Disabled{})

	require.NoError(t, NewConsumer(reader, tracker, nil).Run(context.Background()))

	assert.Equal(t, []int64{1, 2}, reader.committed)
	recorded, err := tracker.List(context.Background(), types.ListFilter{})
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	byOrder := map[int64]*domain.ProcessingError{}
	for _, e := range recorded {
		byOrder[e.OrderID] = e
	}
	assert.Equal(t, domain.OperationInvoice, byOrder[6001].Operation)
	assert.Equal(t, domain.DefaultMaxRetries, byOrder[6001].MaxRetries)
	assert.Equal(t, 5, byOrder[6002].MaxRetries)
}

func TestConsumer_CommitsPoisonMessages(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 7, Value: []byte(`not json`)},
		{Offset: 8, Value: []byte(`{"orderId":6003,"operation":"refund"}`)},
	}}
	tracker := application.NewTracker(memory.NewRepository(), pipeline.Disabled{})

	require.NoError(t, NewConsumer(reader, tracker, nil).Run(context.Background()))

	assert.Equal(t, []int64{7, 8}, reader.committed)
	recorded, err := tracker.List(context.Background(), types.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, recorded)
}

func TestConsumer_LeavesOffsetWhileStoreKeepsFailing(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 3, Value: []byte(`{"orderId":6004,"operation":"invoice"}`)},
		{Offset: 4, Value: []byte(`{"orderId":6005,"operation":"invoice"}`)},
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewConsumer(reader, failingTracker{}, nil, fastBackoff()).Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Empty(t, reader.committed)
	// The failing message is retried in place; the next one is never fetched.
	assert.Len(t, reader.queue, 1)
}

func TestConsumer_RetriesStoreOnSameMessage(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 3, Value: []byte(`{"orderId":6004,"operation":"invoice"}`)},
		{Offset: 4, Value: []byte(`{"orderId":6005,"operation":"invoice"}`)},
	}}
	tracker := &flakyTracker{Tracker: application.NewTracker(memory.NewRepository(), pipeline.Disabled{}), failures: 1}

	require.NoError(t, NewConsumer(reader, tracker, nil, fastBackoff()).Run(context.Background()))

	assert.Equal(t, []int64{3, 4}, reader.committed)
	assert.Equal(t, 3, tracker.calls)
	recorded, err := tracker.List(context.Background(), types.ListFilter{})
	require.NoError(t, err)
	require.Len(t, recorded, 2)
}

func TestConsumer_BacksOffOnFetchErrors(t *testing.T) {
	reader := &flakyFetchReader{
		fakeReader: fakeReader{queue: []kafka.Message{
			{Offset: 9, Value: []byte(`{"orderId":6006,"operation":"shipping_label"}`)},
		}},
		failures: 3,
	}
	tracker := application.NewTracker(memory.NewRepository(), pipeline.Disabled{})

	require.NoError(t, NewConsumer(reader, tracker, nil, fastBackoff()).Run(context.Background()))

	assert.Equal(t, []int64{9}, reader.committed)
	assert.Equal(t, 5, reader.fetches)
}

func TestConsumer_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader := &blockingReader{}

	err := NewConsumer(reader, failingTracker{}, nil).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

type blockingReader struct{ fakeReader }

func (*blockingReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}
