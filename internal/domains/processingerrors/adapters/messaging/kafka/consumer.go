// Package kafka feeds order pipeline failure events into the processing error tracker.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
)

const (
	DefaultTopic   = "order-pipeline.failures"
	DefaultGroupID = "fiscal-processing-errors"

	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second
)

// FailureEvent is the payload the order pipeline publishes when a step fails.
type FailureEvent struct {
	OrderID    int64  `json:"orderId"`
	Operation  string `json:"operation"`
	Message    string `json:"message"`
	MaxRetries int    `json:"maxRetries,omitempty"`
}

// MessageReader is the subset of *kafka.Reader the consumer drives.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config selects the brokers and subscription.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewReader builds a consumer-group reader for the failure topic.
func NewReader(cfg Config) *kafka.Reader {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	group := cfg.GroupID
	if group == "" {
		group = DefaultGroupID
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  time.Second,
	})
}

// Consumer records one processing error per failure event.
type Consumer struct {
	reader         MessageReader
	tracker        ports.Tracker
	logger         *slog.Logger
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option tunes the consumer.
type Option func(*Consumer)

// WithBackoff bounds the exponential wait between attempts after a failed fetch or store.
func WithBackoff(initial, maxWait time.Duration) Option {
	return func(c *Consumer) {
		if initial > 0 {
			c.initialBackoff = initial
		}
		if maxWait >= c.initialBackoff {
			c.maxBackoff = maxWait
		}
	}
}

func NewConsumer(reader MessageReader, tracker ports.Tracker, logger *slog.Logger, opts ...Option) *Consumer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Consumer{
		reader:         reader,
		tracker:        tracker,
		logger:         logger,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Run consumes until ctx is cancelled. Offsets are committed once the error is stored, or
// when the message can never be stored. A transient store failure is retried on the same
// message until it succeeds or ctx ends, so a later commit never skips past it.
func (c *Consumer) Run(ctx context.Context) error {
	fetchBackoff := backoff.WithContext(c.newBackoff(), ctx)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			wait := fetchBackoff.NextBackOff()
			c.logger.Error("failed to fetch failure event",
				slog.String("error", err.Error()),
				slog.Duration("retryIn", wait))
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}
		fetchBackoff.Reset()
		if err := c.store(ctx, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit failure event", slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// store only returns an error once ctx is done; the offset then stays uncommitted.
func (c *Consumer) store(ctx context.Context, msg kafka.Message) error {
	notify := func(err error, wait time.Duration) {
		c.logger.Error("failed to record processing error",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
			slog.Duration("retryIn", wait))
	}
	return backoff.RetryNotify(func() error {
		return c.handle(ctx, msg)
	}, backoff.WithContext(c.newBackoff(), ctx), notify)
}

func (c *Consumer) newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = c.maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func sleep(ctx context.Context, wait time.Duration) error {
	if wait == backoff.Stop {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	var event FailureEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Warn("dropping undecodable failure event", slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
		return nil
	}
	recorded, err := c.tracker.Record(ctx, types.RecordInput{
		OrderID:    event.OrderID,
		Operation:  domain.Operation(strings.TrimSpace(event.Operation)),
		Message:    event.Message,
		MaxRetries: event.MaxRetries,
	})
	if errors.Is(err, application.ErrInvalidInput) {
		c.logger.Warn("dropping invalid failure event",
			slog.Int64("orderId", event.OrderID),
			slog.String("operation", event.Operation),
			slog.String("error", err.Error()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("record order %d: %w", event.OrderID, err)
	}
	c.logger.Info("processing error recorded from pipeline event",
		slog.Int64("id", recorded.ID),
		slog.Int64("orderId", recorded.OrderID),
		slog.String("operation", string(recorded.Operation)))
	return nil
}
