package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

// Service orchestrates the manifest lifecycle and the two fiscal flows.
type Service struct {
	repo           ports.Repository
	provider       ports.InvoicingProvider
	credentials    ports.CompanyCredentials
	lock           ports.RunLock
	now            func() time.Time
	callTimeout    time.Duration
	collectionType string
	processorOpts  []ProcessorOption

	processor  *Processor
	stornare   *StornareOperation
	collection *CollectionOperation
}

// Option customises the service wiring.
type Option func(*Service)

// WithCredentials checks per-company provider configuration before each call.
func WithCredentials(credentials ports.CompanyCredentials) Option {
	return func(s *Service) {
		s.credentials = credentials
	}
}

// WithRunLock adds a cross-process lock around processing runs.
func WithRunLock(lock ports.RunLock) Option {
	return func(s *Service) {
		s.lock = lock
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithCallTimeout bounds every provider call.
func WithCallTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.callTimeout = timeout
	}
}

// WithClaimTTL sets how long a processing run may go without progress before another
// run may take the manifest over.
func WithClaimTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.processorOpts = append(s.processorOpts, WithProcessorClaimTTL(ttl))
	}
}

// WithCompletionRetry sets how often the end-of-run status write is attempted.
func WithCompletionRetry(attempts int, delay time.Duration) Option {
	return func(s *Service) {
		s.processorOpts = append(s.processorOpts, WithProcessorCompleteRetry(attempts, delay))
	}
}

// WithCollectionType overrides the collection kind sent with payment confirmations.
func WithCollectionType(collectionType string) Option {
	return func(s *Service) {
		s.collectionType = collectionType
	}
}

// NewService wires the manifests service with its dependencies.
func NewService(repo ports.Repository, provider ports.InvoicingProvider, opts ...Option) *Service {
	s := &Service{repo: repo, provider: provider, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.processor = NewProcessor(repo, s.credentials, s.lock, s.now, s.callTimeout, s.processorOpts...)
	s.stornare = NewStornareOperation(provider)
	s.collection = NewCollectionOperation(provider, s.collectionType)
	return s
}

// GetManifest loads a manifest with items and invoices.
func (s *Service) GetManifest(ctx context.Context, input types.ManifestIdentifier) (*domain.Manifest, error) {
	manifest, err := s.repo.GetManifest(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return manifest, nil
}

// RequestVerification parks a draft manifest for a second look.
func (s *Service) RequestVerification(ctx context.Context, input types.ManifestIdentifier) (*domain.Manifest, error) {
	manifest, err := s.repo.GetManifest(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := manifest.RequestVerification(); err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.UpdateLifecycle(ctx, manifest); err != nil {
		return nil, mapError(err)
	}
	return manifest, nil
}

// Confirm approves a draft or pending manifest for processing.
func (s *Service) Confirm(ctx context.Context, input types.ConfirmManifestInput) (*domain.Manifest, error) {
	manifest, err := s.repo.GetManifest(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := manifest.Confirm(input.Actor, s.now()); err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.UpdateLifecycle(ctx, manifest); err != nil {
		return nil, mapError(err)
	}
	return manifest, nil
}

// Process runs the flow matching the manifest kind.
func (s *Service) Process(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error) {
	manifest, err := s.repo.GetManifest(ctx, input.ManifestID)
	if err != nil {
		return nil, mapError(err)
	}
	switch manifest.Kind {
	case domain.KindReturn:
		return s.ProcessReturn(ctx, input)
	case domain.KindDelivery:
		return s.ProcessDelivery(ctx, input)
	default:
		return nil, mapError(fmt.Errorf("%w: %q", domain.ErrInvalidKind, manifest.Kind))
	}
}

// ProcessReturn cancels the invoices of a confirmed return manifest.
func (s *Service) ProcessReturn(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error) {
	return s.run(ctx, input, s.stornare)
}

// ProcessDelivery marks the invoices of a confirmed delivery manifest as paid.
func (s *Service) ProcessDelivery(ctx context.Context, input types.ProcessManifestInput) (*types.BatchResult, error) {
	return s.run(ctx, input, s.collection)
}

// ListAudit returns the audit trail written while settling the manifest.
func (s *Service) ListAudit(ctx context.Context, input types.ManifestIdentifier) ([]domain.AuditEntry, error) {
	if _, err := s.repo.GetManifest(ctx, input.ID); err != nil {
		return nil, mapError(err)
	}
	entries, err := s.repo.ListAudit(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return entries, nil
}

func (s *Service) run(ctx context.Context, input types.ProcessManifestInput, op ItemOperation) (*types.BatchResult, error) {
	result, err := s.processor.Run(ctx, input, op)
	if err != nil && !errors.Is(err, ErrPrecondition) {
		return result, mapError(err)
	}
	return result, err
}

var _ ports.Service = (*Service)(nil)
