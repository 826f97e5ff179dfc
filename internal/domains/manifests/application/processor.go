package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/domain"
	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

const (
	// DefaultCallTimeout bounds a single provider call when none is configured.
	DefaultCallTimeout = 20 * time.Second
	// DefaultClaimTTL is how long a processing claim may go without an item commit
	// before another run may take the manifest over.
	DefaultClaimTTL = 10 * time.Minute

	defaultCompleteAttempts = 3
	defaultCompleteDelay    = 500 * time.Millisecond
)

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeSkipped
	outcomeError
)

type itemReport struct {
	outcome outcome
	err     error
	// invoice is the settled invoice after a successful commit.
	invoice *domain.Invoice
}

// Processor drives one ItemOperation over every item of a confirmed manifest.
// Items are handled one at a time; a failing item never stops the run.
type Processor struct {
	repo             ports.Repository
	credentials      ports.CompanyCredentials
	lock             ports.RunLock
	now              func() time.Time
	callTimeout      time.Duration
	claimTTL         time.Duration
	completeAttempts int
	completeDelay    time.Duration
}

// ProcessorOption tunes run recovery.
type ProcessorOption func(*Processor)

// WithProcessorClaimTTL sets how long a processing claim stays exclusive without progress.
func WithProcessorClaimTTL(ttl time.Duration) ProcessorOption {
	return func(p *Processor) {
		if ttl > 0 {
			p.claimTTL = ttl
		}
	}
}

// WithProcessorCompleteRetry sets how often completing the manifest is attempted.
func WithProcessorCompleteRetry(attempts int, delay time.Duration) ProcessorOption {
	return func(p *Processor) {
		if attempts > 0 {
			p.completeAttempts = attempts
		}
		if delay >= 0 {
			p.completeDelay = delay
		}
	}
}

// NewProcessor wires the batch processor. Nil collaborators fall back to permissive defaults.
func NewProcessor(repo ports.Repository, credentials ports.CompanyCredentials, lock ports.RunLock, now func() time.Time, callTimeout time.Duration, opts ...ProcessorOption) *Processor {
	if credentials == nil {
		credentials = ports.AllCompaniesConfigured
	}
	if lock == nil {
		lock = ports.NoopRunLock
	}
	if now == nil {
		now = time.Now
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	p := &Processor{
		repo:             repo,
		credentials:      credentials,
		lock:             lock,
		now:              now,
		callTimeout:      callTimeout,
		claimTTL:         DefaultClaimTTL,
		completeAttempts: defaultCompleteAttempts,
		completeDelay:    defaultCompleteDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Run processes the manifest. Precondition failures return a rejected result together with
// an ErrPrecondition error; once the loop starts the run always completes and the manifest
// always ends processed. A run taking over a stale claim only calls the provider for items
// still pending and reports the others from their stored outcome.
func (p *Processor) Run(ctx context.Context, input types.ProcessManifestInput, op ItemOperation) (*types.BatchResult, error) {
	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return nil, mapError(domain.ErrEmptyActor)
	}
	release, err := p.lock.Acquire(ctx, input.ManifestID)
	if err != nil {
		if errors.Is(err, ports.ErrRunLocked) {
			return reject(err)
		}
		return nil, err
	}
	defer func() { _ = release(context.WithoutCancel(ctx)) }()

	manifest, err := p.repo.GetManifest(ctx, input.ManifestID)
	if err != nil {
		return nil, err
	}
	claimedAt := p.now()
	staleBefore := claimedAt.Add(-p.claimTTL)
	if err := manifest.EnsureProcessable(op.Kind(), staleBefore); err != nil {
		return reject(err)
	}
	if err := p.repo.ClaimForProcessing(ctx, manifest.ID, claimedAt, staleBefore); err != nil {
		if errors.Is(err, ports.ErrClaimConflict) {
			return reject(err)
		}
		return nil, err
	}

	// The loop must finish even if the caller goes away.
	runCtx := context.WithoutCancel(ctx)
	items := slices.Clone(manifest.Items)
	slices.SortStableFunc(items, func(a, b domain.ManifestItem) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	result := &types.BatchResult{Errors: []types.ItemError{}}
	// Several items may link the same invoice; later ones must see the earlier settlement.
	settled := map[int64]*domain.Invoice{}
	for _, item := range items {
		if item.InvoiceID != nil {
			if inv, ok := settled[*item.InvoiceID]; ok {
				item.Invoice = inv.Clone()
			}
		}
		report := p.processItem(runCtx, manifest, item, op, actor)
		if report.invoice != nil {
			settled[report.invoice.ID] = report.invoice
		}
		result.TotalProcessed++
		switch report.outcome {
		case outcomeSuccess:
			result.SuccessCount++
		case outcomeSkipped:
			result.SkippedCount++
		case outcomeError:
			result.ErrorCount++
			result.Errors = append(result.Errors, types.ItemError{
				ItemID:         item.ID,
				ShipmentNumber: item.ShipmentNumber,
				InvoiceNumber:  item.Invoice.DisplayNumber(),
				Error:          report.err.Error(),
			})
		}
	}
	result.Success = result.SuccessCount > 0

	if err := p.complete(runCtx, manifest.ID); err != nil {
		return result, fmt.Errorf("complete manifest %d: %w", manifest.ID, err)
	}
	return result, nil
}

// complete retries transient failures; a manifest left in processing is only recovered
// once its claim goes stale.
func (p *Processor) complete(ctx context.Context, id int64) error {
	var err error
	for attempt := 1; attempt <= p.completeAttempts; attempt++ {
		err = p.repo.CompleteManifest(ctx, id, p.now())
		if err == nil || errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, ports.ErrNotFound) {
			return err
		}
		if attempt < p.completeAttempts && p.completeDelay > 0 {
			time.Sleep(p.completeDelay)
		}
	}
	return err
}

func (p *Processor) processItem(ctx context.Context, manifest *domain.Manifest, item domain.ManifestItem, op ItemOperation, actor string) itemReport {
	switch item.Status {
	case domain.ItemStatusProcessed:
		return itemReport{outcome: outcomeSkipped}
	case domain.ItemStatusError:
		return itemReport{outcome: outcomeError, err: errors.New(item.ErrorMessage)}
	}
	if !item.HasInvoice() {
		return p.fail(ctx, item, fmt.Errorf("%w: no invoice linked to shipment %s", ErrMissingAssociation, item.ShipmentNumber))
	}
	inv := item.Invoice
	if op.AlreadyDone(inv) {
		return p.skip(ctx, item, op)
	}
	configured, err := p.credentials.HasCredentials(ctx, inv.CompanyID)
	if err != nil {
		return p.fail(ctx, item, fmt.Errorf("%w: credentials lookup for company %d: %w", ErrMissingAssociation, inv.CompanyID, err))
	}
	if !configured {
		return p.fail(ctx, item, fmt.Errorf("%w: invoicing provider not configured for company %d", ErrMissingAssociation, inv.CompanyID))
	}

	settlement, err := p.execute(ctx, manifest, inv, op)
	if err != nil {
		return p.fail(ctx, item, err)
	}

	now := p.now()
	settled := inv.Clone()
	if err := op.Settle(settled, manifest, settlement, now); err != nil {
		if isAlreadyDone(err) {
			err = fmt.Errorf("%w: %w", ErrAlreadyDone, err)
		}
		return p.fail(ctx, item, err)
	}
	item.MarkProcessed("", now)
	item.Invoice = settled
	audit := domain.NewInvoiceAuditEntry(actor, op.AuditAction(), settled, domain.AuditMetadata{
		ManifestID:     manifest.ID,
		ShipmentNumber: item.ShipmentNumber,
		Source:         op.Source(),
	}, now)
	if err := p.repo.ApplyItemOutcome(ctx, ports.ItemOutcome{Kind: op.Kind(), Item: item, Invoice: settled, Audit: &audit}); err != nil {
		if errors.Is(err, ports.ErrInvoiceAlreadySettled) {
			return p.skip(ctx, item, op)
		}
		return p.fail(ctx, item, fmt.Errorf("provider accepted %s but local commit failed: %w", op.Name(), err))
	}
	return itemReport{outcome: outcomeSuccess, invoice: settled}
}

func (p *Processor) skip(ctx context.Context, item domain.ManifestItem, op ItemOperation) itemReport {
	item.MarkProcessed(op.NoopNote(), p.now())
	item.Invoice = nil
	if err := p.repo.ApplyItemOutcome(ctx, ports.ItemOutcome{Kind: op.Kind(), Item: item}); err != nil {
		return itemReport{outcome: outcomeError, err: fmt.Errorf("save no-op outcome: %w", err)}
	}
	return itemReport{outcome: outcomeSkipped}
}

func (p *Processor) execute(ctx context.Context, manifest *domain.Manifest, inv *domain.Invoice, op ItemOperation) (settlement Settlement, err error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", ErrProvider, op.Name(), r)
		}
	}()
	return op.Execute(callCtx, manifest, inv.Clone())
}

func (p *Processor) fail(ctx context.Context, item domain.ManifestItem, cause error) itemReport {
	item.MarkError(cause.Error(), p.now())
	item.Invoice = nil
	if err := p.repo.ApplyItemOutcome(ctx, ports.ItemOutcome{Item: item}); err != nil {
		cause = fmt.Errorf("%w (item status not saved: %v)", cause, err)
	}
	return itemReport{outcome: outcomeError, err: cause}
}

func reject(cause error) (*types.BatchResult, error) {
	err := mapError(cause)
	return types.NewRejectedResult(err.Error()), err
}
