package invoicing

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

// DefaultKeyringTTL is how long a company configuration answer is reused.
const DefaultKeyringTTL = 5 * time.Minute

// Keyring answers whether the provider holds credentials for a company, caching answers per company.
// Concurrent misses for the same company share one provider lookup.
type Keyring struct {
	client Client
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu      sync.Mutex
	entries map[int64]keyringEntry
}

type keyringEntry struct {
	configured bool
	expires    time.Time
}

// NewKeyring wires the credential lookup; ttl <= 0 uses DefaultKeyringTTL.
func NewKeyring(client Client, ttl time.Duration) *Keyring {
	if ttl <= 0 {
		ttl = DefaultKeyringTTL
	}
	return &Keyring{client: client, ttl: ttl, now: time.Now, entries: map[int64]keyringEntry{}}
}

// HasCredentials implements ports.CompanyCredentials.
func (k *Keyring) HasCredentials(ctx context.Context, companyID int64) (bool, error) {
	if k == nil || k.client == nil {
		return false, errors.New("invoicing keyring not configured")
	}
	now := k.now()
	k.mu.Lock()
	entry, ok := k.entries[companyID]
	k.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.configured, nil
	}
	v, err, _ := k.group.Do(strconv.FormatInt(companyID, 10), func() (interface{}, error) {
		configured, err := k.client.CompanyConfigured(ctx, companyID)
		if err != nil {
			return false, err
		}
		k.mu.Lock()
		k.entries[companyID] = keyringEntry{configured: configured, expires: now.Add(k.ttl)}
		k.mu.Unlock()
		return configured, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

var _ ports.CompanyCredentials = (*Keyring)(nil)
