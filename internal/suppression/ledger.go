// Package suppression implements the ledger of addresses the bridge must not
// reply to. Each address maps to a single "until" time; an address is
// suppressed while that time lies in the future.
//
// The ledger fails open: if the backing store cannot be read, the address is
// treated as not suppressed and the failure is logged. Writes are blind
// overwrites, so concurrent feedback for one address resolves last-write-wins.
package suppression

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"wxrmessenger/internal/types"
)

// Store persists suppression records. Get returns (nil, nil) when no record
// exists for the address.
type Store interface {
	Get(ctx context.Context, email string) (*types.SuppressionRecord, error)
	Put(ctx context.Context, rec types.SuppressionRecord) error
}

// Entry is one suppression to record: replies to Address are blocked until
// Until.
type Entry struct {
	Address string
	Until   time.Time
}

// Ledger answers "may we reply to this address" and records new suppressions.
type Ledger struct {
	store  Store
	clock  clockwork.Clock
	logger types.Logger
}

// NewLedger creates a Ledger. A nil clock uses the real clock and a nil
// logger discards output.
func NewLedger(store Store, clock clockwork.Clock, logger types.Logger) *Ledger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Ledger{store: store, clock: clock, logger: logger}
}

// Put records that address is suppressed until the given time, replacing
// any existing record. Failures are logged here and also returned so the
// caller can count them; callers are not expected to abort on them.
func (l *Ledger) Put(ctx context.Context, address string, until time.Time) error {
	err := l.store.Put(ctx, types.SuppressionRecord{EmailAddress: address, Until: until})
	if err != nil {
		l.logger.Error("failed to write suppression",
			"email", types.RedactEmail(address),
			"until", until.Format(time.RFC3339),
			"error", err,
		)
		return err
	}
	l.logger.Info("suppression recorded",
		"email", types.RedactEmail(address),
		"until", until.Format(time.RFC3339),
	)
	return nil
}

// Lookup returns the stored record for address. found is false when no
// record exists; err reports a store failure.
func (l *Ledger) Lookup(ctx context.Context, address string) (rec types.SuppressionRecord, found bool, err error) {
	stored, err := l.store.Get(ctx, address)
	if err != nil {
		return types.SuppressionRecord{}, false, err
	}
	if stored == nil {
		return types.SuppressionRecord{}, false, nil
	}
	return *stored, true, nil
}

// IsSuppressed reports whether replies to address are currently blocked.
// Store errors yield false.
func (l *Ledger) IsSuppressed(ctx context.Context, address string) bool {
	rec, found, err := l.Lookup(ctx, address)
	if err != nil {
		l.logger.Warn("suppression lookup failed, allowing reply",
			"email", types.RedactEmail(address),
			"error", err,
		)
		return false
	}
	if !found {
		return false
	}
	return rec.Until.After(l.clock.Now())
}

