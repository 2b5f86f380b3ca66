package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
	"github.com/DoyleJ11/wuwa-draft-client/internal/store"
)

// StorageKey is where the last submitted ownership map lives.
const StorageKey = "wuwaDraftLastSubmittedSequences"

// Ledger persists the last submission. It is a convenience for pre-fill and
// never authoritative.
type Ledger struct {
	store store.Store
	cat   *catalog.Catalog
	log   *zap.Logger
}

func NewLedger(s store.Store, cat *catalog.Catalog, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: s, cat: cat, log: log}
}

// Prefill returns the stored map normalised against the catalog, or the
// defaults when nothing valid is stored. Corrupt records are ignored.
func (l *Ledger) Prefill(ctx context.Context) Ownership {
	raw, err := l.store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.log.Warn("reading stored ownership", zap.Error(err))
		}
		return Defaults(l.cat)
	}

	var stored map[string]int
	if err := json.Unmarshal(raw, &stored); err != nil {
		l.log.Debug("ignoring corrupt stored ownership", zap.Error(err))
		return Defaults(l.cat)
	}
	return Normalize(l.cat, stored)
}

// Save writes the full ownership map, including NotOwned entries.
func (l *Ledger) Save(ctx context.Context, own Ownership) error {
	raw, err := json.Marshal(map[string]int(Normalize(l.cat, own)))
	if err != nil {
		return fmt.Errorf("encoding ownership: %w", err)
	}
	if err := l.store.Put(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("saving ownership: %w", err)
	}
	return nil
}

// Reset clears the persisted record and returns fresh defaults.
func (l *Ledger) Reset(ctx context.Context) (Ownership, error) {
	if err := l.store.Delete(ctx, StorageKey); err != nil {
		return Defaults(l.cat), fmt.Errorf("clearing ownership: %w", err)
	}
	return Defaults(l.cat), nil
}
