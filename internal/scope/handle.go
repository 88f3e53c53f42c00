// Package scope owns entities and ledgers and turns a caller's
// (entity, ledger name) request into an authorized ledger handle.
//
// Ownership is checked here and only here. The posting, seeding and report
// packages accept a Handle and trust it.
package scope

import (
	"context"
	"strings"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/store"
)

// Handle identifies a ledger the caller is allowed to operate on. The zero
// Handle is invalid; handles are only produced by Resolver.Resolve.
type Handle struct {
	ledgerID   string
	entityID   string
	ledgerName string
}

// LedgerID returns the resolved ledger id.
func (h Handle) LedgerID() string { return h.ledgerID }

// EntityID returns the owning entity id.
func (h Handle) EntityID() string { return h.entityID }

// LedgerName returns the ledger's name within its entity.
func (h Handle) LedgerName() string { return h.ledgerName }

// Valid reports whether h came from a successful resolution.
func (h Handle) Valid() bool { return h.ledgerID != "" }

// Resolver resolves ledger handles.
type Resolver struct {
	db *store.DB
}

// NewResolver creates a Resolver.
func NewResolver(db *store.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve confirms that the entity belongs to caller and that it has a
// ledger with the given name. Both failures are Not-Found, so an entity
// owned by someone else is indistinguishable from a missing one.
func (r *Resolver) Resolve(ctx context.Context, caller, entityID, ledgerName string) (Handle, error) {
	if strings.TrimSpace(caller) == "" {
		return Handle{}, apperr.Validation("caller", "caller id is required")
	}
	if err := checkEntityOwner(ctx, r.db, caller, entityID); err != nil {
		return Handle{}, err
	}

	var ledgerID string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM ledgers WHERE entity_id = ? AND name = ?`,
		entityID, ledgerName,
	).Scan(&ledgerID)
	if store.IsNoRows(err) {
		return Handle{}, apperr.NotFound("ledger %q not found", ledgerName)
	}
	if err != nil {
		return Handle{}, apperr.Internal(err, "resolving ledger")
	}

	return Handle{ledgerID: ledgerID, entityID: entityID, ledgerName: ledgerName}, nil
}

func checkEntityOwner(ctx context.Context, q store.Querier, caller, entityID string) error {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM entities WHERE id = ? AND owner_id = ?`,
		entityID, caller,
	).Scan(&one)
	if store.IsNoRows(err) {
		return apperr.NotFound("entity %s not found", entityID)
	}
	if err != nil {
		return apperr.Internal(err, "checking entity owner")
	}
	return nil
}
