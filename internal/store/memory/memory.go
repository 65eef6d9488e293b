// Package memory is an in-process core.Store. A single mutex is held for the
// whole unit of work over a copy of the committed state, which replaces the
// committed state only when the work succeeds.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/carlosf02/acg-propack/internal/core"
)

type state struct {
	seq        int64
	clients    map[int64]core.Client
	warehouses map[int64]core.Warehouse
	locations  map[int64]core.StorageLocation
	receipts   map[int64]core.WarehouseReceipt
	balances   map[int64]core.Balance
	txns       []core.Transaction
	ops        map[int64]core.RepackOperation
	links      []core.RepackLink
	shipments  map[int64]core.Shipment
	items      []core.ShipmentItem
}

func newState() *state {
	return &state{
		clients:    map[int64]core.Client{},
		warehouses: map[int64]core.Warehouse{},
		locations:  map[int64]core.StorageLocation{},
		receipts:   map[int64]core.WarehouseReceipt{},
		balances:   map[int64]core.Balance{},
		ops:        map[int64]core.RepackOperation{},
		shipments:  map[int64]core.Shipment{},
	}
}

// clone copies every table. Ledger rows are immutable so their line slices
// are shared.
func (s *state) clone() *state {
	return &state{
		seq:        s.seq,
		clients:    maps.Clone(s.clients),
		warehouses: maps.Clone(s.warehouses),
		locations:  maps.Clone(s.locations),
		receipts:   maps.Clone(s.receipts),
		balances:   maps.Clone(s.balances),
		txns:       slices.Clone(s.txns),
		ops:        maps.Clone(s.ops),
		links:      slices.Clone(s.links),
		shipments:  maps.Clone(s.shipments),
		items:      slices.Clone(s.items),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

type Option func(*Store)

// WithClock overrides the timestamp source for created/updated columns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithoutBalanceUniqueness disables the one-balance-per-WR constraint so
// tests can reproduce a corrupted projection.
func WithoutBalanceUniqueness() Option {
	return func(s *Store) { s.looseBalances = true }
}

type Store struct {
	mu            sync.RWMutex
	st            *state
	now           func() time.Time
	looseBalances bool
}

var _ core.Store = (*Store)(nil)

func New(opts ...Option) *Store {
	s := &Store{st: newState(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) InTx(ctx context.Context, fn func(tx core.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&tx{st: work, store: s}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.st = work
	return nil
}

// ── Boundary entities ────────────────────────────────────────────────────────

// AddClient registers a client and returns it with its id assigned.
func (s *Store) AddClient(c core.Client) core.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.st.nextID()
	s.st.clients[c.ID] = c
	return c
}

func (s *Store) AddWarehouse(w core.Warehouse) core.Warehouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = s.st.nextID()
	s.st.warehouses[w.ID] = w
	return w
}

// AddLocation registers a storage location. Codes are unique per warehouse.
func (s *Store) AddLocation(l core.StorageLocation) (core.StorageLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.warehouses[l.WarehouseID]; !ok {
		return l, core.NotFound("warehouse", l.WarehouseID)
	}
	for _, other := range s.st.locations {
		if other.WarehouseID == l.WarehouseID && other.Code == l.Code {
			return l, core.Conflict("location code %s already exists in warehouse %d", l.Code, l.WarehouseID)
		}
	}
	l.ID = s.st.nextID()
	s.st.locations[l.ID] = l
	return l, nil
}

// SetLocationActive toggles a location, standing in for external CRUD.
func (s *Store) SetLocationActive(id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.st.locations[id]
	if !ok {
		return core.NotFound("storage location", id)
	}
	l.IsActive = active
	s.st.locations[id] = l
	return nil
}

// ── Snapshot helpers for assertions ──────────────────────────────────────────

// Balances returns every balance row ordered by id.
func (s *Store) Balances() []core.Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Balance, 0, len(s.st.balances))
	for _, b := range s.st.balances {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b core.Balance) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Transactions returns the whole ledger in append order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.txns)
}

func (s *Store) RepackLinks() []core.RepackLink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.links)
}
