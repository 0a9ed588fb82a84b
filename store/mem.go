package store

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/assetkit/assetindexer/types"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps every entity as its JSON encoding, so a loaded entity never
// aliases stored state and a snapshot is a plain copy of byte slices.
type MemStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
}

type memState struct {
	tables      map[string]map[string][]byte
	stats       []types.EventStatsData
	nextStatsID uint64
}

func NewMemStore() *MemStore {
	return &MemStore{
		mu:    &sync.Mutex{},
		state: &memState{tables: make(map[string]map[string][]byte)},
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		tables:      make(map[string]map[string][]byte, len(s.tables)),
		stats:       slices.Clone(s.stats),
		nextStatsID: s.nextStatsID,
	}
	for name, rows := range s.tables {
		c.tables[name] = maps.Clone(rows)
	}
	return c
}

// lock is a no-op inside a transaction, which already holds the mutex.
func (s *MemStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemStore) Get(_ context.Context, dst Entity, id string) error {
	defer s.lock()()

	raw, ok := s.state.tables[dst.TableName()][id]
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return types.NewDatabaseError("get "+dst.TableName(), err)
	}
	return nil
}

func (s *MemStore) Put(_ context.Context, e Entity) error {
	defer s.lock()()

	raw, err := json.Marshal(e)
	if err != nil {
		return types.NewDatabaseError("put "+e.TableName(), err)
	}
	rows, ok := s.state.tables[e.TableName()]
	if !ok {
		rows = make(map[string][]byte)
		s.state.tables[e.TableName()] = rows
	}
	rows[e.EntityID()] = raw
	return nil
}

func (s *MemStore) Delete(_ context.Context, e Entity) error {
	defer s.lock()()

	delete(s.state.tables[e.TableName()], e.EntityID())
	return nil
}

func (s *MemStore) Append(_ context.Context, row *types.EventStatsData) error {
	defer s.lock()()

	s.state.nextStatsID++
	row.ID = s.state.nextStatsID
	s.state.stats = append(s.state.stats, *row)
	return nil
}

func (s *MemStore) Balances(_ context.Context, asset string) ([]types.AssetBalance, error) {
	defer s.lock()()

	return scanTable(s.state, "list balances", func(b types.AssetBalance) bool { return b.Asset == asset })
}

func (s *MemStore) ActivityEvents(_ context.Context, asset string) ([]types.AssetActivityEvent, error) {
	defer s.lock()()

	return scanTable(s.state, "list activity events", func(e types.AssetActivityEvent) bool { return e.Asset == asset })
}

// scanTable decodes the rows of T's table in id order, keeping those matching keep.
func scanTable[T Entity](state *memState, op string, keep func(T) bool) ([]T, error) {
	var zero T
	rows := state.tables[zero.TableName()]
	var out []T
	for _, id := range slices.Sorted(maps.Keys(rows)) {
		var row T
		if err := json.Unmarshal(rows[id], &row); err != nil {
			return nil, types.NewDatabaseError(op, err)
		}
		if keep(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *MemStore) AssetIDs(_ context.Context) ([]string, error) {
	defer s.lock()()

	return slices.Sorted(maps.Keys(s.state.tables[types.Asset{}.TableName()])), nil
}

func (s *MemStore) EventStats(_ context.Context, filter StatsFilter) ([]types.EventStatsData, error) {
	defer s.lock()()

	var out []types.EventStatsData
	for _, row := range s.state.stats {
		if filter.match(row) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemStore) Transaction(_ context.Context, fn func(tx Store) error) error {
	defer s.lock()()

	snapshot := s.state.clone()
	tx := &MemStore{mu: s.mu, state: s.state, inTx: true}

	defer func() {
		if r := recover(); r != nil {
			*s.state = *snapshot
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		*s.state = *snapshot
		return err
	}
	return nil
}

// Len returns the number of rows stored in table.
func (s *MemStore) Len(table string) int {
	defer s.lock()()

	if table == (types.EventStatsData{}).TableName() {
		return len(s.state.stats)
	}
	return len(s.state.tables[table])
}

// Dump renders the entity tables as sorted "table/id=json" lines. Stats rows are
// not included.
func (s *MemStore) Dump() string {
	defer s.lock()()

	var b strings.Builder
	for _, table := range slices.Sorted(maps.Keys(s.state.tables)) {
		rows := s.state.tables[table]
		for _, id := range slices.Sorted(maps.Keys(rows)) {
			fmt.Fprintf(&b, "%s/%s=%s\n", table, id, rows[id])
		}
	}
	return b.String()
}
