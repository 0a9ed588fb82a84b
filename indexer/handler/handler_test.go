package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

var (
	assetAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob       = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	vaultAddr = common.HexToAddress("0x00000000000000000000000000000000000000f0")

	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *store.MemStore
	decimals *DecimalsResolver
	logIndex uint32
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    store.NewMemStore(),
		decimals: NewDecimalsResolver(6, nil, 16),
	}
}

// context builds the handler context of a fresh event emitted by emitter.
func (f *fixture) context(source, name string, emitter common.Address, params map[string]any) *Context {
	f.t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(f.t, err)
	f.logIndex++
	ev := types.Event{
		Source:      source,
		Name:        name,
		Emitter:     emitter,
		BlockNumber: 100,
		Timestamp:   1700000000 + int64(f.logIndex),
		TxHash:      common.HexToHash("0xabcdef"),
		LogIndex:    f.logIndex,
		TxFrom:      alice,
		Params:      raw,
	}
	return &Context{Event: ev, Store: f.store, Logger: discard, Decimals: f.decimals}
}

// call decodes params the way the dispatcher does and runs fn.
func call[P any](f *fixture, fn func(context.Context, *Context, P) error, source, name string, emitter common.Address, params map[string]any) error {
	f.t.Helper()
	hc := f.context(source, name, emitter, params)
	var p P
	if err := hc.Event.DecodeParams(&p); err != nil {
		return err
	}
	return fn(f.ctx, hc, p)
}

func (f *fixture) must(err error) {
	f.t.Helper()
	require.NoError(f.t, err)
}

func load[T any, PT interface {
	*T
	store.Entity
}](f *fixture, id string) PT {
	f.t.Helper()
	var e T
	require.NoError(f.t, f.store.Get(f.ctx, PT(&e), id))
	return &e
}
