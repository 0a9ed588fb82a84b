// Package handler holds one function per routed contract event. Every handler
// runs inside the unit of work opened for its event and persists what it
// changes before returning.
package handler

import (
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/assetkit/assetindexer/store"
	"github.com/assetkit/assetindexer/types"
)

// Context is the handler-agnostic part of a handler call.
type Context struct {
	Event    types.Event
	Store    store.Store
	Logger   *slog.Logger
	Decimals *DecimalsResolver
}

func (c *Context) Emitter() common.Address {
	return c.Event.Emitter
}

func (c *Context) EmitterID() string {
	return types.AddressID(c.Event.Emitter)
}

func (c *Context) Time() time.Time {
	return c.Event.Time()
}

func (c *Context) TxHash() string {
	return c.Event.TxHash.Hex()
}
