package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Event is one decoded contract log, as delivered by the upstream decoder.
type Event struct {
	Source      string          `json:"source"`
	Name        string          `json:"name"`
	Emitter     common.Address  `json:"emitter"`
	BlockNumber uint64          `json:"blockNumber"`
	Timestamp   int64           `json:"timestamp"`
	TxHash      common.Hash     `json:"txHash"`
	LogIndex    uint32          `json:"logIndex"`
	TxFrom      common.Address  `json:"txFrom"`
	Params      json.RawMessage `json:"params"`
}

// Position orders events by block and then by log index.
type Position struct {
	BlockNumber uint64 `json:"blockNumber"`
	LogIndex    uint32 `json:"logIndex"`
}

func (p Position) Compare(other Position) int {
	switch {
	case p.BlockNumber < other.BlockNumber:
		return -1
	case p.BlockNumber > other.BlockNumber:
		return 1
	case p.LogIndex < other.LogIndex:
		return -1
	case p.LogIndex > other.LogIndex:
		return 1
	}
	return 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.BlockNumber, p.LogIndex)
}

func (e Event) ID() string {
	return EventID(e.TxHash, e.LogIndex)
}

func (e Event) Position() Position {
	return Position{BlockNumber: e.BlockNumber, LogIndex: e.LogIndex}
}

// Time returns the block timestamp in UTC.
func (e Event) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

func (e Event) Validate() error {
	if e.Source == "" {
		return NewValidationError("source", "required field is missing")
	}
	if e.Name == "" {
		return NewValidationError("name", "required field is missing")
	}
	if e.TxHash == (common.Hash{}) {
		return NewValidationError("txHash", "required field is missing")
	}
	return nil
}

// DecodeParams unmarshals the parameter bag into dst.
func (e Event) DecodeParams(dst any) error {
	params := e.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return NewDecodeError(e.Name, err)
	}
	return nil
}
