package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/assetkit/assetindexer/types"
)

type IndexerConfig struct {
	CursorName        string
	MaxRetries        int
	ReconcileInterval time.Duration // 0 disables periodic reconciliation
	DefaultDecimals   uint8
	AssetDecimals     map[string]uint8
	DecimalsCacheSize int
}

func (c IndexerConfig) GetMaxRetries() int {
	return c.MaxRetries
}

func (c IndexerConfig) GetReconcileInterval() time.Duration {
	return c.ReconcileInterval
}

func (c IndexerConfig) Validate() error {
	if c.CursorName == "" {
		return types.NewValidationError("CURSOR_NAME", "required field is missing")
	}
	if c.MaxRetries < 0 {
		return types.NewValidationError("MAX_RETRIES", "must be non-negative")
	}
	if c.ReconcileInterval < 0 {
		return types.NewValidationError("RECONCILE_INTERVAL", "must be non-negative")
	}
	if c.DecimalsCacheSize < 1 {
		return types.NewValidationError("DECIMALS_CACHE_SIZE", "must be at least 1")
	}
	return nil
}

// parseAssetDecimals parses ASSET_DECIMALS, a comma separated list of
// <asset address>=<decimals>. Keys are normalized asset ids.
func parseAssetDecimals(raw string) (map[string]uint8, error) {
	out := make(map[string]uint8)
	for _, item := range splitList(raw) {
		addr, dec, ok := strings.Cut(item, "=")
		addr = strings.TrimSpace(addr)
		if !ok || !common.IsHexAddress(addr) {
			return nil, types.NewInvalidValueError("ASSET_DECIMALS", item, "expected <address>=<decimals>")
		}
		d, err := strconv.ParseUint(strings.TrimSpace(dec), 10, 8)
		if err != nil {
			return nil, types.NewInvalidValueError("ASSET_DECIMALS", item, "decimals must be an integer between 0 and 255")
		}
		out[types.AddressID(common.HexToAddress(addr))] = uint8(d)
	}
	return out, nil
}
