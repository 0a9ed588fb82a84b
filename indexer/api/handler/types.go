package handler

import (
	"github.com/assetkit/assetindexer/indexer/activity"
	"github.com/assetkit/assetindexer/types"
)

type HoldersResponse struct {
	Asset         string       `json:"asset"`
	Stored        int64        `json:"stored"`
	Recomputed    int64        `json:"recomputed"`
	InSync        bool         `json:"inSync"`
	BalancesCount int64        `json:"balancesCount"`
	TotalSupply   types.Amount `json:"totalSupply"`
}

type ReconcileResponse struct {
	Asset  string `json:"asset"`
	Queued bool   `json:"queued"`
}

type StatsResponse struct {
	Asset    string            `json:"asset"`
	Interval string            `json:"interval"`
	Buckets  []activity.Bucket `json:"buckets"`
}
