package types

import "time"

// Data source kinds of the contracts that emit events
const (
	SourceAsset            = "asset"
	SourceIdentity         = "identity"
	SourceIdentityRegistry = "identityRegistry"
	SourceVault            = "vault"
	SourceVaultFactory     = "vaultFactory"
	SourceSystemFactory    = "systemFactory"
	SourceSystem           = "system"
	SourceTokenFactory     = "tokenFactory"
	SourceAccessControl    = "accessControl"
)

// Indexer constants
const (
	// Fetched events waiting for the writer
	EventBufferSize = 100

	// Pending reconciliation requests
	ReconcileQueueSize = 16

	// Retry of transient store failures
	InitialRetryBackoff = 200 * time.Millisecond
	MaxRetryBackoff     = 10 * time.Second
)
