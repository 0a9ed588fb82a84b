package types

import (
	"time"

	"github.com/assetkit/assetindexer/counter"
)

type Account struct {
	ID                  string          `gorm:"type:text;primaryKey" json:"id"`
	Identity            string          `gorm:"type:text;index:account_identity" json:"identity"`
	Country             uint16          `gorm:"type:integer;not null" json:"country"`
	BalancesCount       counter.Counter `gorm:"type:bigint;not null" json:"balancesCount"`
	ActivityEventsCount counter.Counter `gorm:"type:bigint;not null" json:"activityEventsCount"`
	LastActivity        time.Time       `json:"lastActivity"`
}

type Asset struct {
	ID                     string          `gorm:"type:text;primaryKey" json:"id"`
	Type                   string          `gorm:"type:text;index:asset_type" json:"type"`
	Name                   string          `gorm:"type:text" json:"name"`
	Symbol                 string          `gorm:"type:text" json:"symbol"`
	Decimals               uint8           `gorm:"type:smallint;not null" json:"decimals"`
	Registered             bool            `gorm:"not null" json:"registered"`
	Registry               string          `gorm:"type:text;index:asset_registry" json:"registry"`
	Paused                 bool            `gorm:"not null" json:"paused"`
	TotalSupply            Amount          `gorm:"embedded;embeddedPrefix:total_supply_" json:"totalSupply"`
	HoldersCount           counter.Counter `gorm:"type:bigint;not null" json:"holdersCount"`
	BalancesCount          counter.Counter `gorm:"type:bigint;not null" json:"balancesCount"`
	ComplianceModulesCount counter.Counter `gorm:"type:bigint;not null" json:"complianceModulesCount"`
	DeployedInTransaction  string          `gorm:"type:text" json:"deployedInTransaction"`
	LastActivity           time.Time       `json:"lastActivity"`
}

type AssetBalance struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	Asset        string    `gorm:"type:text;not null;index:asset_balance_asset" json:"asset"`
	Account      string    `gorm:"type:text;not null;index:asset_balance_account" json:"account"`
	Balance      Amount    `gorm:"embedded;embeddedPrefix:value_" json:"balance"`
	Approved     Amount    `gorm:"embedded;embeddedPrefix:approved_" json:"approved"`
	Frozen       Amount    `gorm:"embedded;embeddedPrefix:frozen_" json:"frozen"`
	IsFrozen     bool      `gorm:"not null" json:"isFrozen"`
	Blocked      bool      `gorm:"not null" json:"blocked"`
	LastActivity time.Time `json:"lastActivity"`
}

// BlockedUser exists exactly while User is blocked from Asset.
type BlockedUser struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Asset     string    `gorm:"type:text;not null;index:blocked_user_asset" json:"asset"`
	User      string    `gorm:"type:text;not null" json:"user"`
	BlockedAt time.Time `json:"blockedAt"`
}

// AssetComplianceModule exists exactly while Module is attached to Asset.
type AssetComplianceModule struct {
	ID      string    `gorm:"type:text;primaryKey" json:"id"`
	Asset   string    `gorm:"type:text;not null;index:compliance_module_asset" json:"asset"`
	Module  string    `gorm:"type:text;not null" json:"module"`
	AddedAt time.Time `json:"addedAt"`
}

type Identity struct {
	ID                    string          `gorm:"type:text;primaryKey" json:"id"`
	Account               string          `gorm:"type:text;index:identity_account" json:"account"`
	Registry              string          `gorm:"type:text" json:"registry"`
	Country               uint16          `gorm:"type:integer;not null" json:"country"`
	KeysCount             counter.Counter `gorm:"type:bigint;not null" json:"keysCount"`
	DeployedInTransaction string          `gorm:"type:text" json:"deployedInTransaction"`
	LastActivity          time.Time       `json:"lastActivity"`
}

type IdentityKey struct {
	ID                    string     `gorm:"type:text;primaryKey" json:"id"`
	Identity              string     `gorm:"type:text;not null;index:identity_key_identity" json:"identity"`
	Key                   string     `gorm:"type:text;not null" json:"key"`
	Purpose               KeyPurpose `gorm:"type:text;not null" json:"purpose"`
	Type                  KeyType    `gorm:"type:text;not null" json:"type"`
	DeployedInTransaction string     `gorm:"type:text" json:"deployedInTransaction"`
}

// ActivityLogEntry is written once per applied event and never mutated.
type ActivityLogEntry struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Source      string    `gorm:"type:text" json:"source"`
	EventName   string    `gorm:"type:text;index:activity_log_event_name" json:"eventName"`
	Emitter     string    `gorm:"type:text;index:activity_log_emitter" json:"emitter"`
	Sender      string    `gorm:"type:text;index:activity_log_sender" json:"sender"`
	TxHash      string    `gorm:"type:text" json:"txHash"`
	BlockNumber uint64    `gorm:"type:bigint;index:activity_log_block_number,sort:desc" json:"blockNumber"`
	LogIndex    uint32    `gorm:"type:bigint" json:"logIndex"`
	Timestamp   time.Time `gorm:"index:activity_log_timestamp,sort:desc" json:"timestamp"`
}

// AssetActivityEvent is the asset scoped view of an ActivityLogEntry, sharing its id.
type AssetActivityEvent struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Asset     string    `gorm:"type:text;not null;index:asset_activity_asset" json:"asset"`
	EventName string    `gorm:"type:text" json:"eventName"`
	Sender    string    `gorm:"type:text" json:"sender"`
	From      string    `gorm:"type:text;index:asset_activity_from" json:"from"`
	To        string    `gorm:"type:text;index:asset_activity_to" json:"to"`
	Amount    Amount    `gorm:"embedded;embeddedPrefix:amount_" json:"amount"`
	TxHash    string    `gorm:"type:text" json:"txHash"`
	Timestamp time.Time `gorm:"index:asset_activity_timestamp,sort:desc" json:"timestamp"`
}

// EventStatsData is an append-only time series row; ID is assigned by the store.
type EventStatsData struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Account   string    `gorm:"type:text;not null;index:event_stats_account" json:"account"`
	EventName string    `gorm:"type:text;not null" json:"eventName"`
	Timestamp time.Time `gorm:"index:event_stats_timestamp" json:"timestamp"`
}

type Vault struct {
	ID                        string          `gorm:"type:text;primaryKey" json:"id"`
	Account                   string          `gorm:"type:text;not null" json:"account"`
	Creator                   string          `gorm:"type:text" json:"creator"`
	Signers                   AddressList     `json:"signers"`
	Admins                    AddressList     `json:"admins"`
	PendingTransactionsCount  counter.Counter `gorm:"type:bigint;not null" json:"pendingTransactionsCount"`
	ExecutedTransactionsCount counter.Counter `gorm:"type:bigint;not null" json:"executedTransactionsCount"`
	RequiredSigners           int64           `gorm:"type:bigint;not null" json:"requiredSigners"`
	TotalSigners              int64           `gorm:"type:bigint;not null" json:"totalSigners"`
	Paused                    bool            `gorm:"not null" json:"paused"`
	DeployedOn                time.Time       `json:"deployedOn"`
	DeployedInTransaction     string          `gorm:"type:text" json:"deployedInTransaction"`
	LastActivity              time.Time       `json:"lastActivity"`
}

type VaultTransaction struct {
	ID                 string          `gorm:"type:text;primaryKey" json:"id"`
	Vault              string          `gorm:"type:text;not null;index:vault_transaction_vault" json:"vault"`
	TxIndex            string          `gorm:"type:text;not null" json:"txIndex"`
	To                 string          `gorm:"type:text" json:"to"`
	Value              Amount          `gorm:"embedded;embeddedPrefix:value_" json:"value"`
	Data               string          `gorm:"type:text" json:"data"`
	Submitter          string          `gorm:"type:text" json:"submitter"`
	ConfirmationsCount counter.Counter `gorm:"type:bigint;not null" json:"confirmationsCount"`
	Executed           bool            `gorm:"not null" json:"executed"`
	SubmittedAt        time.Time       `json:"submittedAt"`
	ExecutedAt         time.Time       `json:"executedAt"`
}

type System struct {
	ID                    string          `gorm:"type:text;primaryKey" json:"id"`
	Deployer              string          `gorm:"type:text" json:"deployer"`
	TokenRegistriesCount  counter.Counter `gorm:"type:bigint;not null" json:"tokenRegistriesCount"`
	DeployedInTransaction string          `gorm:"type:text" json:"deployedInTransaction"`
	CreatedAt             time.Time       `gorm:"autoCreateTime:false" json:"createdAt"`
}

type TokenRegistry struct {
	ID                    string          `gorm:"type:text;primaryKey" json:"id"`
	System                string          `gorm:"type:text;index:token_registry_system" json:"system"`
	TypeName              string          `gorm:"type:text" json:"typeName"`
	AssetsCount           counter.Counter `gorm:"type:bigint;not null" json:"assetsCount"`
	DeployedInTransaction string          `gorm:"type:text" json:"deployedInTransaction"`
	CreatedAt             time.Time       `gorm:"autoCreateTime:false" json:"createdAt"`
}

// AccessRoleMember exists exactly while Account holds Role on Contract.
type AccessRoleMember struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Contract  string    `gorm:"type:text;not null;index:access_role_member_contract" json:"contract"`
	Role      string    `gorm:"type:text;not null" json:"role"`
	Account   string    `gorm:"type:text;not null" json:"account"`
	GrantedAt time.Time `json:"grantedAt"`
}

// ProcessingCursor records the last applied position of an event source.
type ProcessingCursor struct {
	ID              string          `gorm:"type:text;primaryKey" json:"id"`
	BlockNumber     uint64          `gorm:"type:bigint;not null" json:"blockNumber"`
	LogIndex        uint32          `gorm:"type:bigint;not null" json:"logIndex"`
	TxHash          string          `gorm:"type:text" json:"txHash"`
	Applied         bool            `gorm:"not null" json:"applied"`
	EventsProcessed counter.Counter `gorm:"type:bigint;not null" json:"eventsProcessed"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (Account) TableName() string               { return "account" }
func (Asset) TableName() string                 { return "asset" }
func (AssetBalance) TableName() string          { return "asset_balance" }
func (BlockedUser) TableName() string           { return "blocked_user" }
func (AssetComplianceModule) TableName() string { return "asset_compliance_module" }
func (Identity) TableName() string              { return "identity" }
func (IdentityKey) TableName() string           { return "identity_key" }
func (ActivityLogEntry) TableName() string      { return "activity_log_entry" }
func (AssetActivityEvent) TableName() string    { return "asset_activity_event" }
func (EventStatsData) TableName() string        { return "event_stats_data" }
func (Vault) TableName() string                 { return "vault" }
func (VaultTransaction) TableName() string      { return "vault_transaction" }
func (System) TableName() string                { return "system" }
func (TokenRegistry) TableName() string         { return "token_registry" }
func (AccessRoleMember) TableName() string      { return "access_role_member" }
func (ProcessingCursor) TableName() string      { return "processing_cursor" }

func (e Account) EntityID() string               { return e.ID }
func (e Asset) EntityID() string                 { return e.ID }
func (e AssetBalance) EntityID() string          { return e.ID }
func (e BlockedUser) EntityID() string           { return e.ID }
func (e AssetComplianceModule) EntityID() string { return e.ID }
func (e Identity) EntityID() string              { return e.ID }
func (e IdentityKey) EntityID() string           { return e.ID }
func (e ActivityLogEntry) EntityID() string      { return e.ID }
func (e AssetActivityEvent) EntityID() string    { return e.ID }
func (e Vault) EntityID() string                 { return e.ID }
func (e VaultTransaction) EntityID() string      { return e.ID }
func (e System) EntityID() string                { return e.ID }
func (e TokenRegistry) EntityID() string         { return e.ID }
func (e AccessRoleMember) EntityID() string      { return e.ID }
func (e ProcessingCursor) EntityID() string      { return e.ID }

// AllTables lists every persisted model, in migration order.
func AllTables() []any {
	return []any{
		&Account{},
		&Asset{},
		&AssetBalance{},
		&BlockedUser{},
		&AssetComplianceModule{},
		&Identity{},
		&IdentityKey{},
		&ActivityLogEntry{},
		&AssetActivityEvent{},
		&EventStatsData{},
		&Vault{},
		&VaultTransaction{},
		&System{},
		&TokenRegistry{},
		&AccessRoleMember{},
		&ProcessingCursor{},
	}
}
