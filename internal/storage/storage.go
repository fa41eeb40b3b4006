package storage

import (
	"context"

	"gauged/internal/core"
)

// Storage defines the interface for data persistence. Snapshot, status and
// sync-run tables are append-only; accounts are the only mutable rows.
type Storage interface {
	// Accounts
	UpsertAccount(ctx context.Context, account *core.Account) error
	GetAccount(ctx context.Context, id string) (*core.Account, error)
	ListAccounts(ctx context.Context) ([]*core.Account, error)
	FetchEnabledAccounts(ctx context.Context) ([]*core.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	// Usage history
	InsertSnapshot(ctx context.Context, snapshot *core.UsageSnapshot) error
	RecentSnapshots(ctx context.Context, accountID string, limit int) ([]*core.UsageSnapshot, error)

	// Battery status
	InsertBatteryStatus(ctx context.Context, status *core.BatteryStatus) error
	LatestBatteryStatuses(ctx context.Context) ([]*core.BatteryStatus, error)

	// Sync audit trail
	InsertSyncRun(ctx context.Context, run *core.SyncRun) error
	ListSyncRuns(ctx context.Context, accountID string, limit int) ([]*core.SyncRun, error)

	// Lifecycle
	Close() error
}
