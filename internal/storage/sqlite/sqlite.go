package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gauged/internal/core"
)

// SQLiteStorage implements storage.Storage using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// New creates a new SQLite storage instance
func New(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

// migrate creates the database schema
func (s *SQLiteStorage) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			display_name TEXT NOT NULL,
			workspace_identifier TEXT,
			auth_type TEXT NOT NULL,
			sync_enabled INTEGER NOT NULL DEFAULT 1,
			sync_interval_seconds INTEGER NOT NULL DEFAULT 0,
			credential_ref TEXT,
			last_validated_at DATETIME,
			expires_at DATETIME,
			status TEXT NOT NULL DEFAULT 'unknown',
			last_error TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS usage_snapshots (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			window_type TEXT NOT NULL,
			window_start DATETIME NOT NULL,
			window_end DATETIME NOT NULL,
			used_value REAL NOT NULL,
			used_unit TEXT NOT NULL,
			limit_value REAL NOT NULL,
			limit_unit TEXT NOT NULL,
			remaining_value REAL NOT NULL,
			battery_percent REAL NOT NULL,
			confidence TEXT NOT NULL,
			source TEXT NOT NULL,
			fetched_at DATETIME NOT NULL,
			FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_account_fetched
			ON usage_snapshots(account_id, fetched_at);

		CREATE TABLE IF NOT EXISTS battery_status (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			battery_percent REAL NOT NULL,
			is_low INTEGER NOT NULL,
			threshold REAL NOT NULL,
			health TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_battery_status_account
			ON battery_status(account_id);

		CREATE TABLE IF NOT EXISTS sync_runs (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL,
			result TEXT NOT NULL,
			error_kind TEXT,
			error_message TEXT,
			retry_count INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_sync_runs_account
			ON sync_runs(account_id, started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// UpsertAccount inserts or updates an account
func (s *SQLiteStorage) UpsertAccount(ctx context.Context, account *core.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, provider, display_name, workspace_identifier, auth_type,
			sync_enabled, sync_interval_seconds, credential_ref, last_validated_at, expires_at,
			status, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider = excluded.provider,
			display_name = excluded.display_name,
			workspace_identifier = excluded.workspace_identifier,
			auth_type = excluded.auth_type,
			sync_enabled = excluded.sync_enabled,
			sync_interval_seconds = excluded.sync_interval_seconds,
			credential_ref = excluded.credential_ref,
			last_validated_at = excluded.last_validated_at,
			expires_at = excluded.expires_at,
			status = excluded.status,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`, account.ID, account.Provider, account.DisplayName, nullString(account.WorkspaceIdentifier),
		account.AuthType, account.SyncEnabled, account.SyncIntervalSeconds,
		nullString(account.CredentialRef), nullTime(account.LastValidatedAt), nullTime(account.ExpiresAt),
		account.Status, nullString(account.LastError), account.CreatedAt, account.UpdatedAt)

	return err
}

const accountColumns = `id, provider, display_name, workspace_identifier, auth_type,
	sync_enabled, sync_interval_seconds, credential_ref, last_validated_at, expires_at,
	status, last_error, created_at, updated_at`

// GetAccount retrieves an account by ID
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*core.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = ?
	`, id)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves all accounts
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]*core.Account, error) {
	return s.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY display_name`)
}

// FetchEnabledAccounts retrieves all accounts with syncing enabled
func (s *SQLiteStorage) FetchEnabledAccounts(ctx context.Context) ([]*core.Account, error) {
	return s.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts WHERE sync_enabled = 1 ORDER BY display_name`)
}

func (s *SQLiteStorage) queryAccounts(ctx context.Context, query string) ([]*core.Account, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// DeleteAccount deletes an account and, via cascade, its history
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.ErrAccountNotFound
	}

	return nil
}

// InsertSnapshot appends a usage snapshot
func (s *SQLiteStorage) InsertSnapshot(ctx context.Context, snapshot *core.UsageSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_snapshots (id, account_id, provider, window_type, window_start, window_end,
			used_value, used_unit, limit_value, limit_unit, remaining_value, battery_percent,
			confidence, source, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshot.ID, snapshot.AccountID, snapshot.Provider, snapshot.WindowType,
		snapshot.WindowStart, snapshot.WindowEnd, snapshot.UsedValue, snapshot.UsedUnit,
		snapshot.LimitValue, snapshot.LimitUnit, snapshot.RemainingValue, snapshot.BatteryPercent,
		snapshot.Confidence, snapshot.Source, snapshot.FetchedAt)

	return err
}

// RecentSnapshots retrieves the most recent snapshots for an account,
// newest first
func (s *SQLiteStorage) RecentSnapshots(ctx context.Context, accountID string, limit int) ([]*core.UsageSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, provider, window_type, window_start, window_end,
			used_value, used_unit, limit_value, limit_unit, remaining_value, battery_percent,
			confidence, source, fetched_at
		FROM usage_snapshots
		WHERE account_id = ?
		ORDER BY fetched_at DESC
		LIMIT ?
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*core.UsageSnapshot
	for rows.Next() {
		var snapshot core.UsageSnapshot
		if err := rows.Scan(&snapshot.ID, &snapshot.AccountID, &snapshot.Provider, &snapshot.WindowType,
			&snapshot.WindowStart, &snapshot.WindowEnd, &snapshot.UsedValue, &snapshot.UsedUnit,
			&snapshot.LimitValue, &snapshot.LimitUnit, &snapshot.RemainingValue, &snapshot.BatteryPercent,
			&snapshot.Confidence, &snapshot.Source, &snapshot.FetchedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, &snapshot)
	}

	return snapshots, rows.Err()
}

// InsertBatteryStatus appends a battery status row
func (s *SQLiteStorage) InsertBatteryStatus(ctx context.Context, status *core.BatteryStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO battery_status (id, account_id, battery_percent, is_low, threshold, health, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, status.ID, status.AccountID, status.BatteryPercent, status.IsLow,
		status.Threshold, status.Health, status.UpdatedAt)

	return err
}

// LatestBatteryStatuses retrieves the newest status row per account
func (s *SQLiteStorage) LatestBatteryStatuses(ctx context.Context) ([]*core.BatteryStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, battery_percent, is_low, threshold, health, updated_at
		FROM battery_status
		WHERE rowid IN (SELECT MAX(rowid) FROM battery_status GROUP BY account_id)
		ORDER BY account_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []*core.BatteryStatus
	for rows.Next() {
		var status core.BatteryStatus
		if err := rows.Scan(&status.ID, &status.AccountID, &status.BatteryPercent,
			&status.IsLow, &status.Threshold, &status.Health, &status.UpdatedAt); err != nil {
			return nil, err
		}
		statuses = append(statuses, &status)
	}

	return statuses, rows.Err()
}

// InsertSyncRun appends a sync run audit record
func (s *SQLiteStorage) InsertSyncRun(ctx context.Context, run *core.SyncRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, account_id, started_at, ended_at, result, error_kind, error_message, retry_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.AccountID, run.StartedAt, run.EndedAt, run.Result,
		nullString(string(run.ErrorKind)), nullString(run.ErrorMessage), run.RetryCount)

	return err
}

// ListSyncRuns retrieves the most recent sync runs for an account, newest first
func (s *SQLiteStorage) ListSyncRuns(ctx context.Context, accountID string, limit int) ([]*core.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, started_at, ended_at, result, error_kind, error_message, retry_count
		FROM sync_runs
		WHERE account_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*core.SyncRun
	for rows.Next() {
		var run core.SyncRun
		var errorKind, errorMessage sql.NullString
		if err := rows.Scan(&run.ID, &run.AccountID, &run.StartedAt, &run.EndedAt,
			&run.Result, &errorKind, &errorMessage, &run.RetryCount); err != nil {
			return nil, err
		}
		run.ErrorKind = core.ErrorKind(errorKind.String)
		run.ErrorMessage = errorMessage.String
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row scanner) (*core.Account, error) {
	var account core.Account
	var workspace, credentialRef, lastError sql.NullString
	var lastValidatedAt, expiresAt sql.NullTime

	err := row.Scan(&account.ID, &account.Provider, &account.DisplayName, &workspace,
		&account.AuthType, &account.SyncEnabled, &account.SyncIntervalSeconds,
		&credentialRef, &lastValidatedAt, &expiresAt,
		&account.Status, &lastError, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	account.WorkspaceIdentifier = workspace.String
	account.CredentialRef = credentialRef.String
	account.LastError = lastError.String
	if lastValidatedAt.Valid {
		account.LastValidatedAt = &lastValidatedAt.Time
	}
	if expiresAt.Valid {
		account.ExpiresAt = &expiresAt.Time
	}

	return &account, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
