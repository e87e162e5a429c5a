package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"expenses/internal/core"
	"expenses/internal/log"
	ports "expenses/internal/sheets"

	_ "modernc.org/sqlite"
)

// Sync states of a journal entry.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// JournalName is reported as the worksheet of the sqlite backend.
const JournalName = "receipts"

var ErrReceiptNotFound = errors.New("receipt not found")

// Receipt is a journal entry: one recorded row plus its sync bookkeeping.
type Receipt struct {
	ID         string
	Position   int64
	Row        core.Row
	Version    int64
	SyncStatus string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PendingSyncReceipt carries what a sync message needs.
type PendingSyncReceipt struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger *log.Logger
	now    func() time.Time
}

var _ ports.Ledger = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the journal at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := RunMigrations(dbPath, logger); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		path:   dbPath,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append stores the row after the last entry and returns its new ID.
func (r *SQLiteRepository) Append(ctx context.Context, row core.Row) (string, error) {
	id := uuid.NewString()
	ts := r.timestamp()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO receipts (id, position, date, store, total, items, type, notes, version, sync_status, created_at, updated_at)
		SELECT ?, COALESCE(MAX(position), 0) + 1, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?
		FROM receipts`,
		id, row.Date, row.Store, row.Total, row.Items, row.Type, row.Notes, SyncPending, ts, ts)
	if err != nil {
		return "", fmt.Errorf("insert receipt: %w", err)
	}

	r.logger.InfoContext(ctx, "Receipt saved to journal",
		log.FieldReceiptID, id,
		log.FieldStore, row.Store,
		log.FieldDate, row.Date)
	return id, nil
}

// ReadAll returns every entry in position order. Row.Ref holds the entry ID.
func (r *SQLiteRepository) ReadAll(ctx context.Context) (core.Table, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, store, total, items, type, notes
		FROM receipts
		ORDER BY position`)
	if err != nil {
		return core.Table{}, fmt.Errorf("query receipts: %w", err)
	}
	defer rows.Close()

	table := core.Table{Header: core.DefaultHeader()}
	for rows.Next() {
		var row core.Row
		if err := rows.Scan(&row.Ref, &row.Date, &row.Store, &row.Total, &row.Items, &row.Type, &row.Notes); err != nil {
			return core.Table{}, fmt.Errorf("scan receipt: %w", err)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return core.Table{}, fmt.Errorf("iterate receipts: %w", err)
	}
	return table, nil
}

// Rewrite stores the rows in the given order, matching entries by Row.Ref.
// Sync state is left alone: the spreadsheet mirror is append-only.
func (r *SQLiteRepository) Rewrite(ctx context.Context, table core.Table) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rewrite: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE receipts
		SET position = ?, date = ?, store = ?, total = ?, items = ?, type = ?, notes = ?, updated_at = ?
		WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare rewrite: %w", err)
	}
	defer stmt.Close()

	ts := r.timestamp()
	for i, row := range table.Rows {
		res, err := stmt.ExecContext(ctx, i+1, row.Date, row.Store, row.Total, row.Items, row.Type, row.Notes, ts, row.Ref)
		if err != nil {
			return fmt.Errorf("rewrite receipt %s: %w", row.Ref, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("rewrite receipt %q: %w", row.Ref, ErrReceiptNotFound)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rewrite: %w", err)
	}

	r.logger.InfoContext(ctx, "Journal rewritten", log.FieldRowCount, len(table.Rows))
	return nil
}

func (r *SQLiteRepository) Info(_ context.Context) (core.ConnectionInfo, error) {
	return core.ConnectionInfo{Backend: "sqlite", Spreadsheet: r.path, Worksheet: JournalName}, nil
}

// GetReceipt loads a single entry by ID.
func (r *SQLiteRepository) GetReceipt(ctx context.Context, id string) (*Receipt, error) {
	var (
		rec                  Receipt
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, position, date, store, total, items, type, notes, version, sync_status, created_at, updated_at
		FROM receipts
		WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Position, &rec.Row.Date, &rec.Row.Store, &rec.Row.Total, &rec.Row.Items,
			&rec.Row.Type, &rec.Row.Notes, &rec.Version, &rec.SyncStatus, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get receipt %s: %w", id, ErrReceiptNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get receipt %s: %w", id, err)
	}
	rec.Row.Ref = rec.ID
	rec.CreatedAt = parseTimestamp(createdAt)
	rec.UpdatedAt = parseTimestamp(updatedAt)
	return &rec, nil
}

// PendingSync lists entries not yet mirrored, including ones whose last
// attempt failed, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingSyncReceipt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at
		FROM receipts
		WHERE sync_status IN (?, ?)
		ORDER BY created_at, position
		LIMIT ?`, SyncPending, SyncError, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending receipts: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncReceipt
	for rows.Next() {
		var (
			p         PendingSyncReceipt
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending receipt: %w", err)
		}
		p.CreatedAt = parseTimestamp(createdAt)
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced records a successful mirror of the entry.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if err := r.setSyncStatus(ctx, id, SyncSynced); err != nil {
		return fmt.Errorf("mark receipt synced: %w", err)
	}
	r.logger.InfoContext(ctx, "Receipt marked as synced", log.FieldReceiptID, id)
	return nil
}

// MarkSyncError records a failed mirror attempt; the entry stays eligible
// for PendingSync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.setSyncStatus(ctx, id, SyncError); err != nil {
		return fmt.Errorf("mark receipt sync error: %w", err)
	}
	r.logger.WarnContext(ctx, "Receipt marked with sync error", log.FieldReceiptID, id)
	return nil
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE receipts SET sync_status = ?, updated_at = ? WHERE id = ?`,
		status, r.timestamp(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrReceiptNotFound)
	}
	return nil
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
