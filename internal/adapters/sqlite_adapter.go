package adapters

import (
	"context"

	"expenses/internal/core"
	"expenses/internal/services"
	"expenses/internal/sheets"
	"expenses/internal/storage"
)

var _ sheets.Ledger = (*SQLiteAdapter)(nil)

// SQLiteAdapter lets a session use the local journal as its ledger. New
// receipts go through ReceiptService so that they are queued for sync.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.ReceiptService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.ReceiptService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements sheets.ReceiptWriter
func (a *SQLiteAdapter) Append(ctx context.Context, row core.Row) (string, error) {
	return a.service.CreateReceipt(ctx, row)
}

// ReadAll implements sheets.ReceiptReader
func (a *SQLiteAdapter) ReadAll(ctx context.Context) (core.Table, error) {
	return a.storage.ReadAll(ctx)
}

// Rewrite implements sheets.ReceiptRewriter
func (a *SQLiteAdapter) Rewrite(ctx context.Context, table core.Table) error {
	return a.storage.Rewrite(ctx, table)
}

// Info implements sheets.InfoProvider
func (a *SQLiteAdapter) Info(ctx context.Context) (core.ConnectionInfo, error) {
	return a.storage.Info(ctx)
}
