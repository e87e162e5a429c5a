package sheets

import (
	"context"

	"expenses/internal/core"
)

// Ports for outbound adapters.
type (
	ReceiptWriter interface {
		Append(ctx context.Context, row core.Row) (rowRef string, err error)
	}

	// ReceiptReader returns every record of the receipts worksheet.
	ReceiptReader interface {
		ReadAll(ctx context.Context) (core.Table, error)
	}

	// ReceiptRewriter replaces the full record set, e.g. after sorting.
	// Tables passed in must come from ReadAll of the same backend.
	ReceiptRewriter interface {
		Rewrite(ctx context.Context, table core.Table) error
	}

	// InfoProvider describes what the backend is connected to.
	InfoProvider interface {
		Info(ctx context.Context) (core.ConnectionInfo, error)
	}

	// Ledger is everything a session needs from a backend.
	Ledger interface {
		ReceiptWriter
		ReceiptReader
		ReceiptRewriter
		InfoProvider
	}
)
