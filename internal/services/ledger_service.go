package services

import (
	"context"
	"fmt"

	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/sheets"
)

// LedgerService runs the receipt operations of a session against whichever
// backend is configured.
type LedgerService struct {
	ledger sheets.Ledger
	logger *log.Logger
}

func NewLedgerService(ledger sheets.Ledger, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{ledger: ledger, logger: logger.WithComponent(log.ComponentLedger)}
}

// Record appends the receipt's row and returns the backend reference.
func (s *LedgerService) Record(ctx context.Context, r *core.Receipt) (string, error) {
	row := r.Row()
	ref, err := s.ledger.Append(ctx, row)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to record receipt",
			log.NewFields().WithOperation(log.OpAppend).WithError(err).
				WithReceipt(row.Date, row.Store, row.Type, r.TotalCost().Cents).ToSlice()...)
		return "", fmt.Errorf("record receipt: %w", err)
	}
	s.logger.InfoContext(ctx, "Receipt recorded",
		log.NewFields().WithOperation(log.OpAppend).
			WithReceipt(row.Date, row.Store, row.Type, r.TotalCost().Cents).ToSlice()...)
	return ref, nil
}

// Sort reorders every record by date or cost and writes them back. An empty
// ledger is left untouched.
func (s *LedgerService) Sort(ctx context.Context, by string) (core.Table, error) {
	table, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return core.Table{}, fmt.Errorf("read receipts: %w", err)
	}

	var sorted core.Table
	switch by {
	case SortByDate:
		sorted = SortRowsByDate(table)
	case SortByCost:
		sorted, err = SortRowsByCost(table)
		if err != nil {
			return core.Table{}, fmt.Errorf("sort by cost: %w", err)
		}
	default:
		return core.Table{}, fmt.Errorf("%w: %q", ErrUnknownSortKey, by)
	}

	if len(sorted.Rows) == 0 {
		return sorted, nil
	}
	if err := s.ledger.Rewrite(ctx, sorted); err != nil {
		return core.Table{}, fmt.Errorf("write sorted receipts: %w", err)
	}
	s.logger.InfoContext(ctx, "Receipts sorted",
		log.FieldOperation, log.OpSort,
		log.FieldSortBy, by,
		log.FieldRowCount, len(sorted.Rows))
	return sorted, nil
}

// Table returns every record with its header.
func (s *LedgerService) Table(ctx context.Context) (core.Table, error) {
	table, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return core.Table{}, fmt.Errorf("read receipts: %w", err)
	}
	return table, nil
}

func (s *LedgerService) Info(ctx context.Context) (core.ConnectionInfo, error) {
	return s.ledger.Info(ctx)
}
