package services

import (
	"context"
	"errors"
	"fmt"

	"expenses/internal/core"
	"expenses/internal/log"
)

type (
	// ReceiptJournal stores rows locally.
	ReceiptJournal interface {
		Append(ctx context.Context, row core.Row) (string, error)
		Close() error
	}

	// SyncPublisher announces journal entries to the sync worker.
	SyncPublisher interface {
		PublishReceiptSync(ctx context.Context, id string, version int64) error
		Close() error
	}
)

// ReceiptService saves receipts to the local journal and asks the worker to
// mirror them to the spreadsheet.
type ReceiptService struct {
	journal   ReceiptJournal
	publisher SyncPublisher
	logger    *log.Logger
}

// NewReceiptService accepts a nil publisher; entries then wait for the
// worker's pending sweep.
func NewReceiptService(journal ReceiptJournal, publisher SyncPublisher, logger *log.Logger) *ReceiptService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReceiptService{
		journal:   journal,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// CreateReceipt saves the row and publishes a sync message. Publishing
// failures are logged only: the entry is safe in the journal.
func (s *ReceiptService) CreateReceipt(ctx context.Context, row core.Row) (string, error) {
	id, err := s.journal.Append(ctx, row)
	if err != nil {
		return "", fmt.Errorf("save receipt: %w", err)
	}

	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, receipt left for pending sweep", log.FieldReceiptID, id)
		return id, nil
	}
	if err := s.publisher.PublishReceiptSync(ctx, id, 1); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			log.FieldReceiptID, id,
			log.FieldError, err)
	}
	return id, nil
}

// Close closes the journal and the publisher.
func (s *ReceiptService) Close() error {
	var errs []error
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("journal: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close receipt service: %w", err)
	}
	return nil
}
