package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/log"
	"expenses/internal/ratelimit"
	"expenses/internal/sheets"
	"expenses/internal/storage"
)

// Journal is the part of the local journal the worker needs.
type Journal interface {
	GetReceipt(ctx context.Context, id string) (*storage.Receipt, error)
	PendingSync(ctx context.Context, limit int) ([]storage.PendingSyncReceipt, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// ErrQuotaExhausted means the write budget for the current minute is spent.
// The entry stays pending for a later sweep.
var ErrQuotaExhausted = errors.New("sheets write quota exhausted")

const quotaKey = "sheets"

// SyncWorker mirrors journal entries to the spreadsheet.
type SyncWorker struct {
	journal   Journal
	sheets    sheets.ReceiptWriter
	limiter   *ratelimit.Limiter
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(journal Journal, writer sheets.ReceiptWriter, batchSize int, logger *log.Logger) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		journal:   journal,
		sheets:    writer,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// WithLimiter caps appends per minute. A nil limiter removes the cap.
func (w *SyncWorker) WithLimiter(l *ratelimit.Limiter) *SyncWorker {
	w.limiter = l
	return w
}

// HandleSyncMessage mirrors the entry named by msg. Entries that are gone,
// already synced or newer than the message are acknowledged without work.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ReceiptSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		log.FieldReceiptID, msg.ID,
		log.FieldVersion, msg.Version)

	rec, err := w.journal.GetReceipt(ctx, msg.ID)
	if errors.Is(err, storage.ErrReceiptNotFound) {
		w.logger.WarnContext(ctx, "Receipt no longer in journal, skipping", log.FieldReceiptID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get receipt from journal: %w", err)
	}

	if rec.SyncStatus == storage.SyncSynced {
		w.logger.DebugContext(ctx, "Receipt already synced", log.FieldReceiptID, rec.ID)
		return nil
	}
	if msg.Version < rec.Version {
		w.logger.DebugContext(ctx, "Stale sync message",
			log.FieldReceiptID, rec.ID,
			log.FieldVersion, msg.Version,
			"current_version", rec.Version)
		return nil
	}

	err = w.syncReceipt(ctx, rec)
	if errors.Is(err, ErrQuotaExhausted) {
		w.logger.WarnContext(ctx, "Write quota reached, leaving receipt for the periodic sweep",
			log.FieldReceiptID, rec.ID,
			"retry_after", w.limiter.RetryAfter(quotaKey))
		return nil
	}
	return err
}

// ProcessPending mirrors one batch of unsynced entries. It backs up lost
// messages and returns how many entries were synced.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processBatch(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger sweep when the worker starts to recover
// from downtime or missed messages.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processBatch(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup sync completed", log.FieldCount, synced)
	return nil
}

// RunPeriodic calls ProcessPending every interval until ctx is done.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", log.FieldError, err)
			}
		}
	}
}

func (w *SyncWorker) processBatch(ctx context.Context, limit int) (int, error) {
	pending, err := w.journal.PendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending receipts: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending receipts", log.FieldCount, len(pending))

	synced := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		rec, err := w.journal.GetReceipt(ctx, p.ID)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to get receipt", log.FieldReceiptID, p.ID, log.FieldError, err)
			continue
		}
		if err := w.syncReceipt(ctx, rec); err != nil {
			if errors.Is(err, ErrQuotaExhausted) {
				w.logger.WarnContext(ctx, "Write quota reached, stopping batch",
					log.FieldCount, synced,
					"retry_after", w.limiter.RetryAfter(quotaKey))
				return synced, nil
			}
			w.logger.ErrorContext(ctx, "Failed to sync receipt", log.FieldReceiptID, p.ID, log.FieldError, err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (w *SyncWorker) syncReceipt(ctx context.Context, rec *storage.Receipt) error {
	if !w.limiter.Allow(quotaKey) {
		return ErrQuotaExhausted
	}

	row := rec.Row
	row.Ref = ""

	ref, err := w.sheets.Append(ctx, row)
	if err != nil {
		if markErr := w.journal.MarkSyncError(ctx, rec.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", log.FieldReceiptID, rec.ID, log.FieldError, markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	// The row is on the sheet; a failed mark only means a possible duplicate later.
	if err := w.journal.MarkSynced(ctx, rec.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced", log.FieldReceiptID, rec.ID, log.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Synced receipt",
		log.FieldReceiptID, rec.ID,
		log.FieldRowRef, ref,
		log.FieldStore, row.Store,
		log.FieldDate, row.Date)
	return nil
}
