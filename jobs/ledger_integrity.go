package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/pitstop-erp/pitstop-erp/internal/ledger"
)

// OrphanScanner finds ledger entries whose referenced document no longer
// exists. *ledger.Repository implements it.
type OrphanScanner interface {
	OrphanedReferences(ctx context.Context) ([]ledger.Transaction, error)
}

// LedgerIntegrityJob scans for orphaned ledger references. Findings are
// logged for ops follow-up; reconciliation itself never consumes them.
type LedgerIntegrityJob struct {
	scanner OrphanScanner
	logger  *slog.Logger
}

// NewLedgerIntegrityJob constructs the job.
func NewLedgerIntegrityJob(scanner OrphanScanner, logger *slog.Logger) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{scanner: scanner, logger: logger}
}

// Handle processes TaskLedgerIntegrity tasks.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, _ *asynq.Task) error {
	orphans, err := j.scanner.OrphanedReferences(ctx)
	if err != nil {
		j.logger.Error("ledger integrity scan failed", slog.Any("error", err))
		return err
	}
	if len(orphans) == 0 {
		j.logger.Info("ledger integrity scan clean")
		return nil
	}
	for _, orphan := range orphans {
		j.logger.Warn("orphaned ledger entry",
			slog.Int64("id", orphan.ID),
			slog.String("transactionNumber", orphan.TransactionNumber),
			slog.String("sourceType", string(orphan.SourceType)),
			slog.Int64("referenceId", orphan.ReferenceID),
			slog.Float64("amount", orphan.Amount))
	}
	j.logger.Warn("ledger integrity scan found orphans", slog.Int("count", len(orphans)))
	return nil
}
