package consumer

import (
	"context"
	"encoding/json"

	"go-payrun/internal/events"
	"go-payrun/internal/payrun"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeFinanceSyncAcks marks runs SYNCED once the finance system
// acknowledges ingestion. Decode failures are committed and dropped;
// service failures are retried on the next fetch.
func ConsumeFinanceSyncAcks(
	ctx context.Context,
	reader *kafkago.Reader,
	payrunService payrun.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.finance_sync_ack")
	log.Info("finance sync ack consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("finance sync ack consumer stopped")
				return
			}
			log.Error("fetch finance sync ack failed", zap.Error(err))
			continue
		}

		var event events.PayrollRunSyncAckedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode finance sync ack failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := payrunService.MarkSynced(ctx, event.CompanyID, event.RunID); err != nil {
			log.Error("mark run synced failed",
				zap.String("run_id", event.RunID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit finance sync ack failed", zap.Error(err))
			continue
		}

		log.Info("payroll run marked synced",
			zap.String("run_id", event.RunID),
			zap.String("company_id", event.CompanyID),
		)
	}
}
