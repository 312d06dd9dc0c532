package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"finai/internal/amqp"
	"finai/internal/log"
	"finai/internal/storage"
)

// Screener is the part of the onboarding service the worker drives.
type Screener interface {
	ScreenDocument(ctx context.Context, id int64) (storage.KycDocument, error)
	ScreenPending(ctx context.Context, limit int) (int, error)
}

// Consumer delivers screening messages until ctx is done.
type Consumer interface {
	ConsumeKYCScreening(ctx context.Context, handler func(context.Context, *amqp.KYCScreeningMessage) error) error
}

// ScreeningWorker runs CRB screening for KYC documents queued by the server.
// Besides handling messages it periodically sweeps documents still pending,
// which covers messages lost while the broker was unreachable.
type ScreeningWorker struct {
	screener  Screener
	batchSize int
	logger    *log.Logger
}

func NewScreeningWorker(screener Screener, batchSize int, logger *log.Logger) *ScreeningWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ScreeningWorker{
		screener:  screener,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleScreeningMessage screens the document named by msg. Unknown
// documents are dropped rather than requeued.
func (w *ScreeningWorker) HandleScreeningMessage(ctx context.Context, msg *amqp.KYCScreeningMessage) error {
	w.logger.InfoContext(ctx, "Processing screening message",
		log.FieldDocumentID, msg.DocumentID,
		log.FieldFilename, msg.Filename)

	doc, err := w.screener.ScreenDocument(ctx, msg.DocumentID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.WarnContext(ctx, "Screening message for unknown document, dropping",
			log.FieldDocumentID, msg.DocumentID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("screen document %d: %w", msg.DocumentID, err)
	}

	w.logger.InfoContext(ctx, "Screening message processed",
		log.FieldDocumentID, doc.ID,
		log.FieldDocStatus, doc.Status,
		log.FieldCRBScore, doc.CrbScore.Int64)
	return nil
}

// ProcessPending screens one batch of pending documents.
func (w *ScreeningWorker) ProcessPending(ctx context.Context) error {
	n, err := w.screener.ScreenPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("screen pending documents: %w", err)
	}
	if n > 0 {
		w.logger.InfoContext(ctx, "Screened pending documents", "count", n)
	}
	return nil
}

// StartupCheck screens a larger batch at startup to recover from downtime.
func (w *ScreeningWorker) StartupCheck(ctx context.Context) error {
	n, err := w.screener.ScreenPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup screening check: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup screening check completed", "screened", n)
	return nil
}

// Run consumes messages (when consumer is not nil) and sweeps pending
// documents every interval until ctx is cancelled or the consumer fails.
func (w *ScreeningWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	if err := w.StartupCheck(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup check failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeKYCScreening(ctx, w.HandleScreeningMessage)
		})
	} else {
		w.logger.InfoContext(ctx, "No AMQP consumer configured, relying on periodic sweep")
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					w.logger.ErrorContext(ctx, "Periodic screening sweep failed", log.FieldError, err)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
