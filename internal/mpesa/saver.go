package mpesa

import (
	"context"
	"errors"
	"log/slog"
)

// TransactionSaver persists a completed transaction reported by a callback.
type TransactionSaver interface {
	SaveTransaction(ctx context.Context, tx Transaction) error
}

type SaverFunc func(ctx context.Context, tx Transaction) error

func (f SaverFunc) SaveTransaction(ctx context.Context, tx Transaction) error {
	return f(ctx, tx)
}

// LogSaver only logs the transaction. It is used when no storage is
// configured.
type LogSaver struct {
	logger *slog.Logger
}

func NewLogSaver(logger *slog.Logger) *LogSaver {
	return &LogSaver{logger: logger}
}

func (s *LogSaver) SaveTransaction(ctx context.Context, tx Transaction) error {
	s.logger.InfoContext(ctx, "Transaction saved", "transaction", tx)
	return nil
}

// Savers calls every saver in order and joins their errors.
type Savers []TransactionSaver

func (s Savers) SaveTransaction(ctx context.Context, tx Transaction) error {
	var errs []error
	for _, saver := range s {
		if err := saver.SaveTransaction(ctx, tx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
