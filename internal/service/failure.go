// Package service holds helpers shared by the use case packages.
package service

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/flightinventory/internal/domain"
)

// Failed passes domain errors through unchanged. Any other error is logged
// with the operation name and replaced by a generic OperationFailed.
func Failed(ctx context.Context, log *slog.Logger, op string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}
	if domain.IsDomain(err) {
		return err
	}
	if log == nil {
		log = slog.Default()
	}
	log.ErrorContext(ctx, op+" failed", append(attrs, slog.Any("error", err))...)
	return domain.OperationFailed()
}
