package auditsvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corray333/foodorder/internal/dal/interfaces/iauditrepo"
	"github.com/corray333/foodorder/internal/service/models/event"
	"go.opentelemetry.io/otel"
)

// AuditService records order lifecycle events as status history.
type AuditService struct {
	auditRepo iauditrepo.IAuditRepository
}

// option is a function that configures the AuditService.
type option func(*AuditService)

// MustNewAuditService creates a new AuditService.
func MustNewAuditService(opts ...option) *AuditService {
	s := &AuditService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.auditRepo == nil {
		panic("auditsvc: audit repository is not configured")
	}

	return s
}

// WithAuditRepository sets the audit repository for the AuditService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditRepository(auditRepo iauditrepo.IAuditRepository) option {
	return func(s *AuditService) {
		s.auditRepo = auditRepo
	}
}

// ProcessEvent stores the event once. Redelivered events are acknowledged without a second row.
func (s *AuditService) ProcessEvent(ctx context.Context, evt event.OrderEvent) error {
	ctx, span := otel.Tracer("service").Start(ctx, "AuditService.ProcessEvent")
	defer span.End()

	stored, err := s.auditRepo.SaveHistory(ctx, evt.ToHistoryEntry())
	if err != nil {
		return fmt.Errorf("failed to save status history: %w", err)
	}

	if !stored {
		slog.InfoContext(ctx, "Duplicate order event skipped", "event_id", evt.EventID, "order_id", evt.OrderID)
		return nil
	}

	slog.InfoContext(ctx, "Order event recorded",
		"event_id", evt.EventID,
		"order_id", evt.OrderID,
		"type", evt.Type,
		"status", evt.Status)

	return nil
}
