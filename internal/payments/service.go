package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

// StorePort abstracts repository usage for service.
type StorePort interface {
	ListRange(ctx context.Context, from, to time.Time) ([]DailyPayment, error)
	RebuildAll(ctx context.Context) (int64, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service reads the rollup and runs full rebuilds. The transactional path
// in sales keeps day totals current; RebuildAll exists for reconciliation
// after manual database surgery or suspected drift.
type Service struct {
	store StorePort
	authz shared.Authorizer
	audit AuditPort
}

// NewService builds Service.
func NewService(store StorePort, authz shared.Authorizer, audit AuditPort) *Service {
	return &Service{store: store, authz: authz, audit: audit}
}

// ListRange returns rollup rows for the closed date range.
func (s *Service) ListRange(ctx context.Context, from, to time.Time) ([]DailyPayment, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	return s.store.ListRange(ctx, from, to)
}

// RebuildAll regenerates every day total from verified sales.
func (s *Service) RebuildAll(ctx context.Context) (int64, error) {
	actorID := shared.ActorFromContext(ctx)
	allowed, err := s.authz.Allowed(ctx, actorID, shared.PermPaymentsRebuild)
	if err != nil {
		return 0, fmt.Errorf("payments: authorize rebuild: %w", err)
	}
	if !allowed {
		return 0, shared.ErrPermissionDenied
	}
	rebuilt, err := s.store.RebuildAll(ctx)
	if err != nil {
		return 0, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "PAYMENTS_REBUILD",
			Entity:   "daily_payment",
			EntityID: "all",
			Meta:     map[string]any{"days": rebuilt},
		})
	}
	return rebuilt, nil
}
