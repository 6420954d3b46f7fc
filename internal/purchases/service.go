package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukaan-erp/dukaan-erp/internal/inventory"
	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

// StorePort abstracts repository usage for service.
type StorePort interface {
	CreateOrder(ctx context.Context, order PurchaseOrder) (int64, error)
	GetOrder(ctx context.Context, id int64) (PurchaseOrder, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]PurchaseOrder, error)
	CreateReturn(ctx context.Context, ret PurchaseReturn) (int64, error)
	GetReturn(ctx context.Context, id int64) (PurchaseReturn, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards externally resubmitted receive requests.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service runs the purchase order lifecycle. Receiving is the only path
// that increases stock; the weighted-average cost update happens inside
// the same transaction that flips the order to received.
type Service struct {
	store StorePort
	authz shared.Authorizer
	audit AuditPort
	idem  IdempotencyPort
}

// NewService builds Service.
func NewService(store StorePort, authz shared.Authorizer, audit AuditPort, idem IdempotencyPort) *Service {
	return &Service{store: store, authz: authz, audit: audit, idem: idem}
}

// CreatePending records a new order without touching stock.
func (s *Service) CreatePending(ctx context.Context, input CreateOrderInput) (PurchaseOrder, error) {
	if input.QuantityPurchased <= 0 {
		return PurchaseOrder{}, inventory.ErrInvalidQuantity
	}
	if input.CostPricePerUnit.IsNegative() {
		return PurchaseOrder{}, inventory.ErrInvalidUnitCost
	}
	if input.SellingPrice != nil && input.SellingPrice.IsNegative() {
		return PurchaseOrder{}, inventory.ErrInvalidUnitCost
	}
	purchaseDate := input.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = time.Now()
	}
	order := PurchaseOrder{
		StockItemID:       input.StockItemID,
		Supplier:          input.Supplier,
		QuantityPurchased: input.QuantityPurchased,
		CostPricePerUnit:  input.CostPricePerUnit,
		SellingPrice:      input.SellingPrice,
		TotalCost:         input.CostPricePerUnit.Mul(decimal.NewFromInt(input.QuantityPurchased)),
		Status:            StatusPending,
		PurchaseDate:      purchaseDate,
	}
	id, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return PurchaseOrder{}, fmt.Errorf("purchases: create order: %w", err)
	}
	order.ID = id
	s.recordAudit(ctx, "PURCHASE_CREATE", id, map[string]any{"stock_item_id": order.StockItemID, "quantity": order.QuantityPurchased})
	return order, nil
}

// GetOrder fetches a single order.
func (s *Service) GetOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.store.GetOrder(ctx, id)
}

// ListOrders returns orders matching the filter.
func (s *Service) ListOrders(ctx context.Context, filter ListFilter) ([]PurchaseOrder, error) {
	return s.store.ListOrders(ctx, filter)
}

// Receive marks the order received and folds the lot into the item's
// weighted-average cost, all in one transaction. A second call on the same
// order is a no-op reported as OutcomeAlreadyReceived. idemKey, when set,
// rejects duplicate external submissions before the transaction starts.
func (s *Service) Receive(ctx context.Context, orderID int64, idemKey string) (ReceiveOutcome, error) {
	actorID := shared.ActorFromContext(ctx)
	allowed, err := s.authz.Allowed(ctx, actorID, shared.PermPurchasesReceive)
	if err != nil {
		return "", fmt.Errorf("purchases: authorize receive: %w", err)
	}
	if !allowed {
		return "", shared.ErrPermissionDenied
	}

	if idemKey != "" && s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, idemKey, "purchases"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return OutcomeAlreadyReceived, nil
			}
			return "", err
		}
	}

	var outcome ReceiveOutcome
	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == StatusReceived {
			outcome = OutcomeAlreadyReceived
			return nil
		}

		item, err := tx.GetItemForUpdate(ctx, order.StockItemID)
		if err != nil {
			return err
		}
		if err := inventory.ApplyPurchaseReceipt(&item, order.QuantityPurchased, order.CostPricePerUnit, order.SellingPrice); err != nil {
			return err
		}
		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}

		now := time.Now()
		order.Status = StatusReceived
		order.ReceivedAt = &now
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		outcome = OutcomeReceived
		return nil
	})
	if err != nil {
		if idemKey != "" && s.idem != nil {
			_ = s.idem.Delete(ctx, idemKey)
		}
		return "", err
	}

	if outcome == OutcomeReceived {
		s.recordAudit(ctx, "PURCHASE_RECEIVE", orderID, nil)
	}
	return outcome, nil
}

// CreateReturn raises a pending return against a received order. Stock is
// deducted only when the return is processed.
func (s *Service) CreateReturn(ctx context.Context, input CreateReturnInput) (PurchaseReturn, error) {
	if input.Quantity <= 0 {
		return PurchaseReturn{}, inventory.ErrInvalidQuantity
	}
	order, err := s.store.GetOrder(ctx, input.PurchaseOrderID)
	if err != nil {
		return PurchaseReturn{}, err
	}
	if order.Status != StatusReceived {
		return PurchaseReturn{}, ErrReturnNotReceived
	}
	if input.Quantity > order.QuantityPurchased {
		return PurchaseReturn{}, ErrReturnTooLarge
	}
	ret := PurchaseReturn{
		PurchaseOrderID: order.ID,
		StockItemID:     order.StockItemID,
		Quantity:        input.Quantity,
		Reason:          input.Reason,
		Status:          ReturnPending,
	}
	id, err := s.store.CreateReturn(ctx, ret)
	if err != nil {
		return PurchaseReturn{}, fmt.Errorf("purchases: create return: %w", err)
	}
	ret.ID = id
	s.recordAudit(ctx, "PURCHASE_RETURN_CREATE", id, map[string]any{"purchase_order_id": order.ID, "quantity": input.Quantity})
	return ret, nil
}

// ProcessReturn deducts the returned quantity from stock and marks the
// return processed, in one transaction. Processing twice is a no-op
// reported through the outcome.
func (s *Service) ProcessReturn(ctx context.Context, returnID int64) (ProcessOutcome, error) {
	actorID := shared.ActorFromContext(ctx)
	allowed, err := s.authz.Allowed(ctx, actorID, shared.PermPurchasesReceive)
	if err != nil {
		return "", fmt.Errorf("purchases: authorize process return: %w", err)
	}
	if !allowed {
		return "", shared.ErrPermissionDenied
	}

	var outcome ProcessOutcome
	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		ret, err := tx.GetReturnForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if ret.Status == ReturnProcessed {
			outcome = OutcomeAlreadyProcessed
			return nil
		}

		item, err := tx.GetItemForUpdate(ctx, ret.StockItemID)
		if err != nil {
			return err
		}
		if err := inventory.ApplySaleDeduction(&item, ret.Quantity); err != nil {
			return err
		}
		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}

		now := time.Now()
		ret.Status = ReturnProcessed
		ret.ProcessedAt = &now
		if err := tx.UpdateReturn(ctx, ret); err != nil {
			return err
		}
		outcome = OutcomeProcessed
		return nil
	})
	if err != nil {
		return "", err
	}
	if outcome == OutcomeProcessed {
		s.recordAudit(ctx, "PURCHASE_RETURN_PROCESS", returnID, nil)
	}
	return outcome, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx),
		Action:   action,
		Entity:   "purchase_order",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	})
}
