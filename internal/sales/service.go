package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukaan-erp/dukaan-erp/internal/inventory"
	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

// StorePort abstracts repository usage for service.
type StorePort interface {
	CreateSale(ctx context.Context, sale SaleRecord) (int64, error)
	GetSale(ctx context.Context, id int64) (SaleRecord, error)
	ListSales(ctx context.Context, filter ListFilter) ([]SaleRecord, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}

// ItemPort reads stock items for price snapshots outside transactions.
type ItemPort interface {
	GetItem(ctx context.Context, id int64) (inventory.StockItem, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards externally resubmitted verify requests.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service runs the sale lifecycle. Verification is the only path that
// deducts stock, and the deduction, the status flip and the daily rollup
// update commit or roll back together.
type Service struct {
	store StorePort
	items ItemPort
	authz shared.Authorizer
	audit AuditPort
	idem  IdempotencyPort
}

// NewService builds Service.
func NewService(store StorePort, items ItemPort, authz shared.Authorizer, audit AuditPort, idem IdempotencyPort) *Service {
	return &Service{store: store, items: items, authz: authz, audit: audit, idem: idem}
}

// CreateDraft records a sale without touching stock. The unit price is
// snapshotted from the item's current list price unless the input overrides
// it; later repricing never changes an existing record. Financials are
// provisional, computed against the item's current cost, until verification
// re-snapshots the cost.
func (s *Service) CreateDraft(ctx context.Context, input CreateSaleInput) (SaleRecord, error) {
	if input.QuantitySold <= 0 {
		return SaleRecord{}, inventory.ErrInvalidQuantity
	}
	item, err := s.items.GetItem(ctx, input.StockItemID)
	if err != nil {
		return SaleRecord{}, err
	}
	price := item.SellingPrice
	if input.PricePerUnit != nil {
		if input.PricePerUnit.IsNegative() {
			return SaleRecord{}, inventory.ErrInvalidUnitCost
		}
		price = input.PricePerUnit.Round(2)
	}
	saleDate := input.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now()
	}
	total, profit := financials(input.QuantitySold, price, item.CostPrice)
	sale := SaleRecord{
		StockItemID:  input.StockItemID,
		Customer:     input.Customer,
		QuantitySold: input.QuantitySold,
		PricePerUnit: price,
		CostPerUnit:  item.CostPrice,
		TotalAmount:  total,
		Profit:       profit,
		Status:       StatusDraft,
		SaleDate:     saleDate,
	}
	id, err := s.store.CreateSale(ctx, sale)
	if err != nil {
		return SaleRecord{}, fmt.Errorf("sales: create draft: %w", err)
	}
	sale.ID = id
	s.recordAudit(ctx, "SALE_CREATE", id, map[string]any{"stock_item_id": sale.StockItemID, "quantity": sale.QuantitySold})
	return sale, nil
}

// GetSale fetches a single record.
func (s *Service) GetSale(ctx context.Context, id int64) (SaleRecord, error) {
	return s.store.GetSale(ctx, id)
}

// ListSales returns records matching the filter.
func (s *Service) ListSales(ctx context.Context, filter ListFilter) ([]SaleRecord, error) {
	return s.store.ListSales(ctx, filter)
}

// SalesBetween returns verified sales in the closed date range, oldest
// first. Feeds the sales report.
func (s *Service) SalesBetween(ctx context.Context, from, to time.Time) ([]SaleRecord, error) {
	records, err := s.store.ListSales(ctx, ListFilter{Status: StatusVerified, From: from, To: to, Limit: 10000})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Verify deducts stock, snapshots the cost, marks the record verified and
// recomputes the day's rollup, all in one transaction. Outcomes instead of
// errors for the two expected non-transitions: verifying twice is a no-op,
// and insufficient stock leaves the record a draft.
func (s *Service) Verify(ctx context.Context, saleID int64, idemKey string) (VerifyOutcome, error) {
	actorID := shared.ActorFromContext(ctx)
	allowed, err := s.authz.Allowed(ctx, actorID, shared.PermSalesVerify)
	if err != nil {
		return "", fmt.Errorf("sales: authorize verify: %w", err)
	}
	if !allowed {
		return "", shared.ErrPermissionDenied
	}

	if idemKey != "" && s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, idemKey, "sales"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return OutcomeAlreadyVerified, nil
			}
			return "", err
		}
	}

	outcome, err := s.verifyTx(ctx, saleID)
	if err != nil {
		if idemKey != "" && s.idem != nil {
			_ = s.idem.Delete(ctx, idemKey)
		}
		return "", err
	}
	if outcome == OutcomeVerified {
		s.recordAudit(ctx, "SALE_VERIFY", saleID, nil)
	}
	return outcome, nil
}

func (s *Service) verifyTx(ctx context.Context, saleID int64) (VerifyOutcome, error) {
	var outcome VerifyOutcome
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.Status == StatusVerified {
			outcome = OutcomeAlreadyVerified
			return nil
		}

		item, err := tx.GetItemForUpdate(ctx, sale.StockItemID)
		if err != nil {
			return err
		}
		if err := inventory.ApplySaleDeduction(&item, sale.QuantitySold); err != nil {
			if errors.Is(err, inventory.ErrInsufficientStock) {
				outcome = OutcomeInsufficientStock
				return nil
			}
			return err
		}
		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}

		now := time.Now()
		sale.CostPerUnit = item.CostPrice
		sale.TotalAmount, sale.Profit = financials(sale.QuantitySold, sale.PricePerUnit, sale.CostPerUnit)
		sale.Status = StatusVerified
		sale.VerifiedAt = &now
		if err := tx.UpdateSale(ctx, sale); err != nil {
			return err
		}
		if err := tx.RecomputeDailyTotal(ctx, sale.SaleDate); err != nil {
			return err
		}
		outcome = OutcomeVerified
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// VerifyBatch verifies each sale independently and reports per-record
// outcomes. One refusal or failure never blocks the rest of the batch.
func (s *Service) VerifyBatch(ctx context.Context, saleIDs []int64) ([]VerifyResult, error) {
	actorID := shared.ActorFromContext(ctx)
	allowed, err := s.authz.Allowed(ctx, actorID, shared.PermSalesVerify)
	if err != nil {
		return nil, fmt.Errorf("sales: authorize verify: %w", err)
	}
	if !allowed {
		return nil, shared.ErrPermissionDenied
	}

	results := make([]VerifyResult, 0, len(saleIDs))
	for _, id := range saleIDs {
		outcome, err := s.verifyTx(ctx, id)
		if err != nil {
			results = append(results, VerifyResult{SaleID: id, Error: err.Error()})
			continue
		}
		if outcome == OutcomeVerified {
			s.recordAudit(ctx, "SALE_VERIFY", id, nil)
		}
		results = append(results, VerifyResult{SaleID: id, Outcome: outcome})
	}
	return results, nil
}

// Update edits a sale. Drafts are rewritten in place, their provisional
// financials recomputed against the item's current cost. For verified records
// the old deduction is reversed and the new one applied in the same
// transaction, and the affected day totals are recomputed.
func (s *Service) Update(ctx context.Context, saleID int64, input UpdateSaleInput) (SaleRecord, error) {
	if input.QuantitySold <= 0 {
		return SaleRecord{}, inventory.ErrInvalidQuantity
	}
	if input.PricePerUnit != nil && input.PricePerUnit.IsNegative() {
		return SaleRecord{}, inventory.ErrInvalidUnitCost
	}

	var updated SaleRecord
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		oldDate := sale.SaleDate

		if sale.Status == StatusVerified {
			item, err := tx.GetItemForUpdate(ctx, sale.StockItemID)
			if err != nil {
				return err
			}
			if err := inventory.ReverseSaleDeduction(&item, sale.QuantitySold); err != nil {
				return err
			}
			if err := inventory.ApplySaleDeduction(&item, input.QuantitySold); err != nil {
				return err
			}
			if err := tx.SaveItem(ctx, item); err != nil {
				return err
			}
		}

		sale.QuantitySold = input.QuantitySold
		if input.PricePerUnit != nil {
			sale.PricePerUnit = input.PricePerUnit.Round(2)
		}
		if input.SaleDate != nil {
			sale.SaleDate = *input.SaleDate
		}
		if sale.Status == StatusVerified {
			sale.TotalAmount, sale.Profit = financials(sale.QuantitySold, sale.PricePerUnit, sale.CostPerUnit)
		} else {
			item, err := tx.GetItemForUpdate(ctx, sale.StockItemID)
			if err != nil {
				return err
			}
			sale.CostPerUnit = item.CostPrice
			sale.TotalAmount, sale.Profit = financials(sale.QuantitySold, sale.PricePerUnit, sale.CostPerUnit)
		}
		if err := tx.UpdateSale(ctx, sale); err != nil {
			return err
		}

		if sale.Status == StatusVerified {
			if err := tx.RecomputeDailyTotal(ctx, oldDate); err != nil {
				return err
			}
			if !sameDay(oldDate, sale.SaleDate) {
				if err := tx.RecomputeDailyTotal(ctx, sale.SaleDate); err != nil {
					return err
				}
			}
		}
		updated = sale
		return nil
	})
	if err != nil {
		return SaleRecord{}, err
	}
	s.recordAudit(ctx, "SALE_UPDATE", saleID, map[string]any{"quantity": input.QuantitySold})
	return updated, nil
}

// Delete removes a sale. Deleting a verified record returns its quantity
// to stock and recomputes the day's rollup in the same transaction.
func (s *Service) Delete(ctx context.Context, saleID int64) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		sale, err := tx.GetSaleForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.Status == StatusVerified {
			item, err := tx.GetItemForUpdate(ctx, sale.StockItemID)
			if err != nil {
				return err
			}
			if err := inventory.ReverseSaleDeduction(&item, sale.QuantitySold); err != nil {
				return err
			}
			if err := tx.SaveItem(ctx, item); err != nil {
				return err
			}
		}
		if err := tx.DeleteSale(ctx, saleID); err != nil {
			return err
		}
		if sale.Status == StatusVerified {
			return tx.RecomputeDailyTotal(ctx, sale.SaleDate)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "SALE_DELETE", saleID, nil)
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx),
		Action:   action,
		Entity:   "sale_record",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	})
}
