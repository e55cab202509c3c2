package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
	"fuelbook/backend/internal/store"
	"fuelbook/backend/internal/xid"
)

// CreateInvoice books a purchase, purchase return, sale or sale return
// against a product. Fuel products adjust their tank, everything else
// adjusts the product row; the stock write, the invoice and the cash
// mirror commit together.
func (s *Service) CreateInvoice(ctx context.Context, kind domain.InvoiceKind, req domain.InvoiceCreateRequest) (domain.Invoice, error) {
	if err := s.validateStruct(req); err != nil {
		return domain.Invoice{}, err
	}
	if !req.Quantity.IsPositive() {
		return domain.Invoice{}, fmt.Errorf("quantity must be positive: %w", store.ErrInvalid)
	}
	if req.UnitPrice.IsNegative() {
		return domain.Invoice{}, fmt.Errorf("unit price must not be negative: %w", store.ErrInvalid)
	}

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.Invoice{}, err
	}
	target, tankID, err := s.stockTarget(ctx, *product)
	if err != nil {
		return domain.Invoice{}, err
	}

	now := time.Now().UTC()
	date, err := parseDate(req.Date, now)
	if err != nil {
		return domain.Invoice{}, err
	}
	shiftID, err := s.resolveShift(ctx, date)
	if err != nil {
		return domain.Invoice{}, err
	}

	unitPrice := req.UnitPrice
	if unitPrice.IsZero() {
		unitPrice = product.UnitPrice
	}

	actor, _ := ActorFromContext(ctx)
	invoice := domain.Invoice{
		ID:        xid.New("inv"),
		Kind:      kind,
		ProductID: product.ID,
		TankID:    tankID,
		Quantity:  req.Quantity,
		UnitPrice: unitPrice,
		ShiftID:   shiftID,
		CreatedBy: actor.Username,
		Date:      date,
		CreatedAt: now,
	}

	ws, err := ledger.BuildInvoiceCreate(invoice, target, xid.New("cfl"), now)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := s.repo.Apply(ctx, ws); err != nil {
		return domain.Invoice{}, err
	}

	saved, err := s.repo.GetInvoice(ctx, invoice.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	s.recordStockMovement(ctx, *saved, string(kind))
	s.logAudit(ctx, "invoice_create", "invoice", saved.ID, fmt.Sprintf("kind=%s,product=%s,qty=%s", kind, product.ID, req.Quantity))
	return *saved, nil
}

// UpdateInvoice edits quantity, price or date. The stock effect goes
// through two guarded phases: the old quantity is reversed first, then the
// new one applied, so an edit can never fabricate stock.
func (s *Service) UpdateInvoice(ctx context.Context, id string, req domain.InvoiceUpdateRequest) (domain.Invoice, error) {
	old, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	product, err := s.repo.GetProduct(ctx, old.ProductID)
	if err != nil {
		return domain.Invoice{}, err
	}
	target, _, err := s.stockTarget(ctx, *product)
	if err != nil {
		return domain.Invoice{}, err
	}

	updated := *old
	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return domain.Invoice{}, fmt.Errorf("quantity must be positive: %w", store.ErrInvalid)
		}
		updated.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return domain.Invoice{}, fmt.Errorf("unit price must not be negative: %w", store.ErrInvalid)
		}
		updated.UnitPrice = *req.UnitPrice
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, updated.Date)
		if err != nil {
			return domain.Invoice{}, err
		}
		updated.Date = date
		shiftID, err := s.resolveShift(ctx, date)
		if err != nil {
			return domain.Invoice{}, err
		}
		updated.ShiftID = shiftID
	}

	hadCashflow := false
	if old.CashflowID != "" {
		_, err := s.repo.GetCashflowEntry(ctx, old.CashflowID)
		switch {
		case err == nil:
			hadCashflow = true
		case errors.Is(err, store.ErrNotFound):
			s.log.WithField("cashflow_id", old.CashflowID).Warn("cashflow mirror entry missing, re-creating")
		default:
			return domain.Invoice{}, err
		}
	}

	now := time.Now().UTC()
	ws, err := ledger.BuildInvoiceUpdate(*old, updated, target, hadCashflow, xid.New("cfl"), now)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := s.repo.Apply(ctx, ws); err != nil {
		return domain.Invoice{}, err
	}

	saved, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	s.recordStockMovement(ctx, *saved, string(saved.Kind)+"-edit")
	s.logAudit(ctx, "invoice_update", "invoice", id, fmt.Sprintf("kind=%s,qty=%s", saved.Kind, saved.Quantity))
	return *saved, nil
}

// DeleteInvoice reverses the invoice's stock effect and removes it together
// with its cash mirror entry.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	product, err := s.repo.GetProduct(ctx, invoice.ProductID)
	if err != nil {
		return err
	}
	target, _, err := s.stockTarget(ctx, *product)
	if err != nil {
		return err
	}

	ws, err := ledger.BuildInvoiceDelete(*invoice, target)
	if err != nil {
		return err
	}
	if err := s.repo.Apply(ctx, ws); err != nil {
		return err
	}

	reversed := *invoice
	if len(ws.Stock) == 1 {
		reversed.RemainingStockAfter = ws.Stock[0].NewStock
	}
	s.recordStockMovement(ctx, reversed, string(invoice.Kind)+"-reversal")
	s.logAudit(ctx, "invoice_delete", "invoice", id, fmt.Sprintf("kind=%s,qty=%s", invoice.Kind, invoice.Quantity))
	return nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) ListInvoices(ctx context.Context, kind domain.InvoiceKind, from, to time.Time) ([]domain.Invoice, error) {
	switch kind {
	case "", domain.InvoicePurchase, domain.InvoicePurchaseReturn, domain.InvoiceSale, domain.InvoiceSaleReturn:
	default:
		return nil, fmt.Errorf("unknown invoice kind %q: %w", kind, store.ErrInvalid)
	}
	return s.repo.ListInvoices(ctx, kind, from, to)
}

func (s *Service) ListStockMovements(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	return s.repo.ListStockMovements(ctx, productID, limit)
}

// stockTarget routes a stock mutation to the product's tank for fuel, or to
// the product row otherwise.
func (s *Service) stockTarget(ctx context.Context, product domain.Product) (ledger.StockTarget, string, error) {
	if product.Category != domain.ProductCategoryFuel {
		return ledger.StockTarget{
			Kind:    ledger.TargetProduct,
			ID:      product.ID,
			Current: product.Stock,
		}, "", nil
	}

	tank, err := s.repo.GetTankByProduct(ctx, product.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ledger.StockTarget{}, "", fmt.Errorf("fuel product %s has no tank: %w", product.ID, store.ErrInvalid)
		}
		return ledger.StockTarget{}, "", err
	}
	return ledger.StockTarget{
		Kind:     ledger.TargetTank,
		ID:       tank.ID,
		Current:  tank.Stock,
		Capacity: tank.Capacity,
	}, tank.ID, nil
}

// recordStockMovement appends to the audit trail without failing the owning
// operation.
func (s *Service) recordStockMovement(ctx context.Context, inv domain.Invoice, event string) {
	movement := domain.StockMovement{
		ID:                  xid.New("stm"),
		ProductID:           inv.ProductID,
		TankID:              inv.TankID,
		EventType:           event,
		Quantity:            inv.Quantity,
		UnitPrice:           inv.UnitPrice,
		RemainingStockAfter: inv.RemainingStockAfter,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.repo.AppendStockMovement(ctx, movement); err != nil {
		s.log.WithError(err).WithField("invoice_id", inv.ID).Warn("stock movement append failed")
	}
}
