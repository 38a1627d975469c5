package service

import (
	"context"
	"fmt"
	"time"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/invoicing"
	"rentorder-backend/internal/logger"
	"rentorder-backend/internal/pricing"
	"rentorder-backend/internal/repository"
	"rentorder-backend/internal/sequence"
	"rentorder-backend/internal/tax"
)

// Defaults are the company-level fallbacks applied when an order is created
// without an explicit duration unit or invoice period.
type Defaults struct {
	DurationUnit  domain.DurationUnit
	InvoicePeriod string
}

type orderService struct {
	orderRepo   repository.OrderRepository
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	refs        sequence.Generator
	taxEngine   tax.Engine
	positions   map[string]*tax.FiscalPosition
	defaults    Defaults
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	refs sequence.Generator,
	taxEngine tax.Engine,
	positions map[string]*tax.FiscalPosition,
	defaults Defaults,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		refs:        refs,
		taxEngine:   taxEngine,
		positions:   positions,
		defaults:    defaults,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.RentOrder, error) {
	unit := input.DurationUnit
	if unit == "" {
		unit = s.defaults.DurationUnit
	}
	if !unit.Valid() {
		return nil, &pricing.UnknownDurationUnitError{Unit: unit}
	}

	period := input.InvoicePeriod
	if period == "" {
		period = s.defaults.InvoicePeriod
	}
	if !invoicing.Registered(period) {
		return nil, &invoicing.InvalidInvoicePeriodError{Period: period, Reason: "no such invoice period is registered"}
	}

	if input.Duration < 1 {
		return nil, fmt.Errorf("duration must be at least 1, got %d", input.Duration)
	}
	if input.Discount < 0 || input.Discount > 100 {
		return nil, fmt.Errorf("discount must be between 0 and 100, got %g", input.Discount)
	}
	if input.FiscalPosition != "" {
		if _, ok := s.positions[input.FiscalPosition]; !ok {
			return nil, fmt.Errorf("unknown fiscal position %q", input.FiscalPosition)
		}
	}

	created := time.Now()
	if input.DateBegin.Before(created.Truncate(24 * time.Hour)) {
		return nil, fmt.Errorf("begin date must not be earlier than the order date")
	}

	ref, err := s.refs.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("generating order reference: %w", err)
	}

	order := &domain.RentOrder{
		Ref:            ref,
		CustomerID:     input.CustomerID,
		State:          domain.OrderStateDraft,
		DateCreated:    created,
		DateBegin:      input.DateBegin,
		Duration:       input.Duration,
		DurationUnit:   unit,
		Discount:       input.Discount,
		InvoicePeriod:  period,
		FiscalPosition: input.FiscalPosition,
		Description:    input.Description,
		Notes:          input.Notes,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	logger.Info("Rent order created", "ref", order.Ref, "duration", order.Duration, "unit", order.DurationUnit)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id int32) (*domain.RentOrder, error) {
	return s.orderRepo.GetByID(ctx, id)
}

func (s *orderService) AddLine(ctx context.Context, orderID int32, input *AddLineInput) (*domain.RentOrderLine, *domain.QuantityWarning, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.State != domain.OrderStateDraft {
		return nil, nil, fmt.Errorf("order %s: lines can only be added while the order is draft", order.Ref)
	}
	if input.Quantity < 1 {
		return nil, nil, fmt.Errorf("quantity must be at least 1, got %d", input.Quantity)
	}
	if input.Discount < 0 || input.Discount > 100 {
		return nil, nil, fmt.Errorf("discount must be between 0 and 100, got %g", input.Discount)
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, nil, err
	}

	productType := input.ProductType
	if productType == "" {
		if product.CanBeRent {
			productType = domain.ProductTypeRent
		} else {
			productType = domain.ProductTypeService
		}
	}
	if !product.UsableAs(productType) {
		return nil, nil, &domain.InvalidProductTypeError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Tagged:      productType,
		}
	}

	line := &domain.RentOrderLine{
		OrderID:     order.ID,
		ProductID:   product.ID,
		Description: product.Name,
		ProductType: productType,
		Quantity:    input.Quantity,
		Discount:    input.Discount,
		Taxes:       product.Taxes,
		Notes:       input.Notes,
	}
	if productType == domain.ProductTypeRent {
		line.UnitPrice = product.RentPrice
		line.PriceUnit = product.RentPriceUnit
	} else {
		line.UnitPrice = product.ListPrice
		line.PriceUnit = order.DurationUnit
	}

	if err := s.orderRepo.AddLine(ctx, line); err != nil {
		return nil, nil, err
	}

	// Stock shortage is advisory only: the caller is warned but the line
	// is created and the order stays confirmable.
	var warning *domain.QuantityWarning
	if product.StockType == domain.StockTypeProduct && float64(input.Quantity) > product.QtyAvailable {
		warning = &domain.QuantityWarning{
			ProductID: product.ID,
			Requested: input.Quantity,
			Available: product.QtyAvailable,
		}
		logger.Warn("Requested quantity exceeds stock", "order", order.Ref, "product", product.Name,
			"requested", input.Quantity, "available", product.QtyAvailable)
	}
	return line, warning, nil
}

func (s *orderService) UpdateLine(ctx context.Context, orderID, lineID int32, input *UpdateLineInput) (*domain.RentOrderLine, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.State != domain.OrderStateDraft {
		return nil, fmt.Errorf("order %s: lines are read-only once the order leaves draft", order.Ref)
	}

	var line *domain.RentOrderLine
	for i := range order.Lines {
		if order.Lines[i].ID == lineID {
			line = &order.Lines[i]
			break
		}
	}
	if line == nil {
		return nil, fmt.Errorf("order %s has no line %d", order.Ref, lineID)
	}

	if input.Quantity != nil {
		if *input.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be at least 1, got %d", *input.Quantity)
		}
		line.Quantity = *input.Quantity
	}
	if input.UnitPrice != nil {
		if *input.UnitPrice <= 0 {
			return nil, fmt.Errorf("unit price must be positive, got %g", *input.UnitPrice)
		}
		line.UnitPrice = *input.UnitPrice
	}
	if input.Discount != nil {
		if *input.Discount < 0 || *input.Discount > 100 {
			return nil, fmt.Errorf("discount must be between 0 and 100, got %g", *input.Discount)
		}
		line.Discount = *input.Discount
	}
	if input.Notes != nil {
		line.Notes = *input.Notes
	}

	if err := s.orderRepo.UpdateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *orderService) RemoveLine(ctx context.Context, orderID, lineID int32) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.State != domain.OrderStateDraft {
		return fmt.Errorf("order %s: lines can only be removed while the order is draft", order.Ref)
	}
	return s.orderRepo.DeleteLine(ctx, lineID)
}

// Confirm moves a draft order to confirmed. The order must carry at least
// one stockable rented product; service-only orders are not supported.
func (s *orderService) Confirm(ctx context.Context, id int32) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.State.CanTransitionTo(domain.OrderStateConfirmed) {
		return fmt.Errorf("order %s cannot be confirmed from state %s", order.Ref, order.State)
	}
	if len(order.Lines) == 0 {
		return fmt.Errorf("order %s has no lines", order.Ref)
	}

	products, err := s.lineProducts(ctx, order)
	if err != nil {
		return err
	}

	hasStockableRent := false
	for i := range order.Lines {
		line := &order.Lines[i]
		product := products[line.ProductID]
		if product == nil {
			return fmt.Errorf("product %d referenced by line %d not found", line.ProductID, line.ID)
		}
		if !product.UsableAs(line.ProductType) {
			return &domain.InvalidProductTypeError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Tagged:      line.ProductType,
			}
		}
		if line.ProductType == domain.ProductTypeRent && product.Stockable() {
			hasStockableRent = true
		}
	}
	if !hasStockableRent {
		return fmt.Errorf("order %s must rent at least one stockable or consumable product", order.Ref)
	}

	if err := s.orderRepo.UpdateState(ctx, id, domain.OrderStateConfirmed); err != nil {
		return err
	}
	logger.Info("Rent order confirmed", "ref", order.Ref)
	return nil
}

// Activate moves a confirmed order to ongoing and generates its invoices,
// mirroring the workflow transition that starts the rental.
func (s *orderService) Activate(ctx context.Context, id int32) ([]domain.Invoice, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.State.CanTransitionTo(domain.OrderStateOngoing) {
		return nil, fmt.Errorf("order %s cannot start from state %s", order.Ref, order.State)
	}
	if err := s.orderRepo.UpdateState(ctx, id, domain.OrderStateOngoing); err != nil {
		return nil, err
	}
	return s.GenerateInvoices(ctx, id)
}

// GenerateInvoices runs the order's invoice period strategy and materializes
// every descriptor that does not already have an invoice on its date. It is
// safe to call repeatedly; re-runs create nothing new.
func (s *orderService) GenerateInvoices(ctx context.Context, id int32) ([]domain.Invoice, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.State != domain.OrderStateOngoing {
		return nil, fmt.Errorf("order %s: invoices are generated for ongoing orders, not %s", order.Ref, order.State)
	}

	descriptors, err := invoicing.Schedule(order)
	if err != nil {
		return nil, err
	}
	products, err := s.lineProducts(ctx, order)
	if err != nil {
		return nil, err
	}
	fp := s.positions[order.FiscalPosition]

	var created []domain.Invoice
	for _, desc := range descriptors {
		invoice, err := invoicing.Materialize(order, desc, products, fp, s.taxEngine)
		if err != nil {
			return created, err
		}
		inserted, err := s.invoiceRepo.Create(ctx, invoice)
		if err != nil {
			return created, err
		}
		if !inserted {
			logger.Debug("Invoice already exists, skipped", "ref", order.Ref, "date", desc.Date)
			continue
		}
		created = append(created, *invoice)
	}

	if len(created) > 0 {
		logger.Info("Invoices generated", "ref", order.Ref, "count", len(created))
	}
	return created, nil
}

// Cancel aborts an order that has no confirmed invoice. Draft invoices are
// deleted along the way.
func (s *orderService) Cancel(ctx context.Context, id int32) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.State.CanTransitionTo(domain.OrderStateCancelled) {
		return fmt.Errorf("order %s cannot be cancelled from state %s", order.Ref, order.State)
	}

	invoices, err := s.invoiceRepo.ListByOrderRef(ctx, order.Ref)
	if err != nil {
		return err
	}
	for i := range invoices {
		if invoices[i].State.Confirmed() {
			return fmt.Errorf("order %s has a confirmed invoice and cannot be cancelled", order.Ref)
		}
	}
	if err := s.invoiceRepo.DeleteDraftsByOrderRef(ctx, order.Ref); err != nil {
		return err
	}

	if err := s.orderRepo.UpdateState(ctx, id, domain.OrderStateCancelled); err != nil {
		return err
	}
	logger.Info("Rent order cancelled", "ref", order.Ref)
	return nil
}

// Complete marks an ongoing order done once every invoice is confirmed.
func (s *orderService) Complete(ctx context.Context, id int32) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.State.CanTransitionTo(domain.OrderStateDone) {
		return fmt.Errorf("order %s cannot be completed from state %s", order.Ref, order.State)
	}

	rate, err := s.invoicedRate(ctx, order.Ref)
	if err != nil {
		return err
	}
	if rate < 100 {
		return fmt.Errorf("order %s is only %.0f%% invoiced", order.Ref, rate)
	}
	return s.orderRepo.UpdateState(ctx, id, domain.OrderStateDone)
}

// ResetToDraft brings a cancelled order back to quotation.
func (s *orderService) ResetToDraft(ctx context.Context, id int32) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.State.CanTransitionTo(domain.OrderStateDraft) {
		return fmt.Errorf("order %s cannot go back to draft from state %s", order.Ref, order.State)
	}
	if err := s.orderRepo.UpdateState(ctx, id, domain.OrderStateDraft); err != nil {
		return err
	}
	logger.Info("Rent order reset to draft", "ref", order.Ref)
	return nil
}

func (s *orderService) ListInvoices(ctx context.Context, id int32) ([]domain.Invoice, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListByOrderRef(ctx, order.Ref)
}

func (s *orderService) Totals(ctx context.Context, id int32) (*OrderTotals, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fp := s.positions[order.FiscalPosition]
	totals, err := pricing.ComputeTotals(order, fp, s.taxEngine)
	if err != nil {
		return nil, err
	}

	products, err := s.lineProducts(ctx, order)
	if err != nil {
		return nil, err
	}
	rate, err := s.invoicedRate(ctx, order.Ref)
	if err != nil {
		return nil, err
	}

	return &OrderTotals{
		Totals:       totals,
		AssetValue:   pricing.ComputeAssetValue(order, products, fp, s.taxEngine),
		InvoicedRate: rate,
	}, nil
}

func (s *orderService) invoicedRate(ctx context.Context, ref string) (float64, error) {
	invoices, err := s.invoiceRepo.ListByOrderRef(ctx, ref)
	if err != nil {
		return 0, err
	}
	if len(invoices) == 0 {
		return 0, nil
	}
	confirmed := 0
	for i := range invoices {
		if invoices[i].State.Confirmed() {
			confirmed++
		}
	}
	return float64(confirmed) / float64(len(invoices)) * 100, nil
}

func (s *orderService) lineProducts(ctx context.Context, order *domain.RentOrder) (map[int32]*domain.Product, error) {
	ids := make([]int32, 0, len(order.Lines))
	seen := make(map[int32]bool, len(order.Lines))
	for i := range order.Lines {
		id := order.Lines[i].ProductID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return s.productRepo.GetByIDs(ctx, ids)
}
