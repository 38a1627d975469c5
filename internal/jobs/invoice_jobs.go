package jobs

import (
	"context"
	"time"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/logger"
)

// GenerateDueInvoices re-runs invoice generation for every ongoing order.
// Generation is idempotent so orders that are already fully invoiced are a
// no-op; a failure on one order never blocks the rest.
func (jr *JobRunner) GenerateDueInvoices() {
	jr.runWithRecovery("GenerateDueInvoices", func() {
		ctx := context.Background()

		orders, err := jr.store.ListByState(ctx, domain.OrderStateOngoing)
		if err != nil {
			logger.Error("Failed to list ongoing orders", "error", err)
			return
		}

		generated := 0
		failed := 0
		for i := range orders {
			invoices, err := jr.orders.GenerateInvoices(ctx, orders[i].ID)
			if err != nil {
				failed++
				logger.Error("Failed to generate invoices", "ref", orders[i].Ref, "error", err)
				continue
			}
			generated += len(invoices)
		}

		logger.Info("Generated due invoices", "orders", len(orders), "invoices", generated, "failed", failed)
	})
}

// CompleteFinishedOrders moves ongoing orders whose rental period has ended
// and whose invoices are all confirmed into the done state.
func (jr *JobRunner) CompleteFinishedOrders() {
	jr.runWithRecovery("CompleteFinishedOrders", func() {
		ctx := context.Background()

		orders, err := jr.store.ListByState(ctx, domain.OrderStateOngoing)
		if err != nil {
			logger.Error("Failed to list ongoing orders", "error", err)
			return
		}

		completed := 0
		for i := range orders {
			if orders[i].DateEnd().After(time.Now()) {
				continue
			}
			if err := jr.orders.Complete(ctx, orders[i].ID); err != nil {
				logger.Debug("Order not completed yet", "ref", orders[i].Ref, "reason", err)
				continue
			}
			completed++
			logger.Info("Order completed", "ref", orders[i].Ref)
		}

		logger.Info("Completed finished orders", "count", completed)
	})
}
