package service

import (
	"context"
	"fmt"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// validateLines checks the shape of requested lines before any stock moves.
func validateLines(items []ports.LineItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item is required", domain.ErrValidation)
	}
	for i, it := range items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: items[%d].product_id is required", domain.ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be greater than zero", domain.ErrValidation, i)
		}
	}
	return nil
}

// reserveItems decrements stock for every line, in request order, and builds
// the line snapshots from the post-decrement product. It must run inside a
// transaction: on error the decrements already applied are only undone by
// the rollback.
func reserveItems(ctx context.Context, products ports.ProductRepository, items []ports.LineItemInput) ([]domain.LineItem, error) {
	lines := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		p, err := products.AdjustQuantity(ctx, it.ProductID, -it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("reserve product %s: %w", it.ProductID, err)
		}
		if p.Status != domain.StatusActive {
			return nil, fmt.Errorf("reserve product %s: %w", it.ProductID, domain.ErrProductInactive)
		}
		lines = append(lines, domain.SnapshotLine(p, it.Quantity))
	}
	return lines, nil
}

// restoreItems gives back the stock held by previously reserved lines.
func restoreItems(ctx context.Context, products ports.ProductRepository, items []domain.LineItem) error {
	for _, it := range items {
		if _, err := products.AdjustQuantity(ctx, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("restore product %s: %w", it.ProductID, err)
		}
	}
	return nil
}

func movements(items []domain.LineItem, sign int) []domain.StockMovement {
	out := make([]domain.StockMovement, 0, len(items))
	for _, it := range items {
		out = append(out, domain.StockMovement{ProductID: it.ProductID, Delta: sign * it.Quantity})
	}
	return out
}
