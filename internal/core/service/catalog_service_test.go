package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

func TestCatalogService_CreateProduct(t *testing.T) {
	store := newMemStore()
	svc := NewCatalogService(&stubProductRepo{store: store}, zerolog.Nop())

	p, err := svc.CreateProduct(context.Background(), ports.CreateProductInput{
		Name:     "Arepa flour",
		Price:    decimal.RequireFromString("4200.50"),
		Quantity: 12,
		Category: "groceries",
	})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	if p.Status != domain.StatusActive {
		t.Errorf("expected active, got %s", p.Status)
	}
	if store.quantity(p.ID) != 12 {
		t.Errorf("expected quantity 12, got %d", store.quantity(p.ID))
	}
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	svc := NewCatalogService(&stubProductRepo{store: newMemStore()}, zerolog.Nop())

	cases := []ports.CreateProductInput{
		{Name: "", Price: decimal.NewFromInt(1)},
		{Name: "x", Price: decimal.NewFromInt(-1)},
		{Name: "x", Price: decimal.NewFromInt(1), Quantity: -3},
	}
	for i, in := range cases {
		if _, err := svc.CreateProduct(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestCatalogService_UpdateProduct_LeavesQuantity(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(domain.Product{Name: "Soap", Price: decimal.NewFromInt(900), Quantity: 7})
	svc := NewCatalogService(&stubProductRepo{store: store}, zerolog.Nop())

	price := decimal.NewFromInt(950)
	got, err := svc.UpdateProduct(context.Background(), p.ID, ports.ProductPatch{Price: &price})
	if err != nil {
		t.Fatalf("UpdateProduct returned error: %v", err)
	}
	if !got.Price.Equal(price) {
		t.Errorf("expected price %s, got %s", price, got.Price)
	}
	if got.Quantity != 7 || got.Name != "Soap" {
		t.Errorf("unexpected side effects: %+v", got)
	}

	if _, err := svc.UpdateProduct(context.Background(), "missing", ports.ProductPatch{Price: &price}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogService_SetProductStatus(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(domain.Product{Name: "Soap", Quantity: 1})
	svc := NewCatalogService(&stubProductRepo{store: store}, zerolog.Nop())

	if _, err := svc.SetProductStatus(context.Background(), p.ID, "archived"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	got, err := svc.SetProductStatus(context.Background(), p.ID, "inactive")
	if err != nil {
		t.Fatalf("SetProductStatus returned error: %v", err)
	}
	if got.Status != domain.StatusInactive {
		t.Errorf("expected inactive, got %s", got.Status)
	}
}
