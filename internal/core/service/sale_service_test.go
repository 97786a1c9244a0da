package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

func newSaleFixture() (*memStore, *recordingSink, *SaleService) {
	store := newMemStore()
	events := &recordingSink{}
	svc := NewSaleService(
		&stubSaleRepo{store: store},
		&stubProductRepo{store: store},
		&stubTx{store: store},
		newStubIdempotency(),
		events,
		zerolog.Nop(),
	)
	return store, events, svc
}

func TestSaleService_Create_Total(t *testing.T) {
	store, events, svc := newSaleFixture()
	a := store.addProduct(domain.Product{Name: "A", Price: decimal.NewFromInt(1000), Quantity: 5})
	b := store.addProduct(domain.Product{Name: "B", Price: decimal.NewFromInt(2500), Quantity: 5})

	sale, err := svc.CreateSale(context.Background(), ports.CreateSaleInput{
		DocumentNumber: "1020304050",
		PaymentMethod:  "cash",
		Items: []ports.LineItemInput{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, sale.Total.Equal(decimal.NewFromInt(4500)), "total = %s", sale.Total)
	assert.Equal(t, domain.StatusActive, sale.Status)
	assert.Equal(t, domain.PaymentCash, sale.PaymentMethod)
	assert.Equal(t, 3, store.quantity(a.ID))
	assert.Equal(t, 4, store.quantity(b.ID))
	assert.Equal(t, []domain.EventType{domain.EventSaleCreated}, events.types())
}

func TestSaleService_Create_DecimalPrices(t *testing.T) {
	store, _, svc := newSaleFixture()
	p := store.addProduct(domain.Product{Name: "Gum", Price: decimal.RequireFromString("0.10"), Quantity: 10})

	sale, err := svc.CreateSale(context.Background(), ports.CreateSaleInput{
		DocumentNumber: "1",
		PaymentMethod:  "card",
		Items:          []ports.LineItemInput{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.3", sale.Total.String())
}

func TestSaleService_Create_Validation(t *testing.T) {
	store, _, svc := newSaleFixture()
	p := store.addProduct(domain.Product{Name: "A", Price: decimal.NewFromInt(1), Quantity: 5})

	_, err := svc.CreateSale(context.Background(), ports.CreateSaleInput{
		DocumentNumber: "1",
		PaymentMethod:  "bitcoin",
		Items:          []ports.LineItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateSale(context.Background(), ports.CreateSaleInput{
		PaymentMethod: "cash",
		Items:         []ports.LineItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateSale(context.Background(), ports.CreateSaleInput{
		DocumentNumber: "1",
		PaymentMethod:  "cash",
		Items:          []ports.LineItemInput{{ProductID: p.ID, Quantity: -2}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 5, store.quantity(p.ID))
}

func TestSaleService_Create_InsufficientStockRollsBack(t *testing.T) {
	store, _, svc := newSaleFixture()
	a := store.addProduct(domain.Product{Name: "A", Price: decimal.NewFromInt(1), Quantity: 5})
	b := store.addProduct(domain.Product{Name: "B", Price: decimal.NewFromInt(1), Quantity: 1})

	_, err := svc.CreateSale(context.Background(), ports.CreateSaleInput{
		DocumentNumber: "1",
		PaymentMethod:  "transfer",
		Items: []ports.LineItemInput{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 2},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, store.quantity(a.ID))
	assert.Equal(t, 1, store.quantity(b.ID))
	assert.Equal(t, 0, store.saleCount())
}

func TestSaleService_Deactivate(t *testing.T) {
	store, events, svc := newSaleFixture()
	p := store.addProduct(domain.Product{Name: "A", Price: decimal.NewFromInt(1), Quantity: 5})

	sale, err := svc.CreateSale(context.Background(), ports.CreateSaleInput{
		DocumentNumber: "1",
		PaymentMethod:  "cash",
		Items:          []ports.LineItemInput{{ProductID: p.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.quantity(p.ID))

	got, err := svc.DeactivateSale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, got.Status)
	assert.Equal(t, 5, store.quantity(p.ID))

	_, err = svc.DeactivateSale(context.Background(), sale.ID)
	require.ErrorIs(t, err, domain.ErrSaleAlreadyInactive)
	assert.Equal(t, 5, store.quantity(p.ID))
	assert.Equal(t, []domain.EventType{domain.EventSaleCreated, domain.EventSaleDeactivated}, events.types())
}

func TestSaleService_SetStatus(t *testing.T) {
	store, _, svc := newSaleFixture()
	p := store.addProduct(domain.Product{Name: "A", Price: decimal.NewFromInt(1), Quantity: 5})
	sale, err := svc.CreateSale(context.Background(), ports.CreateSaleInput{
		DocumentNumber: "1",
		PaymentMethod:  "cash",
		Items:          []ports.LineItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), sale.ID, "void")
	require.ErrorIs(t, err, domain.ErrValidation)

	same, err := svc.SetStatus(context.Background(), sale.ID, "active")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, same.Status)

	_, err = svc.SetStatus(context.Background(), sale.ID, "inactive")
	require.NoError(t, err)
	assert.Equal(t, 5, store.quantity(p.ID))

	_, err = svc.SetStatus(context.Background(), sale.ID, "active")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.GetSale(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrSaleNotFound)
}
