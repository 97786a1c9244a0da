package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

const (
	collectionAddresses = "addresses"
	collectionSuppliers = "suppliers"
)

type AddressRepository struct {
	col *mongo.Collection
}

func NewAddressRepository(db *mongo.Database) *AddressRepository {
	return &AddressRepository{col: db.Collection(collectionAddresses)}
}

func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if a.ID == "" {
		a.ID = newID()
	}
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *AddressRepository) FindByID(ctx context.Context, id string) (*domain.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Address
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("find address: %w", err)
	}
	return &a, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	addresses := make([]*domain.Address, 0)
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, fmt.Errorf("decode addresses: %w", err)
	}
	return addresses, nil
}

func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

type SupplierRepository struct {
	col *mongo.Collection
}

func NewSupplierRepository(db *mongo.Database) *SupplierRepository {
	return &SupplierRepository{col: db.Collection(collectionSuppliers)}
}

func (r *SupplierRepository) Create(ctx context.Context, s *domain.Supplier) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if s.ID == "" {
		s.ID = newID()
	}
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepository) FindByID(ctx context.Context, id string) (*domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Supplier
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("find supplier: %w", err)
	}
	return &s, nil
}

func (r *SupplierRepository) List(ctx context.Context) ([]*domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	suppliers := make([]*domain.Supplier, 0)
	if err := cursor.All(ctx, &suppliers); err != nil {
		return nil, fmt.Errorf("decode suppliers: %w", err)
	}
	return suppliers, nil
}

func (r *SupplierRepository) Update(ctx context.Context, s *domain.Supplier) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSupplierNotFound
	}
	return nil
}
