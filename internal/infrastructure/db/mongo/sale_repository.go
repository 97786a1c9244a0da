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

const collectionSales = "sales"

type SaleRepository struct {
	col *mongo.Collection
}

func NewSaleRepository(db *mongo.Database) *SaleRepository {
	return &SaleRepository{col: db.Collection(collectionSales)}
}

func (r *SaleRepository) Create(ctx context.Context, s *domain.Sale) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if s.ID == "" {
		s.ID = newID()
	}
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Sale
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSaleNotFound
		}
		return nil, fmt.Errorf("find sale: %w", err)
	}
	return &s, nil
}

func (r *SaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "sold_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales := make([]*domain.Sale, 0)
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("decode sales: %w", err)
	}
	return sales, nil
}

func (r *SaleRepository) Update(ctx context.Context, s *domain.Sale) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	expected := s.Version
	s.Version = expected + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.ID, "version": expected}, s)
	if err != nil {
		s.Version = expected
		return fmt.Errorf("update sale: %w", err)
	}
	if res.MatchedCount == 0 {
		s.Version = expected
		return versionConflict(ctx, r.col, s.ID, domain.ErrSaleNotFound)
	}
	return nil
}
