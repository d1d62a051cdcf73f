package catalog

import (
	"context"
	"errors"
	"time"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore implémente ProductStore sur la collection products.
type MongoStore struct {
	products *mongo.Collection
}

func NewMongoStore(catalogDB *mongo.Database) *MongoStore {
	return &MongoStore{products: catalogDB.Collection("products")}
}

func (s *MongoStore) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("produit")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *MongoStore) UpdateReviews(ctx context.Context, product *models.Product) error {
	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": product.ID},
		bson.M{"$set": bson.M{
			"reviews":     product.Reviews,
			"rating":      product.Rating,
			"num_reviews": product.NumReviews,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("produit")
	}
	return nil
}
