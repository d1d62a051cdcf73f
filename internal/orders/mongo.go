package orders

import (
	"context"
	"errors"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implémente ProductStore, OrderStore et UserStore sur les
// collections MongoDB.
type MongoStore struct {
	products *mongo.Collection
	orders   *mongo.Collection
	users    *mongo.Collection
}

func NewMongoStore(catalogDB, ordersDB, usersDB *mongo.Database) *MongoStore {
	return &MongoStore{
		products: catalogDB.Collection("products"),
		orders:   ordersDB.Collection("orders"),
		users:    usersDB.Collection("users"),
	}
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

// DecrementStock : décrément conditionnel en une seule écriture. Le
// filtre stock ≥ qty et le $inc sont atomiques côté serveur, deux
// commandes simultanées ne peuvent pas sur-consommer le même stock.
func (s *MongoStore) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.Conflict("stock insuffisant")
	}
	return nil
}

func (s *MongoStore) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := s.products.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": qty}},
	)
	return err
}

func (s *MongoStore) Insert(ctx context.Context, order *models.Order) error {
	_, err := s.orders.InsertOne(ctx, order)
	return err
}

func (s *MongoStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("commande")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoStore) GetByPaymentRef(ctx context.Context, ref string) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"payment_ref": ref}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("commande")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoStore) Update(ctx context.Context, order *models.Order) error {
	res, err := s.orders.ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("commande")
	}
	return nil
}

func (s *MongoStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.orders.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Order
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MongoStore) ListAll(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Order
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("utilisateur")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
