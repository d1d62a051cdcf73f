package orders

import (
	"context"

	"savoro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStore expose ce que le workflow de commande attend du catalogue.
type ProductStore interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)

	// DecrementStock retire qty du stock seulement si stock ≥ qty
	// (décrément conditionnel atomique). Retourne apperr.Conflict si le
	// stock est insuffisant au moment de l'écriture.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error

	// IncrementStock restitue qty au stock (transaction compensatoire).
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

// OrderStore persiste les commandes.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetByPaymentRef(ctx context.Context, ref string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
}

// UserStore fournit le destinataire des e-mails de commande.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}
