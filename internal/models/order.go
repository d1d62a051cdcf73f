package models

import (
	"strings"
	"time"

	"savoro_back_end/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts de commande.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Statuts de paiement.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

var orderStatuses = []string{
	OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled,
}

// OrderItem est une ligne de commande. Price est le prix unitaire capturé
// au moment de la commande : il n'est jamais re-dérivé du produit.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            string             `bson:"user_id" json:"user_id"`
	Items             []OrderItem        `bson:"items" json:"items"`
	TotalAmount       float64            `bson:"total_amount" json:"total_amount"`
	Status            string             `bson:"status" json:"status"`
	DeliveryAddress   string             `bson:"delivery_address" json:"delivery_address"`
	PaymentMethod     string             `bson:"payment_method" json:"payment_method"`
	PaymentStatus     string             `bson:"payment_status" json:"payment_status"`
	PaymentRef        string             `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	IsDelivered       bool               `bson:"is_delivered" json:"is_delivered"`
	DeliveredAt       *time.Time         `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	PaidAt            *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	EstimatedDelivery time.Time          `bson:"estimated_delivery" json:"estimated_delivery"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsOrderStatus vérifie qu'une valeur fait partie des cinq statuts reconnus.
func IsOrderStatus(s string) bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanCancel : une commande expédiée ou livrée ne s'annule plus, et une
// annulation ne se rejoue pas (le restock a déjà eu lieu).
func (o *Order) CanCancel() bool {
	return o.Status != OrderShipped && o.Status != OrderDelivered && o.Status != OrderCancelled
}

// ComputeTotal calcule la somme quantité×prix des lignes. Le montant
// total est figé à la création et n'est jamais recalculé ensuite.
func ComputeTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// Validate vérifie les contraintes de la commande avant persistance.
func (o *Order) Validate() error {
	if o.UserID == "" {
		return apperr.Validation("utilisateur requis")
	}
	if len(o.Items) == 0 {
		return apperr.Validation("le panier est vide")
	}
	for _, it := range o.Items {
		if it.Quantity < 1 {
			return apperr.Validation("quantité invalide pour " + it.Name)
		}
	}
	if strings.TrimSpace(o.DeliveryAddress) == "" {
		return apperr.Validation("adresse de livraison requise")
	}
	if o.PaymentMethod == "" {
		return apperr.Validation("méthode de paiement requise")
	}
	if !IsOrderStatus(o.Status) {
		return apperr.Validation("statut de commande inconnu: " + o.Status)
	}
	return nil
}
