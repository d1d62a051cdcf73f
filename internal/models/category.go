package models

import (
	"strings"
	"time"

	"savoro_back_end/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category est la fiche vitrine d'un rayon de la carte. Products porte
// les références inverses vers les produits membres.
type Category struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string               `bson:"image_url,omitempty" json:"image_url,omitempty"`
	IsActive    bool                 `bson:"is_active" json:"is_active"`
	Products    []primitive.ObjectID `bson:"products,omitempty" json:"products,omitempty"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
}

func (cat *Category) Validate() error {
	if strings.TrimSpace(cat.Name) == "" {
		return apperr.Validation("le nom de la catégorie est requis")
	}
	return nil
}
