package models

import (
	"math"
	"strings"
	"time"

	"savoro_back_end/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Catégories de la carte. La catégorie portée par un produit doit être
// l'une de ces valeurs (la collection categories porte en plus la fiche
// vitrine de chaque rayon).
var ProductCategories = []string{
	"pizza",
	"burger",
	"pasta",
	"salad",
	"dessert",
	"drink",
	"breakfast",
}

// Review est un avis embarqué dans le document produit.
type Review struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	UserName  string    `bson:"user_name" json:"user_name"`
	Rating    int       `bson:"rating" json:"rating"` // 1-5
	Comment   string    `bson:"comment" json:"comment"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	ImageURL    string             `bson:"image_url" json:"image_url"`
	IsAvailable bool               `bson:"is_available" json:"is_available"`
	Stock       int                `bson:"stock" json:"stock"`
	Rating      float64            `bson:"rating" json:"rating"`
	NumReviews  int                `bson:"num_reviews" json:"num_reviews"`
	Reviews     []Review           `bson:"reviews" json:"reviews"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Validate vérifie les contraintes du document avant persistance.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("le nom du produit est requis")
	}
	if p.Price < 0 {
		return apperr.Validation("le prix ne peut pas être négatif")
	}
	if p.Stock < 0 {
		return apperr.Validation("le stock ne peut pas être négatif")
	}
	if !IsProductCategory(p.Category) {
		return apperr.Validation("catégorie inconnue: " + p.Category)
	}
	return nil
}

func IsProductCategory(c string) bool {
	for _, known := range ProductCategories {
		if c == known {
			return true
		}
	}
	return false
}

// HasReviewFrom indique si l'utilisateur a déjà déposé un avis.
func (p *Product) HasReviewFrom(userID string) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// RecomputeRating recalcule la note moyenne (arrondie à une décimale) et
// le compteur d'avis depuis la liste embarquée. Invariant : rating est
// toujours la moyenne des notes embarquées, num_reviews leur nombre.
func (p *Product) RecomputeRating() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}
	var sum int
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(p.NumReviews)
	p.Rating = math.Round(mean*10) / 10
}
