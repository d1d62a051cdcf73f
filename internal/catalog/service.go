package catalog

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStore expose ce que la soumission d'avis attend du catalogue.
type ProductStore interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// UpdateReviews persiste la liste d'avis embarquée et les agrégats
	// rating / num_reviews recalculés.
	UpdateReviews(ctx context.Context, product *models.Product) error
}

// Service porte la soumission d'avis : un avis par utilisateur et par
// produit, note moyenne arrondie à une décimale.
type Service struct {
	products ProductStore
	now      func() time.Time
}

func NewService(products ProductStore) *Service {
	return &Service{products: products, now: time.Now}
}

// AddReview ajoute un avis au produit et recalcule les agrégats.
func (s *Service) AddReview(ctx context.Context, productID string, userID string, userName string, rating int, comment string) (*models.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("la note doit être comprise entre 1 et 5")
	}
	comment = strings.TrimSpace(comment)
	if n := utf8.RuneCountInString(comment); n < 3 || n > 500 {
		return nil, apperr.Validation("le commentaire doit faire entre 3 et 500 caractères")
	}

	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperr.Validation("id produit invalide")
	}
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.HasReviewFrom(userID) {
		return nil, apperr.Conflict("vous avez déjà laissé un avis sur ce produit")
	}

	product.Reviews = append(product.Reviews, models.Review{
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now(),
	})
	product.RecomputeRating()

	if err := s.products.UpdateReviews(ctx, product); err != nil {
		return nil, err
	}

	log.Printf("⭐ Avis %d/5 ajouté sur %s par %s", rating, product.Name, userID)
	return product, nil
}
