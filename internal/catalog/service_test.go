package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProductStore struct {
	products map[primitive.ObjectID]*models.Product
	updates  int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[primitive.ObjectID]*models.Product{}}
}

func (f *fakeProductStore) GetProduct(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("produit")
	}
	cp := *p
	cp.Reviews = append([]models.Review(nil), p.Reviews...)
	return &cp, nil
}

func (f *fakeProductStore) UpdateReviews(_ context.Context, product *models.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return apperr.NotFound("produit")
	}
	cp := *product
	f.products[product.ID] = &cp
	f.updates++
	return nil
}

func newTestCatalog() (*Service, *fakeProductStore, primitive.ObjectID) {
	store := newFakeProductStore()
	id := primitive.NewObjectID()
	store.products[id] = &models.Product{
		ID:          id,
		Name:        "Pizza Margherita",
		Price:       8.99,
		Category:    "pizza",
		Stock:       10,
		IsAvailable: true,
	}
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store, id
}

func TestAddReviewRecomputesMean(t *testing.T) {
	svc, store, id := newTestCatalog()
	ctx := context.Background()

	_, err := svc.AddReview(ctx, id.Hex(), "u1", "Awa", 5, "Excellente pizza")
	require.NoError(t, err)
	_, err = svc.AddReview(ctx, id.Hex(), "u2", "Brook", 4, "Très bonne")
	require.NoError(t, err)
	updated, err := svc.AddReview(ctx, id.Hex(), "u3", "Chaltu", 4, "Bonne mais un peu froide")
	require.NoError(t, err)

	// mean(5,4,4) = 4.333… → arrondi à une décimale.
	assert.InDelta(t, 4.3, updated.Rating, 0.001)
	assert.Equal(t, 3, updated.NumReviews)
	assert.Len(t, updated.Reviews, 3)

	persisted := store.products[id]
	assert.InDelta(t, 4.3, persisted.Rating, 0.001)
	assert.Equal(t, 3, persisted.NumReviews)
}

func TestAddReviewRoundsHalfUp(t *testing.T) {
	svc, _, id := newTestCatalog()
	ctx := context.Background()

	_, err := svc.AddReview(ctx, id.Hex(), "u1", "Awa", 5, "Parfait")
	require.NoError(t, err)
	updated, err := svc.AddReview(ctx, id.Hex(), "u2", "Brook", 4, "Très bien")
	require.NoError(t, err)

	assert.InDelta(t, 4.5, updated.Rating, 0.001)
}

func TestAddReviewOncePerUser(t *testing.T) {
	svc, store, id := newTestCatalog()
	ctx := context.Background()

	_, err := svc.AddReview(ctx, id.Hex(), "u1", "Awa", 5, "Excellente pizza")
	require.NoError(t, err)
	updatesAfterFirst := store.updates

	_, err = svc.AddReview(ctx, id.Hex(), "u1", "Awa", 1, "Finalement non")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Les agrégats restent inchangés après le refus.
	persisted := store.products[id]
	assert.InDelta(t, 5.0, persisted.Rating, 0.001)
	assert.Equal(t, 1, persisted.NumReviews)
	assert.Equal(t, updatesAfterFirst, store.updates)
}

func TestAddReviewValidation(t *testing.T) {
	svc, _, id := newTestCatalog()
	ctx := context.Background()

	_, err := svc.AddReview(ctx, id.Hex(), "u1", "Awa", 0, "Commentaire valide")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AddReview(ctx, id.Hex(), "u1", "Awa", 6, "Commentaire valide")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Trop court après trim.
	_, err = svc.AddReview(ctx, id.Hex(), "u1", "Awa", 4, "  ab  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AddReview(ctx, id.Hex(), "u1", "Awa", 4, strings.Repeat("a", 501))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddReviewCountsRunesNotBytes(t *testing.T) {
	svc, _, id := newTestCatalog()
	ctx := context.Background()

	// 500 caractères accentués font 1000 octets : la borne porte sur
	// les caractères, pas les octets.
	product, err := svc.AddReview(ctx, id.Hex(), "u1", "Awa", 4, strings.Repeat("é", 500))
	assert.NoError(t, err)
	assert.Equal(t, 1, product.NumReviews)

	_, err = svc.AddReview(ctx, id.Hex(), "u2", "Moussa", 4, strings.Repeat("é", 501))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddReviewUnknownProduct(t *testing.T) {
	svc, _, _ := newTestCatalog()

	_, err := svc.AddReview(context.Background(), primitive.NewObjectID().Hex(), "u1", "Awa", 4, "Bonne pizza")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
