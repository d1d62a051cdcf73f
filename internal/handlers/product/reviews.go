package product

import (
	"net/http"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/cache"
	"savoro_back_end/internal/catalog"

	"github.com/gin-gonic/gin"
)

// ReviewHandler expose la soumission d'avis produit.
type ReviewHandler struct {
	svc *catalog.Service
}

func NewReviewHandler(svc *catalog.Service) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// POST /api/products/:id/reviews
func (h *ReviewHandler) AddReview(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var input struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment" binding:"required"`
		Name    string `json:"name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userName := input.Name
	if userName == "" {
		if email, ok := c.Get("email"); ok {
			userName, _ = email.(string)
		}
	}

	product, err := h.svc.AddReview(c.Request.Context(), c.Param("id"), userID, userName, input.Rating, input.Comment)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	cache.InvalidateProductCache(product.ID.Hex())

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Avis ajouté",
		"rating":      product.Rating,
		"num_reviews": product.NumReviews,
	})
}

// GET /api/products/:id/reviews
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	product, err := cache.GetProductFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":     product.Reviews,
		"rating":      product.Rating,
		"num_reviews": product.NumReviews,
	})
}
