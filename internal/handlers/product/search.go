package product

import (
	"context"
	"net/http"
	"time"

	"savoro_back_end/internal/database"
	"savoro_back_end/internal/models"
	"savoro_back_end/internal/search"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GET /api/products/search?q=...
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'q' manquant"})
		return
	}

	// 1. Recherche Elasticsearch (prioritaire)
	results, err := search.SearchProducts(query)
	if err == nil && len(results) > 0 {
		c.JSON(http.StatusOK, results)
		return
	}

	// 2. Fallback MongoDB si ES est absent ou vide
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pattern := primitive.Regex{Pattern: query, Options: "i"}
	cursor, err := database.MongoCatalogDB.Collection("products").Find(ctx, bson.M{
		"$or": []bson.M{
			{"name": pattern},
			{"description": pattern},
			{"category": pattern},
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage"})
		return
	}

	c.JSON(http.StatusOK, products)
}
