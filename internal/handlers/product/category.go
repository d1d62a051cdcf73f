package product

import (
	"context"
	"log"
	"net/http"
	"time"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/cache"
	"savoro_back_end/internal/database"
	"savoro_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// POST /api/categories (admin)
func CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := cat.Validate(); err != nil {
		apperr.Respond(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Un rayon par nom.
	count, err := database.MongoCatalogDB.Collection("categories").
		CountDocuments(ctx, bson.M{"name": cat.Name})
	if err == nil && count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Cette catégorie existe déjà"})
		return
	}

	cat.ID = primitive.NewObjectID()
	cat.IsActive = true
	cat.CreatedAt = time.Now()

	if _, err := database.MongoCatalogDB.Collection("categories").InsertOne(ctx, cat); err != nil {
		log.Println("❌ Erreur création catégorie:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie"})
		return
	}

	cache.InvalidateCategoryCache()

	c.JSON(http.StatusCreated, cat)
}

// GET /api/categories
func GetCategories(c *gin.Context) {
	categories, err := cache.GetCategoriesFromCache()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// PUT /api/categories/:id (admin)
func UpdateCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.ImageURL != nil {
		set["image_url"] = *input.ImageURL
	}
	if input.IsActive != nil {
		set["is_active"] = *input.IsActive
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun champ à mettre à jour"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := database.MongoCatalogDB.Collection("categories").
		UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour catégorie"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	cache.InvalidateCategoryCache()

	c.JSON(http.StatusOK, gin.H{"message": "Catégorie mise à jour"})
}

// DELETE /api/categories/:id (admin)
func DeleteCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cat models.Category
	err = database.MongoCatalogDB.Collection("categories").
		FindOne(ctx, bson.M{"_id": id}).Decode(&cat)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	// Un rayon encore peuplé ne se supprime pas.
	if len(cat.Products) > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "La catégorie contient encore des produits"})
		return
	}

	if _, err := database.MongoCatalogDB.Collection("categories").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression catégorie"})
		return
	}

	cache.InvalidateCategoryCache()

	c.JSON(http.StatusOK, gin.H{"message": "Catégorie supprimée"})
}
