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
	"savoro_back_end/internal/search"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// POST /api/products (admin)
func CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := p.Validate(); err != nil {
		apperr.Respond(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.Reviews = []models.Review{}
	p.Rating = 0
	p.NumReviews = 0
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := database.MongoCatalogDB.Collection("products").InsertOne(ctx, p); err != nil {
		log.Println("❌ Erreur création produit:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// Référence inverse dans la fiche du rayon.
	_, _ = database.MongoCatalogDB.Collection("categories").
		UpdateOne(ctx, bson.M{"name": p.Category}, bson.M{"$addToSet": bson.M{"products": p.ID}})

	cache.InvalidateProductCache(p.ID.Hex())

	// Indexation Elasticsearch en arrière-plan
	go search.IndexProduct(p)

	log.Printf("✅ Produit créé: %s (%s)", p.Name, p.ID.Hex())
	c.JSON(http.StatusCreated, p)
}

// GET /api/products
func GetAllProducts(c *gin.Context) {
	products, err := cache.GetProductListFromCache()
	if err != nil {
		log.Println("❌ Erreur lecture produits:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /api/products/:id
func GetProductByID(c *gin.Context) {
	product, err := cache.GetProductFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GET /api/products/category/:category
func GetProductsByCategory(c *gin.Context) {
	category := c.Param("category")
	if !models.IsProductCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie inconnue: " + category})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := database.MongoCatalogDB.Collection("products").
		Find(ctx, bson.M{"category": category}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
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

// PUT /api/products/:id (admin)
func UpdateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		ImageURL    *string  `json:"image_url"`
		IsAvailable *bool    `json:"is_available"`
		Stock       *int     `json:"stock"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "le prix ne peut pas être négatif"})
			return
		}
		set["price"] = *input.Price
	}
	if input.Category != nil {
		if !models.IsProductCategory(*input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "catégorie inconnue: " + *input.Category})
			return
		}
		set["category"] = *input.Category
	}
	if input.ImageURL != nil {
		set["image_url"] = *input.ImageURL
	}
	if input.IsAvailable != nil {
		set["is_available"] = *input.IsAvailable
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "le stock ne peut pas être négatif"})
			return
		}
		set["stock"] = *input.Stock
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	col := database.MongoCatalogDB.Collection("products")
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	cache.InvalidateProductCache(id.Hex())

	var updated models.Product
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err == nil {
		go search.IndexProduct(updated)
		c.JSON(http.StatusOK, updated)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Produit mis à jour"})
}

// DELETE /api/products/:id (admin)
func DeleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := database.MongoCatalogDB.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	// Retire la référence inverse du rayon.
	_, _ = database.MongoCatalogDB.Collection("categories").
		UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{"products": id}})

	cache.InvalidateProductCache(id.Hex())
	go search.DeleteProduct(id.Hex())

	log.Printf("🗑️ Produit supprimé: %s", id.Hex())
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}
