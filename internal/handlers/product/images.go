package product

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"savoro_back_end/internal/cache"
	"savoro_back_end/internal/database"
	"savoro_back_end/internal/models"
	"savoro_back_end/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// POST /api/products/:id/image (admin)
func UploadProductImage(c *gin.Context) {
	if database.MinIO == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stockage d'images non configuré"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier 'image' manquant"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	col := database.MongoCatalogDB.Collection("products")
	var product models.Product
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture fichier"})
		return
	}
	defer f.Close()

	bucket := database.MinIOBucket()
	objectName := fmt.Sprintf("products/%s%s", id.Hex(), filepath.Ext(file.Filename))

	_, err = database.MinIO.PutObject(ctx, bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		log.Println("❌ Erreur upload MinIO:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	imageURL := database.MinIOObjectURL(bucket, objectName)

	_, err = col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"image_url":  imageURL,
		"updated_at": time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProductCache(id.Hex())
	product.ImageURL = imageURL
	go search.IndexProduct(product)

	log.Printf("🖼️ Image uploadée pour %s: %s", product.Name, imageURL)
	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}
