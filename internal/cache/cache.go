package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"savoro_back_end/internal/database"
	"savoro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProductCacheTTL  = 10 * time.Minute
	ListCacheTTL     = 5 * time.Minute
	CategoryCacheTTL = 30 * time.Minute
)

const (
	productKeyPrefix = "product:"
	productListKey   = "products:all"
	categoryListKey  = "categories:all"
)

// GetProductFromCache récupère un produit depuis Redis ou MongoDB
func GetProductFromCache(productID string) (*models.Product, error) {
	ctx := context.Background()
	key := productKeyPrefix + productID

	// 1. Essayer le cache Redis
	if database.Redis != nil {
		data, err := database.Redis.Get(ctx, key).Result()
		if err == nil {
			var product models.Product
			if json.Unmarshal([]byte(data), &product) == nil {
				return &product, nil
			}
		}
	}

	// 2. Récupérer de MongoDB
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = database.MongoCatalogDB.Collection("products").
		FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	if database.Redis != nil {
		jsonData, _ := json.Marshal(product)
		database.Redis.Set(ctx, key, jsonData, ProductCacheTTL)
	}

	return &product, nil
}

// GetProductListFromCache récupère la liste complète des produits,
// servie depuis Redis quand elle y est encore.
func GetProductListFromCache() ([]models.Product, error) {
	ctx := context.Background()

	if database.Redis != nil {
		data, err := database.Redis.Get(ctx, productListKey).Result()
		if err == nil {
			var products []models.Product
			if json.Unmarshal([]byte(data), &products) == nil {
				return products, nil
			}
		}
	}

	cursor, err := database.MongoCatalogDB.Collection("products").
		Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	if database.Redis != nil {
		jsonData, _ := json.Marshal(products)
		database.Redis.Set(ctx, productListKey, jsonData, ListCacheTTL)
	}

	return products, nil
}

// GetCategoriesFromCache récupère les catégories actives
func GetCategoriesFromCache() ([]models.Category, error) {
	ctx := context.Background()

	if database.Redis != nil {
		data, err := database.Redis.Get(ctx, categoryListKey).Result()
		if err == nil {
			var categories []models.Category
			if json.Unmarshal([]byte(data), &categories) == nil {
				return categories, nil
			}
		}
	}

	cursor, err := database.MongoCatalogDB.Collection("categories").
		Find(ctx, bson.M{"is_active": true}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}

	if database.Redis != nil {
		jsonData, _ := json.Marshal(categories)
		database.Redis.Set(ctx, categoryListKey, jsonData, CategoryCacheTTL)
	}

	return categories, nil
}

// InvalidateProductCache invalide le cache d'un produit et la liste
func InvalidateProductCache(productID string) {
	if database.Redis == nil {
		return
	}
	ctx := context.Background()
	if err := database.Redis.Del(ctx, productKeyPrefix+productID, productListKey).Err(); err != nil {
		log.Println("⚠️ Invalidation cache produit échouée:", err)
	}
}

// InvalidateCategoryCache invalide la liste des catégories
func InvalidateCategoryCache() {
	if database.Redis == nil {
		return
	}
	if err := database.Redis.Del(context.Background(), categoryListKey).Err(); err != nil {
		log.Println("⚠️ Invalidation cache catégories échouée:", err)
	}
}
