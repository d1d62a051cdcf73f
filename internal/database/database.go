package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// --- Handles globaux ---
var (
	Mongo          *mongo.Client
	MongoUsersDB   *mongo.Database
	MongoCatalogDB *mongo.Database
	MongoOrdersDB  *mongo.Database
	Redis          *redis.Client
	Elastic        *elasticsearch.Client
	MinIO          *minio.Client
)

// ConnectDatabases initialise MongoDB, Redis, Elasticsearch et MinIO.
// Mongo et Redis sont requis ; Elasticsearch et MinIO sont optionnels
// (la recherche et l'upload d'images se désactivent proprement).
func ConnectDatabases() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	connectMongo(ctx)
	connectRedis(ctx)
	connectElastic()
	connectMinIO(ctx)

	log.Println("✅ Toutes les bases de données sont connectées")
}

// =============================================
// MONGODB
// =============================================
func connectMongo(ctx context.Context) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal("❌ Erreur connexion MongoDB:", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("❌ MongoDB injoignable:", err)
	}

	Mongo = client
	MongoUsersDB = client.Database(envOr("MONGO_DB_USERS", "savoro_users"))
	MongoCatalogDB = client.Database(envOr("MONGO_DB_CATALOG", "savoro_catalog"))
	MongoOrdersDB = client.Database(envOr("MONGO_DB_ORDERS", "savoro_orders"))

	log.Println("✅ Connecté à MongoDB")
}

// CloseMongo ferme la connexion MongoDB.
func CloseMongo() {
	if Mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Mongo.Disconnect(ctx); err != nil {
		log.Println("⚠️ Erreur fermeture MongoDB:", err)
	}
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_HOST", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Fatal("❌ Erreur connexion Redis:", err)
	}
	log.Println("✅ Connecté à Redis")
}

// =============================================
// ELASTICSEARCH (optionnel)
// =============================================
func connectElastic() {
	url := os.Getenv("ELASTIC_URL")
	if url == "" {
		log.Println("⚠️ ELASTIC_URL absent — recherche produits désactivée")
		return
	}

	cfg := elasticsearch.Config{
		Addresses: []string{url},
		Username:  os.Getenv("ELASTIC_USER"),
		Password:  os.Getenv("ELASTIC_PASSWORD"),
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		log.Println("⚠️ Erreur création client Elasticsearch:", err)
		return
	}

	res, err := client.Info()
	if err != nil {
		log.Println("⚠️ Elasticsearch injoignable:", err)
		return
	}
	defer res.Body.Close()

	Elastic = client
	log.Println("✅ Connecté à Elasticsearch")
}

// =============================================
// MINIO (optionnel)
// =============================================
func connectMinIO(ctx context.Context) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		log.Println("⚠️ MINIO_ENDPOINT absent — upload d'images désactivé")
		return
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
		Secure: os.Getenv("MINIO_USE_SSL") == "true",
	})
	if err != nil {
		log.Println("⚠️ Erreur connexion MinIO:", err)
		return
	}

	bucketName := MinIOBucket()
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Println("⚠️ Erreur vérification bucket MinIO:", err)
		return
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Println("⚠️ Erreur création bucket MinIO:", err)
			return
		}
		log.Println("🪣 Bucket créé :", bucketName)
	}

	MinIO = client
	log.Println("✅ Connecté à MinIO :", endpoint)
}

// MinIOBucket retourne le bucket où sont rangées les images produits.
func MinIOBucket() string {
	return envOr("MINIO_BUCKET", "savoro-images")
}

// MinIOObjectURL construit l'URL publique d'un objet stocké.
func MinIOObjectURL(bucket, object string) string {
	scheme := "http"
	if os.Getenv("MINIO_USE_SSL") == "true" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, os.Getenv("MINIO_ENDPOINT"), bucket, object)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
