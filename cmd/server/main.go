package main

import (
	"log"
	"os"

	"savoro_back_end/internal/catalog"
	"savoro_back_end/internal/config"
	"savoro_back_end/internal/database"
	"savoro_back_end/internal/handlers/admin"
	"savoro_back_end/internal/handlers/payment"
	"savoro_back_end/internal/handlers/product"
	"savoro_back_end/internal/handlers/user"
	"savoro_back_end/internal/mailer"
	"savoro_back_end/internal/notify"
	"savoro_back_end/internal/orders"
	"savoro_back_end/internal/payments"
	"savoro_back_end/internal/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	database.ConnectDatabases()
	defer database.CloseMongo()

	config.InitOAuthProviders()

	// Effets de bord injectés dans les workflows (jamais globaux).
	publisher := notify.NewRedisPublisher(database.Redis)

	var mail mailer.Mailer
	if os.Getenv("SMTP_HOST") != "" {
		mail = mailer.NewSMTPMailer()
		user.Mail = mail
		log.Println("✅ Mailer SMTP initialisé")
	} else {
		log.Println("⚠️ SMTP_HOST absent — envoi d'e-mails désactivé")
	}

	orderStore := orders.NewMongoStore(database.MongoCatalogDB, database.MongoOrdersDB, database.MongoUsersDB)
	orderSvc := orders.NewService(orderStore, orderStore, orderStore, publisher, mail)

	paymentSvc := payments.NewService(orderStore, orderStore, payments.NewChapaClient(), publisher, mail)

	catalogSvc := catalog.NewService(catalog.NewMongoStore(database.MongoCatalogDB))

	h := routes.Handlers{
		Orders:      user.NewOrderHandler(orderSvc),
		AdminOrders: admin.NewOrderHandler(orderSvc),
		Payments:    payment.NewHandler(paymentSvc),
		Reviews:     product.NewReviewHandler(catalogSvc),
	}

	r := gin.Default()
	routes.RegisterRoutes(r, h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Savoro lancé sur le port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("❌ Serveur arrêté:", err)
	}
}
