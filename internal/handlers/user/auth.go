package user

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"savoro_back_end/internal/database"
	"savoro_back_end/internal/mailer"
	"savoro_back_end/internal/models"
	"savoro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mail est branché au démarrage ; laissé nil, les envois sont ignorés.
var Mail mailer.Mailer

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Address  string `json:"address"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// email déjà pris pour un compte local ?
	var existing models.User
	err := database.MongoUsersDB.Collection("users").
		FindOne(ctx, bson.M{"email": email, "provider": "local"}).
		Decode(&existing)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	user := models.User{
		ID:        primitive.NewObjectID().Hex(),
		Name:      input.Name,
		Email:     email,
		Password:  hashedPassword,
		Role:      models.RoleUser,
		Provider:  "local",
		Address:   input.Address,
		Phone:     input.Phone,
		CreatedAt: time.Now(),
	}
	if err := user.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := database.MongoUsersDB.Collection("users").InsertOne(ctx, user); err != nil {
		log.Println("❌ Erreur insertion utilisateur:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("✅ Compte créé: %s", email)
	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	err := database.MongoUsersDB.Collection("users").
		FindOne(ctx, bson.M{"email": email, "provider": "local"}).
		Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	valid, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

func Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := database.MongoUsersDB.Collection("users").
		FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":   user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"role":     user.Role,
		"provider": user.Provider,
		"address":  user.Address,
		"phone":    user.Phone,
	})
}

// UpdateProfile met à jour les coordonnées de livraison du compte.
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var input struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	set := bson.M{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.Address != "" {
		set["address"] = input.Address
	}
	if input.Phone != "" {
		set["phone"] = input.Phone
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun champ à mettre à jour"})
		return
	}

	res, err := database.MongoUsersDB.Collection("users").
		UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour"})
}
