package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"strings"
	"time"

	"savoro_back_end/internal/database"
	"savoro_back_end/internal/models"
	"savoro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

const resetTokenTTL = 1 * time.Hour

// ================== CHANGE PASSWORD (avec ancien mot de passe) ==================

// POST /api/auth/change-password
func ChangePassword(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var input struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(input.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le nouveau mot de passe doit contenir au moins 8 caractères"})
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

	// Les comptes fédérés n'ont pas de mot de passe à changer.
	if user.IsFederated() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les comptes OAuth ne peuvent pas changer de mot de passe ici"})
		return
	}

	valid, err := utils.VerifyPassword(input.OldPassword, user.Password)
	if err != nil || !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Ancien mot de passe incorrect"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du changement de mot de passe"})
		return
	}

	_, err = database.MongoUsersDB.Collection("users").
		UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"password": hashedPassword}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe changé avec succès"})
}

// ================== FORGOT PASSWORD (demande de réinitialisation) ==================

// POST /api/auth/forgot-password
func ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// ⚠️ Pour la sécurité, on ne révèle jamais si l'email existe ou non.
	neutral := gin.H{"message": "Si cet email existe, un lien de réinitialisation a été envoyé"}

	var user models.User
	err := database.MongoUsersDB.Collection("users").
		FindOne(ctx, bson.M{"email": email, "provider": "local"}).
		Decode(&user)
	if err != nil {
		c.JSON(http.StatusOK, neutral)
		return
	}

	resetToken := generateResetToken()
	expiry := time.Now().Add(resetTokenTTL)

	// Token valable 1 heure, porté par le compte, usage unique.
	_, err = database.MongoUsersDB.Collection("users").
		UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
			"$set": bson.M{
				"reset_token":        resetToken,
				"reset_token_expiry": expiry,
			},
		})
	if err != nil {
		log.Printf("❌ Erreur sauvegarde token reset: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la génération du lien"})
		return
	}

	if Mail != nil {
		go func(to, token string) {
			if err := Mail.SendPasswordReset(to, token); err != nil {
				log.Printf("❌ Erreur envoi email reset à %s: %v", to, err)
			} else {
				log.Printf("📧 Email de réinitialisation envoyé à %s", to)
			}
		}(user.Email, resetToken)
	}

	c.JSON(http.StatusOK, neutral)
}

// POST /api/auth/reset-password
func ResetPassword(c *gin.Context) {
	var input struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(input.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le mot de passe doit contenir au moins 8 caractères"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := database.MongoUsersDB.Collection("users").
		FindOne(ctx, bson.M{"reset_token": input.Token}).Decode(&user)
	if err != nil || !user.ResetTokenValid(input.Token, time.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide ou expiré"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la réinitialisation"})
		return
	}

	// Usage unique : le token est retiré avec la mise à jour du hash.
	_, err = database.MongoUsersDB.Collection("users").
		UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
			"$set":   bson.M{"password": hashedPassword},
			"$unset": bson.M{"reset_token": "", "reset_token_expiry": ""},
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe réinitialisé avec succès"})
}

func generateResetToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
