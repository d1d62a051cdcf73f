package user

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"savoro_back_end/internal/auth"
	"savoro_back_end/internal/database"
	"savoro_back_end/internal/models"
	"savoro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"golang.org/x/oauth2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ================== AUTH SOCIALE (WEB) ==================

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Callback OAuth %s: %v", provider, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := findOrCreateOAuthUser(provider, gothUser.UserID, gothUser.Email, gothUser.Name)
	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	redirectURI := os.Getenv("FRONTEND_URL")
	if redirectURI == "" {
		redirectURI = "http://localhost:5173"
	}

	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirectURI+sep+"token="+url.QueryEscape(token))
}

// ================== AUTH SOCIALE (MOBILE) ==================

// GoogleMobileLogin accepte soit un id_token (Google Sign-In natif),
// soit un code d'autorisation que l'on échange nous-mêmes.
func GoogleMobileLogin(c *gin.Context) {
	var body struct {
		IDToken string `json:"id_token"`
		Code    string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || (body.IDToken == "" && body.Code == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_token ou code manquant"})
		return
	}

	var identity *auth.Identity
	var err error
	if body.IDToken != "" {
		identity, err = auth.VerifyGoogleIDToken(body.IDToken)
	} else {
		var tok *oauth2.Token
		tok, err = auth.GoogleProvider().Exchange(c.Request.Context(), body.Code)
		if err == nil {
			identity, err = auth.FetchGoogleUserInfo(c.Request.Context(), tok)
		}
	}
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Google invalide"})
		return
	}

	user := findOrCreateOAuthUser(identity.Provider, identity.ProviderID, identity.Email, identity.Name)
	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "email": user.Email, "name": user.Name})
}

// ================== UTILITAIRES ==================

func findOrCreateOAuthUser(provider, providerID, email, name string) models.User {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	col := database.MongoUsersDB.Collection("users")
	var user models.User

	// 1. Recherche par provider_id
	err := col.FindOne(ctx, bson.M{"provider": provider, "provider_id": providerID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		// 2. Sinon, recherche par email
		err = col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			// 3. Création d'un nouvel utilisateur fédéré
			user = models.User{
				ID:         primitive.NewObjectID().Hex(),
				Email:      email,
				Name:       name,
				Provider:   provider,
				ProviderID: providerID,
				Role:       models.RoleUser,
				CreatedAt:  time.Now(),
			}
			_, _ = col.InsertOne(ctx, user)
			log.Printf("🆕 Utilisateur OAuth créé (%s): %s", provider, email)
		} else if err == nil {
			// 4. Compte existant → bascule vers le provider
			update := applyFederatedIdentity(&user, provider, providerID, name)
			_, _ = col.UpdateOne(ctx, bson.M{"email": email}, update)
			log.Printf("🔄 Compte existant fusionné avec provider %s: %s", provider, email)
		}
	} else if err == nil {
		log.Printf("✅ Utilisateur OAuth existant trouvé: %s", email)
	}

	return user
}

// applyFederatedIdentity bascule un compte local sur une identité
// fédérée. Le hash de mot de passe est retiré : la connexion passe
// désormais par le fournisseur, jamais les deux.
func applyFederatedIdentity(u *models.User, provider, providerID, name string) bson.M {
	u.Provider = provider
	u.ProviderID = providerID
	u.Password = ""
	if name != "" {
		u.Name = name
	}

	return bson.M{
		"$set": bson.M{
			"provider":    provider,
			"provider_id": providerID,
			"name":        u.Name,
		},
		"$unset": bson.M{"password": ""},
	}
}
