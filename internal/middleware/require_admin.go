package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin bloque les routes du back-office pour les non-admins.
// À chaîner après AuthRequired, qui pose le rôle dans le contexte.
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		c.Abort()
		return
	}
	c.Next()
}
