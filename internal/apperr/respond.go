package apperr

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Respond convertit n'importe quelle erreur en enveloppe uniforme
// {success, message}. Les erreurs hors taxonomie sont loguées et
// renvoyées en 500 sans détail interne.
func Respond(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ Erreur interne non typée: %v", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": MessageOf(err),
	})
}

// OK enveloppe une réponse de succès.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
