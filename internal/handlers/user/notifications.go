package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"savoro_back_end/internal/database"
	"savoro_back_end/internal/models"
	"savoro_back_end/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// NotificationsWebSocket relaie en temps réel les événements de commande
// publiés sur Redis vers le client connecté. Les admins reçoivent en plus
// le canal global (nouvelles commandes de tous les clients).
func NotificationsWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	channels := []string{notify.UserChannel(userID)}
	if c.GetString("role") == models.RoleAdmin {
		channels = append(channels, notify.BroadcastChannel)
	}

	pubsub := database.Redis.Subscribe(ctx, channels...)
	defer pubsub.Close()

	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Notifications temps réel activées",
	})

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Les événements sont déjà du JSON, on les relaie tels quels.
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
