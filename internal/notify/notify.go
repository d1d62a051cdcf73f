package notify

import "context"

// Types d'événements poussés aux clients connectés.
const (
	EventOrderCreated = "order_created"
	EventOrderStatus  = "order_status"
)

// Event est le message publié sur un canal de notification. ID est
// attribué à la publication et permet aux clients de dédupliquer.
type Event struct {
	ID          string  `json:"id,omitempty"`
	Type        string  `json:"type"`
	OrderID     string  `json:"order_id,omitempty"`
	UserID      string  `json:"user_id,omitempty"`
	Status      string  `json:"status,omitempty"`
	TotalAmount float64 `json:"total_amount,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// Publisher pousse des événements temps réel. Les workflows métier le
// reçoivent par injection à la construction — jamais via un état global.
// Les échecs de publication sont logués par l'appelant, jamais remontés.
type Publisher interface {
	// PublishToUser pousse un événement sur le canal direct d'un utilisateur.
	PublishToUser(ctx context.Context, userID string, event Event) error
	// Broadcast pousse un événement sur le canal global des admins connectés.
	Broadcast(ctx context.Context, event Event) error
}
