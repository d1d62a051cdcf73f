package orders

import (
	"context"
	"fmt"
	"log"
	"time"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/mailer"
	"savoro_back_end/internal/models"
	"savoro_back_end/internal/notify"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Délai de livraison annoncé au client à la création.
const estimatedDeliveryDelay = 2 * time.Hour

// Service porte le workflow de commande : création avec réservation de
// stock, transitions de statut et annulation avec restock compensatoire.
// Le publisher et le mailer sont injectés ; leurs échecs sont logués et
// jamais remontés à l'appelant.
type Service struct {
	orders    OrderStore
	products  ProductStore
	users     UserStore
	publisher notify.Publisher
	mailer    mailer.Mailer
	now       func() time.Time
}

func NewService(orders OrderStore, products ProductStore, users UserStore, publisher notify.Publisher, m mailer.Mailer) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		users:     users,
		publisher: publisher,
		mailer:    m,
		now:       time.Now,
	}
}

type CreateItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderInput struct {
	Items           []CreateItemInput `json:"items" binding:"required"`
	DeliveryAddress string            `json:"delivery_address" binding:"required"`
	PaymentMethod   string            `json:"payment_method" binding:"required"`
	Notes           string            `json:"notes"`
}

// CreateOrder valide chaque ligne du panier, fige les prix courants,
// réserve le stock puis persiste la commande en statut pending.
//
// La réservation est un décrément conditionnel par article : si un
// article échoue (course perdue sur le stock), les décréments déjà
// effectués sont restitués et rien n'est persisté. L'insertion échouée
// restitue de même la réservation — pas de commande sans stock réservé,
// pas de stock consommé sans commande.
func (s *Service) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("utilisateur non authentifié")
	}
	if len(in.Items) == 0 {
		return nil, apperr.Validation("le panier est vide")
	}

	// 1. Valider toutes les lignes avant de toucher au stock.
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, apperr.Validation("quantité invalide")
		}
		productID, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			return nil, apperr.Validation("id produit invalide: " + it.ProductID)
		}

		product, err := s.products.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !product.IsAvailable {
			return nil, apperr.Conflict(product.Name + " n'est pas disponible")
		}
		if product.Stock < it.Quantity {
			return nil, apperr.Conflict(fmt.Sprintf("stock insuffisant pour %s (%d disponibles)", product.Name, product.Stock))
		}

		// Prix figé au moment de la commande.
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  it.Quantity,
			Price:     product.Price,
		})
	}

	now := s.now()
	order := &models.Order{
		ID:                primitive.NewObjectID(),
		UserID:            userID,
		Items:             items,
		TotalAmount:       models.ComputeTotal(items),
		Status:            models.OrderPending,
		DeliveryAddress:   in.DeliveryAddress,
		PaymentMethod:     in.PaymentMethod,
		PaymentStatus:     models.PaymentPending,
		EstimatedDelivery: now.Add(estimatedDeliveryDelay),
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	// 2. Réserver le stock, article par article.
	if err := s.reserveStock(ctx, items); err != nil {
		return nil, err
	}

	// 3. Persister. Une insertion échouée restitue la réservation.
	if err := s.orders.Insert(ctx, order); err != nil {
		s.releaseStock(ctx, items)
		return nil, err
	}

	// 4. Effets de bord best-effort.
	s.sendOrderEmail(ctx, order, "")
	s.publishToUser(ctx, order.UserID, notify.Event{
		Type:        notify.EventOrderCreated,
		OrderID:     order.ID.Hex(),
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	})
	s.broadcast(ctx, notify.Event{
		Type:        notify.EventOrderCreated,
		OrderID:     order.ID.Hex(),
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Message:     "nouvelle commande",
	})

	log.Printf("🛒 Commande %s créée pour %s (%.2f)", order.ID.Hex(), userID, order.TotalAmount)
	return order, nil
}

// reserveStock décrémente conditionnellement chaque ligne ; au premier
// échec les décréments précédents sont restitués.
func (s *Service) reserveStock(ctx context.Context, items []models.OrderItem) error {
	for i, it := range items {
		if err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.releaseStock(ctx, items[:i])
			return err
		}
	}
	return nil
}

// releaseStock restitue les quantités réservées (transaction
// compensatoire). Un échec de restitution est logué et n'empêche pas les
// autres lignes d'être restituées.
func (s *Service) releaseStock(ctx context.Context, items []models.OrderItem) {
	for _, it := range items {
		if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			log.Printf("❌ Restock impossible pour %s (+%d): %v", it.ProductID.Hex(), it.Quantity, err)
		}
	}
}

// UpdateStatus applique un statut cible à la commande. Les transitions
// entre statuts non terminaux sont volontairement permissives ; en
// revanche une commande annulée est figée, et l'annulation elle-même
// passe par Cancel qui porte le restock compensatoire.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status string) (*models.Order, error) {
	if !models.IsOrderStatus(status) {
		return nil, apperr.Validation("statut inconnu: " + status)
	}
	if status == models.OrderCancelled {
		return nil, apperr.Validation("l'annulation passe par l'opération d'annulation")
	}

	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperr.Validation("id commande invalide")
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderCancelled {
		return nil, apperr.Conflict("la commande est annulée")
	}

	now := s.now()
	order.Status = status
	order.UpdatedAt = now
	if status == models.OrderDelivered {
		order.IsDelivered = true
		order.DeliveredAt = &now
		if order.PaidAt == nil {
			order.PaidAt = &now
			order.PaymentStatus = models.PaymentPaid
		}
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.sendOrderEmail(ctx, order, status)
	s.publishToUser(ctx, order.UserID, notify.Event{
		Type:    notify.EventOrderStatus,
		OrderID: order.ID.Hex(),
		UserID:  order.UserID,
		Status:  status,
	})

	log.Printf("📦 Commande %s → %s", order.ID.Hex(), status)
	return order, nil
}

// Cancel annule une commande et restitue le stock de chaque ligne.
// Une commande expédiée ou livrée ne s'annule plus ; une annulation ne
// se rejoue pas (le garde-fou de statut rend le restock idempotent).
func (s *Service) Cancel(ctx context.Context, orderID string, actorID string, actorRole string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperr.Validation("id commande invalide")
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, apperr.Conflict("la commande ne peut plus être annulée (statut " + order.Status + ")")
	}
	if actorRole != models.RoleAdmin && actorID != order.UserID {
		return nil, apperr.Forbidden("cette commande ne vous appartient pas")
	}

	order.Status = models.OrderCancelled
	order.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	// Restock compensatoire, inverse exact de la réservation.
	s.releaseStock(ctx, order.Items)

	s.sendOrderEmail(ctx, order, models.OrderCancelled)
	s.publishToUser(ctx, order.UserID, notify.Event{
		Type:    notify.EventOrderStatus,
		OrderID: order.ID.Hex(),
		UserID:  order.UserID,
		Status:  models.OrderCancelled,
	})

	log.Printf("↩️ Commande %s annulée par %s", order.ID.Hex(), actorID)
	return order, nil
}

// GetForUser retourne une commande si elle appartient à l'utilisateur
// (les admins voient tout).
func (s *Service) GetForUser(ctx context.Context, orderID string, userID string, role string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperr.Validation("id commande invalide")
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && order.UserID != userID {
		return nil, apperr.Forbidden("cette commande ne vous appartient pas")
	}
	return order, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAll(ctx)
}

// --- Effets de bord (toujours best-effort, jamais bloquants) ---

func (s *Service) sendOrderEmail(ctx context.Context, order *models.Order, status string) {
	if s.mailer == nil {
		return
	}
	user, err := s.users.GetUser(ctx, order.UserID)
	if err != nil {
		log.Printf("⚠️ E-mail commande %s non envoyé, utilisateur introuvable: %v", order.ID.Hex(), err)
		return
	}
	if status == "" {
		err = s.mailer.SendOrderConfirmation(*order, user.Email)
	} else {
		err = s.mailer.SendOrderStatus(*order, user.Email, status)
	}
	if err != nil {
		log.Printf("❌ Erreur envoi e-mail commande %s: %v", order.ID.Hex(), err)
		return
	}
	log.Printf("📧 E-mail commande %s envoyé à %s", order.ID.Hex(), user.Email)
}

func (s *Service) publishToUser(ctx context.Context, userID string, event notify.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishToUser(ctx, userID, event); err != nil {
		log.Printf("⚠️ Notification %s non publiée pour %s: %v", event.Type, userID, err)
	}
}

func (s *Service) broadcast(ctx context.Context, event notify.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Broadcast(ctx, event); err != nil {
		log.Printf("⚠️ Broadcast %s non publié: %v", event.Type, err)
	}
}
