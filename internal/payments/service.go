package payments

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/mailer"
	"savoro_back_end/internal/models"
	"savoro_back_end/internal/notify"
	"savoro_back_end/internal/orders"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// La passerelle borne la longueur des références de transaction.
const maxTxRefLen = 50

// Service pilote paymentStatus : pending → paid sur vérification
// explicite, pending → failed sur rejet explicite. Tout le reste laisse
// la commande en pending.
type Service struct {
	orders    orders.OrderStore
	users     orders.UserStore
	gateway   Gateway
	publisher notify.Publisher
	mailer    mailer.Mailer
	now       func() time.Time

	currency    string
	callbackURL string
	returnURL   string
}

func NewService(orderStore orders.OrderStore, userStore orders.UserStore, gateway Gateway, publisher notify.Publisher, m mailer.Mailer) *Service {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	returnURL := os.Getenv("PAYMENT_RETURN_URL")
	if returnURL == "" {
		returnURL = baseURL + "/payment/success"
	}
	currency := os.Getenv("PAYMENT_CURRENCY")
	if currency == "" {
		currency = "ETB"
	}
	return &Service{
		orders:      orderStore,
		users:       userStore,
		gateway:     gateway,
		publisher:   publisher,
		mailer:      m,
		now:         time.Now,
		currency:    currency,
		callbackURL: baseURL + "/api/payments/callback",
		returnURL:   returnURL,
	}
}

// BuildTxRef dérive une référence unique et bornée de l'identifiant de
// commande et d'une composante temporelle.
func BuildTxRef(orderID primitive.ObjectID, at time.Time) string {
	ref := fmt.Sprintf("savoro-%s-%s", orderID.Hex(), strconv.FormatInt(at.Unix(), 36))
	if len(ref) > maxTxRefLen {
		ref = ref[:maxTxRefLen]
	}
	return ref
}

// splitName découpe un nom complet en prénom/nom pour la passerelle.
func splitName(full string) (string, string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "Client", "Savoro"
	case 1:
		return fields[0], fields[0]
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// Initialize crée une session de checkout hébergée pour la commande.
// Une commande déjà payée est refusée avant tout appel passerelle.
func (s *Service) Initialize(ctx context.Context, orderID string, actorID string, actorRole string) (string, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return "", apperr.Validation("id commande invalide")
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if actorRole != models.RoleAdmin && order.UserID != actorID {
		return "", apperr.Forbidden("cette commande ne vous appartient pas")
	}
	if order.PaymentStatus == models.PaymentPaid {
		return "", apperr.Conflict("la commande est déjà payée")
	}

	user, err := s.users.GetUser(ctx, order.UserID)
	if err != nil {
		return "", err
	}
	firstName, lastName := splitName(user.Name)

	txRef := BuildTxRef(order.ID, s.now())
	checkoutURL, err := s.gateway.Initialize(ctx, InitializeRequest{
		Amount:      order.TotalAmount,
		Currency:    s.currency,
		Email:       user.Email,
		FirstName:   firstName,
		LastName:    lastName,
		TxRef:       txRef,
		CallbackURL: s.callbackURL,
		ReturnURL:   s.returnURL,
	})
	if err != nil {
		return "", apperr.Upstream("la passerelle de paiement est indisponible", err)
	}

	order.PaymentRef = txRef
	order.PaymentStatus = models.PaymentPending
	order.PaymentMethod = "online"
	order.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, order); err != nil {
		return "", err
	}

	log.Printf("💳 Paiement initialisé pour %s (ref %s)", order.ID.Hex(), txRef)
	return checkoutURL, nil
}

// Verify réconcilie l'état de la passerelle sur la commande référencée.
// Idempotent : une commande déjà payée est retournée telle quelle, sans
// nouvel appel passerelle ni réécriture de paid_at.
func (s *Service) Verify(ctx context.Context, txRef string) (*models.Order, error) {
	order, err := s.orders.GetByPaymentRef(ctx, txRef)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentPaid {
		log.Printf("🔁 Paiement %s déjà confirmé, vérification ignorée", txRef)
		return order, nil
	}

	result, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		return nil, apperr.Upstream("vérification du paiement impossible", err)
	}

	switch result.Status {
	case GatewaySuccess:
		paidAt := result.PaidAt
		if paidAt.IsZero() {
			paidAt = s.now()
		}
		order.PaymentStatus = models.PaymentPaid
		order.PaidAt = &paidAt
		order.Status = models.OrderProcessing
		order.UpdatedAt = s.now()
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, err
		}
		s.notifyPaid(ctx, order)
		log.Printf("✅ Paiement %s confirmé (%.2f)", txRef, result.Amount)

	case GatewayFailed:
		order.PaymentStatus = models.PaymentFailed
		order.UpdatedAt = s.now()
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, err
		}
		log.Printf("❌ Paiement %s rejeté par la passerelle", txRef)

	default:
		// Ni succès ni rejet explicite : la commande reste pending.
		log.Printf("⏳ Paiement %s toujours %s côté passerelle", txRef, result.Status)
	}

	return order, nil
}

// HandleCallback traite le callback asynchrone de la passerelle. Le
// contrat de livraison exige un acquittement inconditionnel : toute
// erreur interne est loguée, jamais remontée à l'appelant externe.
func (s *Service) HandleCallback(ctx context.Context, txRef string) {
	if txRef == "" {
		log.Println("⚠️ Callback passerelle sans tx_ref, ignoré")
		return
	}
	if _, err := s.Verify(ctx, txRef); err != nil {
		log.Printf("❌ Erreur traitement callback %s: %v", txRef, err)
	}
}

func (s *Service) notifyPaid(ctx context.Context, order *models.Order) {
	if s.mailer != nil {
		user, err := s.users.GetUser(ctx, order.UserID)
		if err != nil {
			log.Printf("⚠️ E-mail paiement non envoyé, utilisateur introuvable: %v", err)
		} else if err := s.mailer.SendOrderStatus(*order, user.Email, models.OrderProcessing); err != nil {
			log.Printf("❌ Erreur envoi e-mail paiement: %v", err)
		}
	}
	if s.publisher != nil {
		event := notify.Event{
			Type:    notify.EventOrderStatus,
			OrderID: order.ID.Hex(),
			UserID:  order.UserID,
			Status:  order.Status,
			Message: "paiement confirmé",
		}
		if err := s.publisher.PublishToUser(ctx, order.UserID, event); err != nil {
			log.Printf("⚠️ Notification paiement non publiée: %v", err)
		}
	}
}
