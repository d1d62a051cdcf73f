package payment

import (
	"net/http"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/payments"

	"github.com/gin-gonic/gin"
)

// Handler expose l'initialisation et la vérification des paiements.
type Handler struct {
	svc *payments.Service
}

func NewHandler(svc *payments.Service) *Handler {
	return &Handler{svc: svc}
}

// POST /api/payments/initialize
func (h *Handler) Initialize(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var input struct {
		OrderID string `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkoutURL, err := h.svc.Initialize(c.Request.Context(), input.OrderID, userID, c.GetString("role"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkout_url": checkoutURL})
}

// GET /api/payments/verify/:tx_ref
func (h *Handler) Verify(c *gin.Context) {
	order, err := h.svc.Verify(c.Request.Context(), c.Param("tx_ref"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":       order.ID.Hex(),
		"payment_status": order.PaymentStatus,
		"status":         order.Status,
	})
}

// Callback est appelé par la passerelle après paiement. On répond
// toujours 200 : la passerelle réessaie sinon, et la vérification
// re-consultera l'état réel de toute façon.
func (h *Handler) Callback(c *gin.Context) {
	txRef := c.Query("tx_ref")
	if txRef == "" {
		txRef = c.Query("trx_ref")
	}

	h.svc.HandleCallback(c.Request.Context(), txRef)

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
