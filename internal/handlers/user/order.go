package user

import (
	"net/http"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// OrderHandler expose le workflow de commande aux clients connectés.
type OrderHandler struct {
	svc *orders.Service
}

func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var input orders.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), userID, input)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GET /api/orders
func (h *OrderHandler) MyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	list, err := h.svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// GET /api/orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	order, err := h.svc.GetForUser(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// POST /api/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	order, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
