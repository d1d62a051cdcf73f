package admin

import (
	"net/http"

	"savoro_back_end/internal/apperr"
	"savoro_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// OrderHandler expose la gestion des commandes côté back-office.
type OrderHandler struct {
	svc *orders.Service
}

func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// GET /api/admin/orders
func (h *OrderHandler) ListAll(c *gin.Context) {
	list, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

// PUT /api/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// POST /api/admin/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), c.GetString("user_id"), c.GetString("role"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
