package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gokart-backend/internal/apperr"
	"gokart-backend/internal/models"
	"gokart-backend/internal/orders"
)

type StatusHandler struct {
	service *orders.Service
}

func NewStatusHandler(service *orders.Service) *StatusHandler {
	return &StatusHandler{service: service}
}

// GetStatus godoc
// @Summary     Get order status
// @Description Returns the current lifecycle state of an order. The asset map is present once the order is ready; a failed order carries the failure reason.
// @Tags        orders
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.StatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /status/{order_id} [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.service.Status(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), models.ErrorResponse{
			Error:   apperr.Kind(err),
			Message: err.Error(),
		})
		return
	}

	resp := models.StatusResponse{
		OrderID:   order.ID.String(),
		Status:    order.Status,
		Error:     order.Error,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if order.Status == models.StatusReady {
		resp.Assets = order.Assets
	}

	c.JSON(http.StatusOK, resp)
}
