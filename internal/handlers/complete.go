package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gokart-backend/internal/apperr"
	"gokart-backend/internal/models"
	"gokart-backend/internal/orders"
)

type CompleteHandler struct {
	service *orders.Service
}

func NewCompleteHandler(service *orders.Service) *CompleteHandler {
	return &CompleteHandler{service: service}
}

// CompleteOrder godoc
// @Summary     Force-complete an order
// @Description Runs generation synchronously and returns the finished asset map. Already-ready orders are returned unchanged.
// @Tags        orders
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.CompleteOrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /complete-order/{order_id} [post]
func (h *CompleteHandler) CompleteOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.service.ForceComplete(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), models.ErrorResponse{
			Error:   apperr.Kind(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.CompleteOrderResponse{
		OrderID: order.ID.String(),
		Status:  order.Status,
		Assets:  order.Assets,
	})
}

// RetryOrder godoc
// @Summary     Retry a failed order
// @Description Re-queues generation for a failed order. Processing and ready orders are left untouched.
// @Tags        orders
// @Produce     json
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.RetryOrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /retry-order/{order_id} [post]
func (h *CompleteHandler) RetryOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.service.Retry(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), models.ErrorResponse{
			Error:   apperr.Kind(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.RetryOrderResponse{
		OrderID: order.ID.String(),
		Status:  order.Status,
	})
}
