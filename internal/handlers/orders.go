package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gokart-backend/internal/apperr"
	"gokart-backend/internal/models"
	"gokart-backend/internal/orders"
)

type OrdersHandler struct {
	service *orders.Service
}

func NewOrdersHandler(service *orders.Service) *OrdersHandler {
	return &OrdersHandler{service: service}
}

// CreateOrder godoc
// @Summary     Create a new kart order
// @Description Accepts a prompt, model type and email, prices the order and queues asset generation. Poll /status/{order_id} until the order is ready.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body models.CreateOrderRequest true "Order details"
// @Success     200 {object} models.CreateOrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /create-order [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	order, err := h.service.Create(c.Request.Context(), req.Prompt, req.ModelType, req.UserEmail)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), models.ErrorResponse{
			Error:   apperr.Kind(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.CreateOrderResponse{
		OrderID: order.ID.String(),
		Price:   order.Price,
		Status:  order.Status,
	})
}
