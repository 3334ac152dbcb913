package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LavaJover/festival-order-service/internal/delivery/http/dto"
	orderdto "github.com/LavaJover/festival-order-service/internal/usecase/dto/order"
	"github.com/LavaJover/festival-order-service/internal/usecase/order"
)

const requestTimeout = 5 * time.Second

type OrderHandler struct {
	uc order.OrderUsecase
}

func NewOrderHandler(uc order.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// CreateOrder stores a submitted order. Client-supplied totals and ticket
// counts are ignored.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	o, err := h.uc.CreateOrUpdateOrder(ctx, &orderdto.CreateOrderInput{
		OrderCode: req.OrderCode,
		Name:      req.Name,
		Phone:     req.Phone,
		Class:     req.Class,
		Quantity:  req.Quantity,
		Note:      req.Note,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(o))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.uc.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponses(orders))
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	o, err := h.uc.UpdateOrder(c.Request.Context(), &orderdto.UpdateOrderInput{
		OrderCode: c.Param("code"),
		Status:    req.Status,
		Delivered: req.Delivered,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(o))
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.uc.DeleteOrder(c.Request.Context(), c.Param("code")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *OrderHandler) DeleteAllOrders(c *gin.Context) {
	n, err := h.uc.DeleteAllOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": n})
}

func (h *OrderHandler) CleanupExpiredOrders(c *gin.Context) {
	out, err := h.uc.CleanupExpiredOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
