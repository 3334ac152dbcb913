package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LavaJover/festival-order-service/internal/usecase/payment"
)

type PaymentHandler struct {
	uc payment.PaymentUsecase
}

func NewPaymentHandler(uc payment.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) CheckPayment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.uc.CheckPayment(ctx, c.Query("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) AutoCheck(c *gin.Context) {
	out, err := h.uc.AutoCheckPendingPayments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) RecentTransactions(c *gin.Context) {
	txs, err := h.uc.RecentTransactions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
