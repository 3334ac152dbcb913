package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LavaJover/festival-order-service/internal/delivery/http/dto"
	"github.com/LavaJover/festival-order-service/internal/domain"
	"github.com/LavaJover/festival-order-service/internal/logging"
)

const (
	reasonNoTickets = "no_tickets"
	reasonComplete  = "collection_complete"
)

// writeError maps domain errors onto HTTP responses. Unknown errors are
// logged and reported as 500 without leaking details.
func writeError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: vErr.Error(), Field: vErr.Field})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrGameStateNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInsufficientTickets):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Reason: reasonNoTickets})
	case errors.Is(err, domain.ErrCollectionComplete):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Reason: reasonComplete})
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "payment gateway unavailable"})
	default:
		logging.FromCtx(c.Request.Context()).Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
	_ = c.Error(err)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "bad_request"})
	_ = c.Error(err)
}
