package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LavaJover/festival-order-service/internal/delivery/http/dto"
	"github.com/LavaJover/festival-order-service/internal/usecase/minigame"
)

type GameHandler struct {
	uc minigame.GameUsecase
}

func NewGameHandler(uc minigame.GameUsecase) *GameHandler {
	return &GameHandler{uc: uc}
}

func (h *GameHandler) GetGameState(c *gin.Context) {
	out, err := h.uc.GetGameState(c.Request.Context(), c.Query("phone"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *GameHandler) PlayWheel(c *gin.Context) {
	var req dto.PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.uc.PlayWheel(c.Request.Context(), req.Phone)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *GameHandler) PlayCardFlip(c *gin.Context) {
	var req dto.PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.uc.PlayCardFlip(c.Request.Context(), req.Phone)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// AddTickets grants bonus tickets; an omitted count grants one.
func (h *GameHandler) AddTickets(c *gin.Context) {
	var req dto.AddTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	count := int64(1)
	if req.Tickets != nil {
		count = *req.Tickets
	}
	out, err := h.uc.GrantBonusTickets(c.Request.Context(), req.Phone, count)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *GameHandler) DeleteGameState(c *gin.Context) {
	if err := h.uc.DeleteGameState(c.Request.Context(), c.Param("phone")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) ListGameStats(c *gin.Context) {
	stats, err := h.uc.ListGameStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
