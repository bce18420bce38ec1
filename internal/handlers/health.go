// internal/handlers/health.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/services"
)

const Version = "1.0.0"

type HealthHandler struct {
	wallet *services.WalletService
}

func NewHealthHandler(wallet *services.WalletService) *HealthHandler {
	return &HealthHandler{wallet: wallet}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	view := h.wallet.View()
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"version":           Version,
		"wallet_available":  view.Available,
		"wallet_connected":  view.Connected,
		"on_market_network": view.OnMarketNetwork,
	})
}
