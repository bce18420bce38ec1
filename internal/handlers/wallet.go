// internal/handlers/wallet.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/utils"
)

type WalletHandler struct {
	walletService *services.WalletService
}

type SwitchNetworkRequest struct {
	Network string `json:"network" validate:"required,eth_network"`
}

type SendRequest struct {
	To        string `json:"to" validate:"required,eth_addr"`
	AmountEth string `json:"amount_eth" validate:"required"`
}

func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GET /wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	utils.SuccessResponse(c, h.walletService.View())
}

// POST /wallet/connect
func (h *WalletHandler) Connect(c *gin.Context) {
	view, err := h.walletService.Connect(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyWalletConnected, view)
}

// POST /wallet/disconnect
func (h *WalletHandler) Disconnect(c *gin.Context) {
	utils.MessageResponse(c, i18n.KeyWalletDisconnected, h.walletService.Disconnect())
}

// POST /wallet/network
func (h *WalletHandler) SwitchNetwork(c *gin.Context) {
	var req SwitchNetworkRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.walletService.SwitchNetwork(c.Request.Context(), req.Network)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyWalletNetworkSwitched, view)
}

// POST /wallet/send
func (h *WalletHandler) Send(c *gin.Context) {
	var req SendRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := h.walletService.Send(c.Request.Context(), req.To, req.AmountEth)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyWalletTransferSent, gin.H{"tx_hash": hash.Hex()})
}

// GET /wallet/events
func (h *WalletHandler) Events(c *gin.Context) {
	streamEvents(c, "session", h.walletService.Watch(c.Request.Context()))
}
