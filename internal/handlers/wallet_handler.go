package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arcwardens/outreach-backend/internal/models"
	"github.com/arcwardens/outreach-backend/internal/services"
)

type WalletHandler struct {
	walletService *services.WalletService
}

func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// Balance godoc
// @Summary Get wallet balance
// @Description Returns the wallet's token balances with the USDC entry normalized
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Param walletId query string true "Wallet ID"
// @Success 200 {object} models.WalletBalanceResponse
// @Failure 502 {object} map[string]interface{}
// @Router /api/wallet/balance [get]
func (h *WalletHandler) Balance(c *gin.Context) {
	walletID := c.Query("walletId")
	if walletID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "walletId parameter required"})
		return
	}

	resp, err := h.walletService.GetBalance(c.Request.Context(), walletID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Info godoc
// @Summary Get wallet information
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Param walletId query string true "Wallet ID"
// @Success 200 {object} models.WalletInfoResponse
// @Failure 502 {object} map[string]interface{}
// @Router /api/wallet/info [get]
func (h *WalletHandler) Info(c *gin.Context) {
	walletID := c.Query("walletId")
	if walletID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "walletId parameter required"})
		return
	}

	resp, err := h.walletService.GetWalletInfo(c.Request.Context(), walletID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transactions godoc
// @Summary Get wallet transaction history
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Param walletId query string true "Wallet ID"
// @Param pageSize query int false "Number of transactions to return" default(50)
// @Success 200 {object} models.WalletTransactionsResponse
// @Failure 502 {object} map[string]interface{}
// @Router /api/wallet/transactions [get]
func (h *WalletHandler) Transactions(c *gin.Context) {
	walletID := c.Query("walletId")
	if walletID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "walletId parameter required"})
		return
	}

	pageSize := 50
	if raw := c.Query("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}

	resp, err := h.walletService.GetTransactions(c.Request.Context(), walletID, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Send godoc
// @Summary Send a transaction
// @Description Submits a developer-controlled transfer from a custodial wallet
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SendTransactionRequest true "Transfer request"
// @Success 200 {object} models.TransferResponse
// @Failure 502 {object} map[string]interface{}
// @Router /api/wallet/send [post]
func (h *WalletHandler) Send(c *gin.Context) {
	var req models.SendTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	resp, err := h.walletService.SendTransaction(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Faucet godoc
// @Summary Request testnet faucet funds
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.FaucetRequest true "Faucet request"
// @Success 200 {object} models.FaucetResponse
// @Failure 502 {object} map[string]interface{}
// @Router /api/wallet/faucet [post]
func (h *WalletHandler) Faucet(c *gin.Context) {
	var req models.FaucetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	resp, err := h.walletService.RequestFaucet(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
