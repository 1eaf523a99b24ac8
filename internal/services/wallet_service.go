package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
	"github.com/arcwardens/outreach-backend/internal/models"
)

const circleBaseURL = "https://api.circle.com"

// WalletService is a thin pass-through over the Circle custodial wallet
// API. Provider errors surface as-is; there are no retries.
type WalletService struct {
	cfg        config.CircleConfig
	baseURL    string
	httpClient *http.Client
}

func NewWalletService(cfg config.CircleConfig) *WalletService {
	return &WalletService{
		cfg:     cfg,
		baseURL: circleBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *WalletService) headers(req *http.Request) error {
	if s.cfg.APIKey == "" {
		return apperrors.New(apperrors.NotConfigured, "CIRCLE_API_KEY is not configured")
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return nil
}

func (s *WalletService) do(ctx context.Context, method, path string, payload interface{}, timeout time.Duration) (int, map[string]interface{}, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode circle request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build circle request: %w", err)
	}
	if err := s.headers(req); err != nil {
		return 0, nil, err
	}

	client := s.httpClient
	if timeout > 0 && timeout != client.Timeout {
		c := *client
		c.Timeout = timeout
		client = &c
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "circle request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read circle response: %w", err)
	}

	data := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil && resp.StatusCode < 400 {
			return resp.StatusCode, nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "failed to parse circle response", err)
		}
	}

	if resp.StatusCode >= 400 {
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if m, ok := data["message"].(string); ok && m != "" {
			message = m
		}
		logrus.Errorf("Circle API error (%d) on %s %s: %s", resp.StatusCode, method, path, message)
		return resp.StatusCode, data, apperrors.Newf(apperrors.UpstreamUnavailable, "circle error: %s", message)
	}

	return resp.StatusCode, data, nil
}

// GetBalance returns the wallet's token balances with the USDC entry
// normalized. Balance placement and field names vary across provider
// versions, so several locations are probed.
func (s *WalletService) GetBalance(ctx context.Context, walletID string) (*models.WalletBalanceResponse, error) {
	walletID = strings.TrimSpace(walletID)
	path := fmt.Sprintf("/v1/w3s/wallets/%s/balances?includeAll=true", walletID)
	_, data, err := s.do(ctx, http.MethodGet, path, nil, 0)
	if err != nil {
		return nil, err
	}

	balances := extractBalances(data)
	return &models.WalletBalanceResponse{
		Success:     true,
		WalletID:    walletID,
		Balances:    balances,
		USDCBalance: normalizeUSDC(balances),
	}, nil
}

// GetWalletInfo returns the provider's wallet metadata.
func (s *WalletService) GetWalletInfo(ctx context.Context, walletID string) (*models.WalletInfoResponse, error) {
	walletID = strings.TrimSpace(walletID)
	_, data, err := s.do(ctx, http.MethodGet, "/v1/w3s/wallets/"+walletID, nil, 0)
	if err != nil {
		return nil, err
	}

	wallet := map[string]interface{}{}
	if inner, ok := data["data"].(map[string]interface{}); ok {
		if w, ok := inner["wallet"].(map[string]interface{}); ok {
			wallet = w
		} else {
			wallet = inner
		}
	}

	return &models.WalletInfoResponse{Success: true, Wallet: wallet}, nil
}

// GetTransactions lists the wallet's transaction history, falling back
// to the wallet-scoped endpoint when the filtered listing rejects.
func (s *WalletService) GetTransactions(ctx context.Context, walletID string, pageSize int) (*models.WalletTransactionsResponse, error) {
	walletID = strings.TrimSpace(walletID)
	if pageSize <= 0 {
		pageSize = 50
	}

	path := fmt.Sprintf("/v1/w3s/transactions?walletIds=%s&pageSize=%d", walletID, pageSize)
	_, data, err := s.do(ctx, http.MethodGet, path, nil, 0)
	if err != nil {
		fallback := fmt.Sprintf("/v1/w3s/wallets/%s/transactions?pageSize=%d", walletID, pageSize)
		_, data, err = s.do(ctx, http.MethodGet, fallback, nil, 0)
		if err != nil {
			return nil, err
		}
	}

	return &models.WalletTransactionsResponse{
		Success:      true,
		WalletID:     walletID,
		Transactions: extractTransactions(data),
	}, nil
}

// SendTransaction submits a developer-controlled transfer with a fresh
// idempotency key and entity secret ciphertext.
func (s *WalletService) SendTransaction(ctx context.Context, req *models.SendTransactionRequest) (*models.TransferResponse, error) {
	ciphertext, err := EntitySecretCiphertext(s.cfg)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"idempotencyKey":         uuid.NewString(),
		"walletId":               req.WalletID,
		"destinationAddress":     req.ReceiverAddress,
		"tokenId":                req.TokenID,
		"amounts":                []string{req.Amount},
		"feeLevel":               "MEDIUM",
		"entitySecretCiphertext": ciphertext,
		"refId":                  "arc-wardens-transfer",
	}

	status, data, err := s.do(ctx, http.MethodPost, "/v1/w3s/developer/transactions/transfer", payload, 60*time.Second)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return &models.TransferResponse{Success: true, Message: "Transaction submitted (204 No Content)"}, nil
	}

	resp := &models.TransferResponse{Success: true}
	if tx, ok := data["data"].(map[string]interface{}); ok {
		resp.Transaction = tx
		if id, ok := tx["id"].(string); ok {
			resp.TransactionID = id
		}
		if state, ok := tx["state"].(string); ok {
			resp.State = state
		}
	}
	return resp, nil
}

// RequestFaucet asks the provider to fund a testnet address with USDC.
func (s *WalletService) RequestFaucet(ctx context.Context, req *models.FaucetRequest) (*models.FaucetResponse, error) {
	blockchain := req.Blockchain
	if blockchain == "" {
		blockchain = s.cfg.DefaultBlockchain
	}

	payload := map[string]interface{}{
		"address":    req.Address,
		"blockchain": blockchain,
		"usdc":       true,
		"native":     false,
	}

	_, data, err := s.do(ctx, http.MethodPost, "/v1/faucet/drips", payload, 0)
	if err != nil {
		return nil, err
	}

	return &models.FaucetResponse{
		Success: true,
		Message: "Faucet request submitted",
		Data:    data,
	}, nil
}

func extractBalances(data map[string]interface{}) []map[string]interface{} {
	candidates := []interface{}{}
	if inner, ok := data["data"].(map[string]interface{}); ok {
		candidates = append(candidates, inner["tokenBalances"], inner["balances"])
	}
	candidates = append(candidates, data["tokenBalances"], data["balances"])

	for _, c := range candidates {
		list, ok := c.([]interface{})
		if !ok || len(list) == 0 {
			continue
		}
		out := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			if entry, ok := item.(map[string]interface{}); ok {
				out = append(out, entry)
			}
		}
		return out
	}
	return []map[string]interface{}{}
}

func extractTransactions(data map[string]interface{}) []map[string]interface{} {
	candidates := []interface{}{}
	if inner, ok := data["data"].(map[string]interface{}); ok {
		candidates = append(candidates, inner["transactions"], inner["items"])
	}
	candidates = append(candidates, data["transactions"])

	for _, c := range candidates {
		list, ok := c.([]interface{})
		if !ok || len(list) == 0 {
			continue
		}
		out := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			if entry, ok := item.(map[string]interface{}); ok {
				out = append(out, entry)
			}
		}
		return out
	}
	return []map[string]interface{}{}
}

// normalizeUSDC finds the USDC entry in a balance list, tolerating the
// symbol and amount living under different keys.
func normalizeUSDC(balances []map[string]interface{}) *models.USDCBalance {
	for _, b := range balances {
		symbol := balanceSymbol(b)
		if symbol != "USDC" && symbol != "USD" && !strings.Contains(symbol, "USDC") {
			continue
		}

		amount := firstString(b, "amount", "balance", "value")
		token, _ := b["token"].(map[string]interface{})
		if amount == "" && token != nil {
			if a, ok := token["amount"].(string); ok {
				amount = a
			}
		}
		if amount == "" {
			amount = "0"
		}
		if token == nil {
			token = map[string]interface{}{"symbol": symbol, "name": "USDC"}
		}
		return &models.USDCBalance{Amount: amount, Token: token}
	}
	return nil
}

func balanceSymbol(b map[string]interface{}) string {
	if token, ok := b["token"].(map[string]interface{}); ok {
		if s := firstString(token, "symbol", "name"); s != "" {
			return strings.ToUpper(s)
		}
	}
	return strings.ToUpper(firstString(b, "symbol", "currency", "tokenSymbol"))
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
