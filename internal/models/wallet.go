package models

// SendTransactionRequest submits a transfer from a custodial wallet.
type SendTransactionRequest struct {
	WalletID        string `json:"walletId" binding:"required"`
	ReceiverAddress string `json:"receiverAddress" binding:"required"`
	Amount          string `json:"amount" binding:"required"`
	TokenID         string `json:"tokenId" binding:"required"`
}

// FaucetRequest asks the provider to fund a testnet address.
type FaucetRequest struct {
	Address    string `json:"address" binding:"required"`
	Blockchain string `json:"blockchain"`
}

// USDCBalance is the normalized USDC entry extracted from the provider's
// balance response, whose shape varies across provider versions.
type USDCBalance struct {
	Amount string                 `json:"amount"`
	Token  map[string]interface{} `json:"token"`
}

// WalletBalanceResponse is the normalized balance payload.
type WalletBalanceResponse struct {
	Success     bool                     `json:"success"`
	WalletID    string                   `json:"walletId"`
	Balances    []map[string]interface{} `json:"balances"`
	USDCBalance *USDCBalance             `json:"usdcBalance"`
}

// WalletInfoResponse wraps the provider's wallet metadata.
type WalletInfoResponse struct {
	Success bool                   `json:"success"`
	Wallet  map[string]interface{} `json:"wallet"`
}

// WalletTransactionsResponse wraps the provider's transaction history.
type WalletTransactionsResponse struct {
	Success      bool                     `json:"success"`
	WalletID     string                   `json:"walletId"`
	Transactions []map[string]interface{} `json:"transactions"`
}

// TransferResponse reports a submitted transfer.
type TransferResponse struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message,omitempty"`
	TransactionID string                 `json:"transactionId,omitempty"`
	State         string                 `json:"state,omitempty"`
	Transaction   map[string]interface{} `json:"transaction,omitempty"`
}

// FaucetResponse reports a faucet drip request.
type FaucetResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
