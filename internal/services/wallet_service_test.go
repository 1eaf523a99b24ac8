package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
)

func testWalletService(baseURL string) *WalletService {
	return &WalletService{
		cfg:        config.CircleConfig{APIKey: "test-key", DefaultBlockchain: "ARC-TESTNET"},
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGetBalanceRequiresAPIKey(t *testing.T) {
	s := testWalletService("http://unused")
	s.cfg.APIKey = ""
	_, err := s.GetBalance(context.Background(), "w1")
	if apperrors.KindOf(err) != apperrors.NotConfigured {
		t.Fatalf("err = %v, want not configured", err)
	}
}

func TestGetBalanceNormalizesUSDC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/w3s/wallets/w1/balances") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(`{"data": {"tokenBalances": [
			{"token": {"symbol": "ETH", "name": "Ether"}, "amount": "0.5"},
			{"token": {"symbol": "USDC", "name": "USD Coin"}, "amount": "42.17"}
		]}}`))
	}))
	defer srv.Close()

	resp, err := testWalletService(srv.URL).GetBalance(context.Background(), "w1")
	if err != nil {
		t.Fatal(err)
	}

	if !resp.Success || resp.WalletID != "w1" || len(resp.Balances) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.USDCBalance == nil || resp.USDCBalance.Amount != "42.17" {
		t.Fatalf("usdc balance = %+v", resp.USDCBalance)
	}
}

func TestGetBalanceFlatSymbolShape(t *testing.T) {
	// Some provider versions return the symbol and amount at the top
	// level of each entry.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"balances": [{"currency": "usdc", "balance": "10"}]}`))
	}))
	defer srv.Close()

	resp, err := testWalletService(srv.URL).GetBalance(context.Background(), "w1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.USDCBalance == nil || resp.USDCBalance.Amount != "10" {
		t.Fatalf("usdc balance = %+v", resp.USDCBalance)
	}
}

func TestGetBalanceSurfacesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "wallet set mismatch"}`))
	}))
	defer srv.Close()

	_, err := testWalletService(srv.URL).GetBalance(context.Background(), "w1")
	if err == nil || !strings.Contains(err.Error(), "wallet set mismatch") {
		t.Fatalf("err = %v, want provider message surfaced", err)
	}
	if apperrors.KindOf(err) != apperrors.UpstreamUnavailable {
		t.Fatalf("kind = %v, want upstream unavailable", apperrors.KindOf(err))
	}
}

func TestGetTransactionsFallsBackToWalletScopedEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/w3s/transactions":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message": "filter not supported"}`))
		case "/v1/w3s/wallets/w1/transactions":
			w.Write([]byte(`{"data": {"transactions": [{"id": "t1"}, {"id": "t2"}]}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	resp, err := testWalletService(srv.URL).GetTransactions(context.Background(), "w1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Transactions) != 2 || resp.Transactions[0]["id"] != "t1" {
		t.Fatalf("transactions = %+v", resp.Transactions)
	}
}

func TestGetWalletInfoUnwrapsNesting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": {"wallet": {"id": "w1", "state": "LIVE"}}}`))
	}))
	defer srv.Close()

	resp, err := testWalletService(srv.URL).GetWalletInfo(context.Background(), "w1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Wallet["id"] != "w1" || resp.Wallet["state"] != "LIVE" {
		t.Fatalf("wallet = %+v", resp.Wallet)
	}
}
