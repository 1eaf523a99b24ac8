package auth

import (
	"testing"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
)

func TestMockTokenRejectedWhenDisabled(t *testing.T) {
	s := NewAuthService(config.AuthConfig{AllowMockTokens: false}, nil)
	_, err := s.verifyMockToken("mock_token_u1")
	if apperrors.KindOf(err) != apperrors.Unauthenticated {
		t.Fatalf("err = %v, want unauthenticated", err)
	}
}

func TestMockTokenParsing(t *testing.T) {
	s := NewAuthService(config.AuthConfig{AllowMockTokens: true}, nil)

	user, err := s.verifyMockToken("mock_token_u1")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "u1" || user.Email != "user_u1@example.com" {
		t.Fatalf("user = %+v", user)
	}

	user, err = s.verifyMockToken("mock_token_u2_dev@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "u2" || user.Email != "dev@example.com" {
		t.Fatalf("user = %+v", user)
	}

	if _, err := s.verifyMockToken("mock_token_"); err == nil {
		t.Fatal("expected error for empty mock token id")
	}
}

func TestParseRSAKey(t *testing.T) {
	// 65537 == AQAB
	key, err := parseRSAKey("AQAB", "AQAB")
	if err != nil {
		t.Fatal(err)
	}
	if key.E != 65537 {
		t.Errorf("exponent = %d, want 65537", key.E)
	}

	if _, err := parseRSAKey("!!!", "AQAB"); err == nil {
		t.Error("expected error for bad modulus encoding")
	}
	if _, err := parseRSAKey("AQAB", ""); err == nil {
		t.Error("expected error for empty exponent")
	}
}
