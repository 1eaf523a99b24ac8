package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
	"github.com/arcwardens/outreach-backend/internal/database/repository"
	"github.com/arcwardens/outreach-backend/internal/models"
)

const (
	googleJWKSURL     = "https://www.googleapis.com/oauth2/v3/certs"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	mockTokenPrefix   = "mock_token_"
)

// AuthService verifies Google credentials and maintains the user table.
// Three credential forms are accepted: an RS256 ID token, an OAuth
// access token, and (when explicitly enabled) a mock token for local
// development.
type AuthService struct {
	cfg        config.AuthConfig
	userRepo   *repository.UserRepository
	httpClient *http.Client

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	keysFetched time.Time
}

func NewAuthService(cfg config.AuthConfig, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		keys: map[string]*rsa.PublicKey{},
	}
}

// Verify resolves a bearer credential to a verified identity and
// upserts the user row.
func (s *AuthService) Verify(ctx context.Context, credential string) (*models.User, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, apperrors.New(apperrors.Unauthenticated, "missing credential")
	}

	var (
		user *models.User
		err  error
	)
	switch {
	case strings.HasPrefix(credential, mockTokenPrefix):
		user, err = s.verifyMockToken(credential)
	case strings.Count(credential, ".") == 2:
		user, err = s.verifyIDToken(ctx, credential)
	default:
		user, err = s.verifyAccessToken(ctx, credential)
	}
	if err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Upsert(user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// verifyMockToken parses mock_token_<id>[_<email>] credentials. Only
// honored when explicitly enabled; rejected otherwise so the format can
// never be used against a real deployment.
func (s *AuthService) verifyMockToken(credential string) (*models.User, error) {
	if !s.cfg.AllowMockTokens {
		return nil, apperrors.New(apperrors.Unauthenticated, "mock tokens are not allowed")
	}

	parts := strings.Split(strings.TrimPrefix(credential, mockTokenPrefix), "_")
	if len(parts) == 0 || parts[0] == "" {
		return nil, apperrors.New(apperrors.Unauthenticated, "malformed mock token")
	}

	userID := parts[0]
	email := fmt.Sprintf("user_%s@example.com", userID)
	if len(parts) > 1 && parts[1] != "" {
		email = strings.Join(parts[1:], "_")
	}

	logrus.Warnf("Mock token accepted for user %s", userID)
	return &models.User{
		ID:    userID,
		Email: email,
		Name:  "Mock User " + userID,
	}, nil
}

func (s *AuthService) verifyIDToken(ctx context.Context, credential string) (*models.User, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, apperrors.New(apperrors.NotConfigured, "GOOGLE_CLIENT_ID is not configured")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no key id")
		}
		return s.publicKey(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(s.cfg.GoogleClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Unauthenticated, "invalid id token", err)
	}
	if !token.Valid {
		return nil, apperrors.New(apperrors.Unauthenticated, "invalid id token")
	}

	issuer, _ := claims.GetIssuer()
	if issuer != "accounts.google.com" && issuer != "https://accounts.google.com" {
		return nil, apperrors.Newf(apperrors.Unauthenticated, "unexpected token issuer: %s", issuer)
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, apperrors.New(apperrors.Unauthenticated, "token has no subject")
	}

	return &models.User{
		ID:      sub,
		Email:   stringClaim(claims, "email"),
		Name:    stringClaim(claims, "name"),
		Picture: stringClaim(claims, "picture"),
	}, nil
}

func (s *AuthService) verifyAccessToken(ctx context.Context, credential string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "userinfo request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.New(apperrors.Unauthenticated, "access token rejected")
	}
	if resp.StatusCode >= 400 {
		return nil, apperrors.Newf(apperrors.UpstreamUnavailable, "userinfo error: HTTP %d", resp.StatusCode)
	}

	var info struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "failed to parse userinfo response", err)
	}
	if info.Sub == "" {
		return nil, apperrors.New(apperrors.Unauthenticated, "userinfo returned no subject")
	}

	return &models.User{
		ID:      info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

// publicKey resolves a JWKS key id, refreshing the cached key set when
// the id is unknown or the cache is stale.
func (s *AuthService) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key, ok := s.keys[kid]
	fresh := time.Since(s.keysFetched) < time.Hour
	s.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := s.refreshKeys(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok = s.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}

func (s *AuthService) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleJWKSURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build jwks request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.UpstreamUnavailable, "jwks fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apperrors.Newf(apperrors.UpstreamUnavailable, "jwks error: HTTP %d", resp.StatusCode)
	}

	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return apperrors.Wrap(apperrors.UpstreamUnavailable, "failed to parse jwks response", err)
	}

	keys := map[string]*rsa.PublicKey{}
	for _, k := range jwks.Keys {
		if k.Kty != "RSA" {
			continue
		}
		key, err := parseRSAKey(k.N, k.E)
		if err != nil {
			logrus.Warnf("Skipping unparsable JWKS key %s: %v", k.Kid, err)
			continue
		}
		keys[k.Kid] = key
	}

	s.mu.Lock()
	s.keys = keys
	s.keysFetched = time.Now()
	s.mu.Unlock()

	logrus.Debugf("Refreshed Google JWKS: %d keys", len(keys))
	return nil
}

func parseRSAKey(nB64, eB64 string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, fmt.Errorf("bad modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, fmt.Errorf("bad exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("zero exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	if v, ok := claims[name].(string); ok {
		return v
	}
	return ""
}
