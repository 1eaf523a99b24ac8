package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// CircleConfig holds credentials for the Circle custodial wallet API.
type CircleConfig struct {
	APIKey             string
	EntitySecretBase64 string
	PublicKeyPEM       string
	DefaultBlockchain  string
	DefaultWalletID    string
}

// ApolloConfig holds credentials for the Apollo lead database API.
type ApolloConfig struct {
	APIKey string
}

// GeminiConfig holds credentials for the generative language API.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// AuthConfig holds identity provider settings.
type AuthConfig struct {
	GoogleClientID  string
	AllowMockTokens bool
}

// AgentConfig bounds the conversational orchestrator loop.
type AgentConfig struct {
	MaxIterations int
	Deadline      time.Duration
}

// EmailConfig holds the send safety rail and feedback link settings.
type EmailConfig struct {
	// TestAddresses is the fixed allow list every send is redirected to.
	// Real resolved recipients are never contacted directly.
	TestAddresses   []string
	FeedbackBaseURL string
}

// Config is the full environment-sourced configuration.
type Config struct {
	Circle CircleConfig
	Apollo ApolloConfig
	Gemini GeminiConfig
	Auth   AuthConfig
	Agent  AgentConfig
	Email  EmailConfig
}

// Load reads configuration from the environment. Missing provider
// credentials are not an error here; each adapter degrades to a
// NotConfigured failure when first used without its keys.
func Load() *Config {
	return &Config{
		Circle: CircleConfig{
			APIKey:             os.Getenv("CIRCLE_API_KEY"),
			EntitySecretBase64: os.Getenv("CIRCLE_ENTITY_SECRET_BASE64"),
			PublicKeyPEM:       strings.ReplaceAll(os.Getenv("CIRCLE_PUBLIC_KEY_PEM"), "\\n", "\n"),
			DefaultBlockchain:  getEnv("DEFAULT_BLOCKCHAIN", "ARC-TESTNET"),
			DefaultWalletID:    os.Getenv("DEFAULT_WALLET_ID"),
		},
		Apollo: ApolloConfig{
			APIKey: os.Getenv("APOLLO_API_KEY"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Auth: AuthConfig{
			GoogleClientID:  os.Getenv("GOOGLE_CLIENT_ID"),
			AllowMockTokens: getEnv("AUTH_ALLOW_MOCK_TOKENS", "false") == "true",
		},
		Agent: AgentConfig{
			MaxIterations: getEnvAsInt("AGENT_MAX_ITERATIONS", 10),
			Deadline:      getEnvAsDuration("AGENT_DEADLINE", 90*time.Second),
		},
		Email: EmailConfig{
			TestAddresses:   splitList(os.Getenv("TEST_EMAIL_ADDRESSES")),
			FeedbackBaseURL: getEnv("FEEDBACK_BASE_URL", "https://arcwardens.app/feedback"),
		},
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, fmt.Sprintf("%d", defaultValue))
	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
