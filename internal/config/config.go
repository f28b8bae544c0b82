// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DataDir     string
	BotName     string

	// WhatsApp Cloud API.
	WhatsAppPhoneID string
	WhatsAppToken   string
	WhatsAppAPIBase string
	VerifyToken     string

	// OpenAI completion API.
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// Message log capacity (in-memory ring buffer).
	MessageLogCap int

	// Cron expression for the nightly learning job; "off" disables it.
	LearnSchedule string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "7000"),
		FrontendURL:     getEnv("FRONTEND_URL", ""),
		DataDir:         getEnv("DATA_DIR", "./data"),
		BotName:         getEnv("BOT_NAME", "FlowMind AI"),
		WhatsAppPhoneID: getEnv("WA_PHONE_ID", ""),
		WhatsAppToken:   getEnv("WA_TOKEN", ""),
		WhatsAppAPIBase: getEnv("WA_API_BASE", "https://graph.facebook.com/v19.0"),
		VerifyToken:     getEnv("WA_VERIFY_TOKEN", "flowmind_verify_token"),
		OpenAIKey:       getEnv("OPENAI_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		MessageLogCap:   getEnvInt("MESSAGE_LOG_CAP", 1000),
		LearnSchedule:   getEnv("LEARN_SCHEDULE", "0 2 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR cannot be empty")
	}
	if c.BotName == "" {
		return fmt.Errorf("BOT_NAME cannot be empty")
	}
	if c.MessageLogCap <= 0 {
		return fmt.Errorf("MESSAGE_LOG_CAP must be > 0")
	}
	return nil
}

// KnowledgePath returns the path of the knowledge document.
func (c *Config) KnowledgePath() string {
	return filepath.Join(c.DataDir, "business_knowledge.json")
}

// OrdersPath returns the path of the completed-orders list.
func (c *Config) OrdersPath() string {
	return filepath.Join(c.DataDir, "orders", "completed.json")
}

// ConversationsDir returns the directory of per-conversation transcripts.
func (c *Config) ConversationsDir() string {
	return filepath.Join(c.DataDir, "conversations")
}

// LearningLogPath returns the path of the plain-text learning log.
func (c *Config) LearningLogPath() string {
	return filepath.Join(c.DataDir, "learning_log.txt")
}

// LearnEnabled reports whether the in-process learning schedule is active.
func (c *Config) LearnEnabled() bool {
	s := strings.ToLower(strings.TrimSpace(c.LearnSchedule))
	return s != "" && s != "off" && s != "disabled"
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
