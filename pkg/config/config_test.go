package config

import (
	"os"
	"testing"
	"time"
)

func TestConfigLoad(t *testing.T) {
	originalGlobalConfig := GlobalConfig
	defer func() {
		GlobalConfig = originalGlobalConfig
	}()

	os.Setenv("LLM_PROVIDER", "test-llm")
	os.Setenv("LLM_API_KEY", "test-key")
	os.Setenv("MAX_TURNS", "7")
	os.Setenv("MAX_DURATION", "90s")

	defer func() {
		os.Unsetenv("LLM_PROVIDER")
		os.Unsetenv("LLM_API_KEY")
		os.Unsetenv("MAX_TURNS")
		os.Unsetenv("MAX_DURATION")
	}()

	err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if GlobalConfig == nil {
		t.Fatal("GlobalConfig is nil")
	}

	if GlobalConfig.Services.LLM.Provider != "test-llm" {
		t.Errorf("Expected LLM provider 'test-llm', got '%s'", GlobalConfig.Services.LLM.Provider)
	}

	if GlobalConfig.Services.LLM.APIKey != "test-key" {
		t.Errorf("Expected LLM API key 'test-key', got '%s'", GlobalConfig.Services.LLM.APIKey)
	}

	if GlobalConfig.Conversation.MaxTurns != 7 {
		t.Errorf("Expected max turns 7, got %d", GlobalConfig.Conversation.MaxTurns)
	}

	if GlobalConfig.Conversation.MaxDuration != 90*time.Second {
		t.Errorf("Expected max duration 90s, got %v", GlobalConfig.Conversation.MaxDuration)
	}
}

func TestConfigDefaults(t *testing.T) {
	originalGlobalConfig := GlobalConfig
	defer func() {
		GlobalConfig = originalGlobalConfig
	}()

	err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if GlobalConfig == nil {
		t.Fatal("GlobalConfig is nil")
	}

	if GlobalConfig.Conversation.MaxTurns != 20 {
		t.Errorf("Expected default max turns 20, got %d", GlobalConfig.Conversation.MaxTurns)
	}

	if GlobalConfig.Conversation.MaxDuration != 15*time.Minute {
		t.Errorf("Expected default max duration 15m, got %v", GlobalConfig.Conversation.MaxDuration)
	}

	if GlobalConfig.Conversation.NoInputLimit != 2 {
		t.Errorf("Expected default no-input limit 2, got %d", GlobalConfig.Conversation.NoInputLimit)
	}

	if GlobalConfig.Services.LLM.Temperature <= 0 || GlobalConfig.Services.LLM.Temperature > 2 {
		t.Errorf("LLM temperature should be between 0 and 2, got %f", GlobalConfig.Services.LLM.Temperature)
	}

	if GlobalConfig.Services.LLM.MaxTokens <= 0 {
		t.Errorf("LLM max tokens should be positive, got %d", GlobalConfig.Services.LLM.MaxTokens)
	}
}

func TestConfigValidation(t *testing.T) {
	originalGlobalConfig := GlobalConfig
	defer func() {
		GlobalConfig = originalGlobalConfig
	}()

	os.Setenv("DSN", "test.db")
	os.Setenv("ADDR", ":8080")
	os.Setenv("LLM_API_KEY", "test-key")

	defer func() {
		os.Unsetenv("DSN")
		os.Unsetenv("ADDR")
		os.Unsetenv("LLM_API_KEY")
	}()

	err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	err = GlobalConfig.Validate()
	if err != nil {
		t.Errorf("Config validation failed: %v", err)
	}
}

func TestConfigValidationMissingAPIKey(t *testing.T) {
	originalGlobalConfig := GlobalConfig
	defer func() {
		GlobalConfig = originalGlobalConfig
	}()

	os.Unsetenv("LLM_API_KEY")

	err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Missing credentials must be rejected at startup, not mid-call
	err = GlobalConfig.Validate()
	if err == nil {
		t.Error("Expected validation error for missing LLM API key")
	}
}
