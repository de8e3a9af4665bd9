package config

import (
	"testing"

	"trade-bridge/src/models"
)

func baseConfig() *Config {
	return &Config{MConfig: &models.MConfig{
		Name: "trade-bridge",
		Host: "127.0.0.1",
		Port: 8765,
		Broker: models.MBrokerConfig{
			Source:    "mock",
			Symbol:    "XAUUSD",
			Timeframe: "M5",
		},
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: "trade-bridge.db",
		},
	}}
}

func TestValidateAcceptsBaseline(t *testing.T) {
	if err := baseConfig().Validate(); err != nil {
		t.Fatalf("Expected baseline config to validate, got %v", err)
	}
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	c := baseConfig()
	c.Broker.Source = "csv"
	if err := c.Validate(); err == nil {
		t.Error("Expected unknown broker source to fail validation")
	}
}

func TestBridgeRequiresSharedSecret(t *testing.T) {
	c := baseConfig()
	c.Bridge.Enabled = true
	c.Broker.FilePath = "bridge.json"

	if err := c.Validate(); err == nil {
		t.Error("Expected enabled bridge without a secret to fail validation")
	}

	c.Bridge.SharedSecret = "s3cret"
	if err := c.Validate(); err != nil {
		t.Errorf("Expected bridge with secret and file path to validate, got %v", err)
	}
}

// The bridge push endpoint rewrites the bridge file, so enabling the bridge
// without a file path would fail at runtime on every update.
func TestBridgeRequiresFilePath(t *testing.T) {
	c := baseConfig()
	c.Bridge.Enabled = true
	c.Bridge.SharedSecret = "s3cret"
	c.Broker.FilePath = ""

	if err := c.Validate(); err == nil {
		t.Error("Expected enabled bridge without broker.file_path to fail validation")
	}
}
