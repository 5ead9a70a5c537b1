package config

import (
	"testing"
)

// Test that LoadConfig returns a non-nil config and that ConnectDatabase
// falls back to in-memory sqlite when APPENV=test.
func TestLoadConfigAndConnectDatabase_TestEnv(t *testing.T) {
	t.Setenv("APPENV", "test")

	cfg := LoadConfig()
	if cfg == nil {
		t.Fatalf("expected non-nil config")
	}

	db, err := ConnectDatabase()
	if err != nil {
		t.Fatalf("ConnectDatabase failed in test env: %v", err)
	}
	if db == nil {
		t.Fatalf("expected non-nil DB connection")
	}
}

func TestLoadConfig_Singleton(t *testing.T) {
	t.Setenv("APPENV", "test")

	first := LoadConfig()
	second := LoadConfig()
	if first != second {
		t.Fatalf("expected LoadConfig to return the same singleton instance")
	}
}
