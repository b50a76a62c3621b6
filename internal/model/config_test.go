package model

import (
	"strings"
	"testing"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got %v", err)
	}
}

func TestConfig_Validate_MissingWeight(t *testing.T) {
	cfg := DefaultConfig()
	delete(cfg.Weights, WeightCrossVerification)

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error for missing weight key")
	}
	if !strings.Contains(err.Error(), WeightCrossVerification) {
		t.Errorf("Expected error to name the missing key, got %v", err)
	}
}

func TestConfig_Validate_NegativeWeight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights[WeightEvidenceSupport] = -0.1

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for negative weight")
	}
}

func TestConfig_Validate_BadRetrieval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Retrieval.K = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for retrieval.k = 0")
	}
}

func TestDefaultConfig_WeightValues(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key  string
		want float64
	}{
		{WeightEvidenceSupport, 0.55},
		{WeightSourceCredibility, 0.30},
		{WeightCrossVerification, 0.15},
	}

	for _, tt := range tests {
		if got := cfg.Weights[tt.key]; got != tt.want {
			t.Errorf("Weight %s = %v, want %v", tt.key, got, tt.want)
		}
	}
}
