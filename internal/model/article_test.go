package model

import (
	"errors"
	"testing"
)

func TestNormalizeArticleID(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"123", "000000123"},
		{"000000123", "000000123"},
		{"ABC-123", "000000123"},
		{"1234567890123", "567890123"},
		{"12 34 56 78 9", "123456789"},
		{"", ""},
		{"no digits", ""},
	}

	for _, tt := range tests {
		got := NormalizeArticleID(tt.raw)
		if got != tt.expected {
			t.Errorf("NormalizeArticleID(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}

func TestNormalizeArticleIDIdempotent(t *testing.T) {
	inputs := []string{"1", "987654321", "A1B2C3D4E5F6", "000000000"}
	for _, raw := range inputs {
		once := NormalizeArticleID(raw)
		twice := NormalizeArticleID(once)
		if once != twice {
			t.Errorf("NormalizeArticleID not idempotent for %q: %q != %q", raw, once, twice)
		}
		if len(once) != 9 {
			t.Errorf("NormalizeArticleID(%q) = %q, want 9 digits", raw, once)
		}
	}
}

func TestIsHelmetCategory(t *testing.T) {
	tests := []struct {
		category string
		expected bool
	}{
		{"Helm", true},
		{"helm", true},
		{"HELM", true},
		{"Jacke", false},
		{"Helmet", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsHelmetCategory(tt.category); got != tt.expected {
			t.Errorf("IsHelmetCategory(%q) = %v, want %v", tt.category, got, tt.expected)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	iso := "2024-03-05"
	german := "05.03.2024"
	rfc := "2024-03-05T10:30:00Z"
	blank := "   "
	bad := "not-a-date"

	tests := []struct {
		name    string
		input   *string
		want    *string
		wantErr bool
	}{
		{"nil input", nil, nil, false},
		{"blank clears", &blank, nil, false},
		{"iso", &iso, &iso, false},
		{"german format", &german, &iso, false},
		{"rfc3339", &rfc, &iso, false},
		{"garbage", &bad, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.input, "expiry date")
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeDate: %v", err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("got %q, want %q", *got, *tt.want)
			}
		})
	}
}
