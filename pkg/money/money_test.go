package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCleanValues(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"float", 2500000.0, "2500000"},
		{"int", 150, "150"},
		{"plain string", "85500000", "85500000"},
		{"decimal string", "1234.56", "1234.56"},
		{"negative", "-42", "-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if !ok {
				t.Fatalf("Parse(%v) reported failure", tt.input)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("Parse(%v) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStripsLocaleNoise(t *testing.T) {
	got, ok := Parse("Rp 1,452,500.00")
	if !ok {
		t.Fatal("expected formatted amount to parse")
	}
	if !got.Equal(decimal.RequireFromString("1452500.00")) {
		t.Fatalf("unexpected amount %s", got)
	}
}

func TestParseDefaultsToZero(t *testing.T) {
	for _, input := range []any{nil, "", "n/a", "1.234.567", struct{}{}} {
		got, ok := Parse(input)
		if ok {
			t.Fatalf("expected %v to be flagged unparseable", input)
		}
		if !got.IsZero() {
			t.Fatalf("unparseable %v must default to zero, got %s", input, got)
		}
	}
}
