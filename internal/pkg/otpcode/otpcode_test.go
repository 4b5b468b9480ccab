package otpcode

import (
	"testing"
)

func TestNewNumeric(t *testing.T) {
	t.Run("InvalidWidthFallsBackToDefault", func(t *testing.T) {
		for _, width := range []int{-1, 0, 3, 11} {
			g := NewNumeric(width)
			if g.width != DefaultWidth {
				t.Fatalf("width %d: expected default width %d, got %d", width, DefaultWidth, g.width)
			}
		}
	})

	t.Run("ValidWidthKept", func(t *testing.T) {
		g := NewNumeric(8)
		if g.width != 8 {
			t.Fatalf("expected width 8, got %d", g.width)
		}
	})
}

func TestNumericGenerate(t *testing.T) {
	g := NewNumeric(6)

	for range 100 {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected numeric code, got %q", code)
			}
		}
	}
}
