package stock

import "testing"

func intPtr(n int) *int { return &n }

func TestClassify(t *testing.T) {
	enc := DefaultEncodings()

	tests := []struct {
		name  string
		color string
		text  string
		want  State
	}{
		{"green with number", "rgb(25, 135, 84)", "+9", StateGreen},
		{"green without spaces", "rgb(25,135,84)", "", StateGreen},
		{"green rgba", "rgba(25, 135, 84, 1)", "NO", StateGreen},
		{"green beats pending marker", "rgb(25, 135, 84)", "C", StateGreen},
		{"pending marker upper", "rgb(220, 53, 69)", "C", StatePending},
		{"pending marker lower", "rgb(108, 117, 125)", "c", StatePending},
		{"pending marker padded", "", "  c ", StatePending},
		{"pending color", "rgb(212, 175, 55)", "", StatePending},
		{"red", "rgb(220, 53, 69)", "NO", StateOther},
		{"empty", "", "", StateOther},
		{"lookalike channel", "rgb(125, 135, 84)", "", StateOther},
		{"text cc is not marker", "rgb(220, 53, 69)", "CC", StateOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.color, tt.text, enc)
			if got.State != tt.want {
				t.Errorf("Classify(%q, %q) = %s, want %s", tt.color, tt.text, got.State, tt.want)
			}
		})
	}
}

func TestClassifyCustomEncodings(t *testing.T) {
	c := NewClassifier(Encodings{GreenColor: "rgb(0, 128, 0)", PendingMarker: "P"})

	if got := c.Classify("rgb(0,128,0)", "3").State; got != StateGreen {
		t.Errorf("custom green = %s, want GREEN", got)
	}
	if got := c.Classify("rgb(25, 135, 84)", "").State; got != StateOther {
		t.Errorf("default green under custom encoding = %s, want OTHER", got)
	}
	if got := c.Classify("", "p").State; got != StatePending {
		t.Errorf("custom marker = %s, want PENDING", got)
	}
	// Pending colour was left empty and keeps the default.
	if got := c.Classify("rgb(212, 175, 55)", "").State; got != StatePending {
		t.Errorf("default pending colour = %s, want PENDING", got)
	}
}

func TestNumericHint(t *testing.T) {
	tests := []struct {
		text string
		want *int
	}{
		{"+9", intPtr(9)},
		{"7", intPtr(7)},
		{"NO", nil},
		{"", nil},
		{"12 u.", intPtr(12)},
		{"a3b45", intPtr(3)},
	}

	for _, tt := range tests {
		got := NumericHint(tt.text)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("NumericHint(%q) = %d, want nil", tt.text, *got)
		case tt.want != nil && got == nil:
			t.Errorf("NumericHint(%q) = nil, want %d", tt.text, *tt.want)
		case tt.want != nil && *got != *tt.want:
			t.Errorf("NumericHint(%q) = %d, want %d", tt.text, *got, *tt.want)
		}
	}
}

func TestClassifyKeepsRawValues(t *testing.T) {
	sig := Classify("rgb(25, 135, 84)", "  +12 ", DefaultEncodings())
	if sig.RawText != "+12" {
		t.Errorf("RawText = %q, want trimmed text", sig.RawText)
	}
	if sig.RawColor != "rgb(25, 135, 84)" {
		t.Errorf("RawColor = %q", sig.RawColor)
	}
	if sig.NumericHint == nil || *sig.NumericHint != 12 {
		t.Errorf("NumericHint = %v, want 12", sig.NumericHint)
	}
	if !sig.IsGreen() {
		t.Error("expected green signal")
	}
}
