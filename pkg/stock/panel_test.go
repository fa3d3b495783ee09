package stock

import (
	"errors"
	"testing"
)

const panelHTML = `
<div class="table-responsive">
  <table>
    <thead><tr><th>Código</th><th>Cantidad</th><th>Sucursal</th></tr></thead>
    <tbody>
      <tr><td>sin datos</td></tr>
      <tr><td> abc-123x </td><td>8 u.</td><td>Rosario</td></tr>
      <tr><td>ABC-123</td><td>5</td><td>Córdoba</td></tr>
      <tr><td>ABC-123</td><td>2</td><td>Rosario</td></tr>
      <tr><td>ZZ ABC-123</td><td>-</td><td>Rosario</td></tr>
    </tbody>
  </table>
</div>`

func TestFindConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		policy  func(*MatchPolicy)
		wantNil bool
		wantQty *int
		wantRow string
	}{
		{
			name:    "exact match takes first row",
			code:    "abc-123",
			wantQty: intPtr(5),
			wantRow: "ABC-123",
		},
		{
			name:    "exact miss",
			code:    "ABC-12",
			wantNil: true,
		},
		{
			name:    "prefix fallback",
			code:    "ABC-12",
			policy:  func(p *MatchPolicy) { p.Modes = []MatchMode{MatchExact, MatchPrefix} },
			wantQty: intPtr(8),
			wantRow: "ABC-123X",
		},
		{
			name:    "exact preferred over earlier prefix row",
			code:    "ABC-123",
			policy:  func(p *MatchPolicy) { p.Modes = []MatchMode{MatchExact, MatchPrefix} },
			wantQty: intPtr(5),
			wantRow: "ABC-123",
		},
		{
			name:    "prefix first when listed first",
			code:    "ABC-123",
			policy:  func(p *MatchPolicy) { p.Modes = []MatchMode{MatchPrefix, MatchExact} },
			wantQty: intPtr(8),
			wantRow: "ABC-123X",
		},
		{
			name:    "suffix with unparsable quantity",
			code:    "zz abc-123",
			policy:  func(p *MatchPolicy) { p.Modes = []MatchMode{MatchSuffix} },
			wantRow: "ZZ ABC-123",
		},
		{
			name: "branch filter",
			code: "ABC-123",
			policy: func(p *MatchPolicy) {
				p.BranchColumn = 2
				p.BranchValue = "rosario"
			},
			wantQty: intPtr(2),
			wantRow: "ABC-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultMatchPolicy()
			if tt.policy != nil {
				tt.policy(&policy)
			}

			rec, err := FindConfirmation(panelHTML, tt.code, policy)
			if err != nil {
				t.Fatalf("FindConfirmation error: %v", err)
			}
			if tt.wantNil {
				if rec != nil {
					t.Fatalf("expected no match, got %+v", rec)
				}
				return
			}
			if rec == nil {
				t.Fatal("expected a match")
			}
			if rec.Code != tt.wantRow {
				t.Errorf("Code = %q, want %q", rec.Code, tt.wantRow)
			}
			switch {
			case tt.wantQty == nil && rec.Quantity != nil:
				t.Errorf("Quantity = %d, want nil", *rec.Quantity)
			case tt.wantQty != nil && (rec.Quantity == nil || *rec.Quantity != *tt.wantQty):
				t.Errorf("Quantity = %v, want %d", rec.Quantity, *tt.wantQty)
			}
		})
	}
}

func TestFindConfirmationFragment(t *testing.T) {
	rows := `<tbody><tr><td>X1</td><td>3</td></tr></tbody>`
	rec, err := FindConfirmation(rows, "x1", DefaultMatchPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.Quantity == nil || *rec.Quantity != 3 {
		t.Fatalf("expected X1 with qty 3, got %+v", rec)
	}
	if rec.RawRowText != "X1 3" {
		t.Errorf("RawRowText = %q", rec.RawRowText)
	}
}

func TestFindConfirmationIdempotent(t *testing.T) {
	policy := DefaultMatchPolicy()
	first, err := FindConfirmation(panelHTML, "ABC-123", policy)
	if err != nil {
		t.Fatal(err)
	}
	second, err := FindConfirmation(panelHTML, "ABC-123", policy)
	if err != nil {
		t.Fatal(err)
	}
	if first.Code != second.Code || *first.Quantity != *second.Quantity || first.RawRowText != second.RawRowText {
		t.Errorf("reads differ: %+v vs %+v", first, second)
	}

	a, _ := FindConfirmation(panelHTML, "NOPE", policy)
	b, _ := FindConfirmation(panelHTML, "NOPE", policy)
	if a != nil || b != nil {
		t.Error("expected both misses to be nil")
	}
}

func TestFindConfirmationEmptyCode(t *testing.T) {
	_, err := FindConfirmation(panelHTML, "  ", DefaultMatchPolicy())
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestParseMatchModes(t *testing.T) {
	modes, err := ParseMatchModes([]string{"Exact", " prefix ", "contains"})
	if err != nil {
		t.Fatal(err)
	}
	want := []MatchMode{MatchExact, MatchPrefix, MatchContains}
	for i := range want {
		if modes[i] != want[i] {
			t.Errorf("modes[%d] = %s, want %s", i, modes[i], want[i])
		}
	}

	if _, err := ParseMatchModes([]string{"fuzzy"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	modes, _ = ParseMatchModes(nil)
	if len(modes) != 1 || modes[0] != MatchExact {
		t.Errorf("empty list should default to exact, got %v", modes)
	}
}

func TestMatchCode(t *testing.T) {
	tests := []struct {
		candidate, code string
		mode            MatchMode
		want            bool
	}{
		{"ABC", "ABC", MatchExact, true},
		{"ABCD", "ABC", MatchExact, false},
		{"ABCD", "ABC", MatchPrefix, true},
		{"XABC", "ABC", MatchSuffix, true},
		{"XABCX", "ABC", MatchContains, true},
		{"", "ABC", MatchContains, false},
		{"ABC", "ABC", MatchMode("other"), false},
	}
	for _, tt := range tests {
		if got := MatchCode(tt.candidate, tt.code, tt.mode); got != tt.want {
			t.Errorf("MatchCode(%q, %q, %s) = %v, want %v", tt.candidate, tt.code, tt.mode, got, tt.want)
		}
	}
}
