package stock

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MatchMode selects how a panel row's code is compared with the requested code.
type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchPrefix   MatchMode = "prefix"
	MatchSuffix   MatchMode = "suffix"
	MatchContains MatchMode = "contains"
)

// MatchPolicy controls how FindConfirmation picks a row out of the panel.
// Modes are tried in order; every row is scanned before the next mode.
type MatchPolicy struct {
	Modes          []MatchMode
	CodeColumn     int
	QuantityColumn int
	// BranchColumn < 0 disables the branch filter.
	BranchColumn int
	BranchValue  string
}

// DefaultMatchPolicy is exact matching on the first column, quantity in the second.
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		Modes:          []MatchMode{MatchExact},
		CodeColumn:     0,
		QuantityColumn: 1,
		BranchColumn:   -1,
	}
}

// ParseMatchModes converts configuration strings into MatchModes.
func ParseMatchModes(values []string) ([]MatchMode, error) {
	modes := make([]MatchMode, 0, len(values))
	for _, v := range values {
		mode := MatchMode(strings.ToLower(strings.TrimSpace(v)))
		switch mode {
		case MatchExact, MatchPrefix, MatchSuffix, MatchContains:
			modes = append(modes, mode)
		default:
			return nil, fmt.Errorf("%w: unknown match mode %q", ErrValidation, v)
		}
	}
	if len(modes) == 0 {
		modes = append(modes, MatchExact)
	}
	return modes, nil
}

// ConfirmationRecord is one matched row of the confirmation panel.
type ConfirmationRecord struct {
	Code       string `json:"code"`
	Quantity   *int   `json:"quantity"`
	RawRowText string `json:"rowText"`
}

// NormalizeCode upper-cases s and collapses internal whitespace.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// MatchCode compares two already-normalised codes under mode.
func MatchCode(candidate, code string, mode MatchMode) bool {
	if candidate == "" || code == "" {
		return false
	}
	switch mode {
	case MatchExact:
		return candidate == code
	case MatchPrefix:
		return strings.HasPrefix(candidate, code)
	case MatchSuffix:
		return strings.HasSuffix(candidate, code)
	case MatchContains:
		return strings.Contains(candidate, code)
	}
	return false
}

type panelRow struct {
	cells []string
	text  string
}

// FindConfirmation parses the rendered confirmation table and returns the
// first row matching code, or nil when none does. html may be the table, its
// tbody, or only the rows.
func FindConfirmation(html, code string, policy MatchPolicy) (*ConfirmationRecord, error) {
	want := NormalizeCode(code)
	if want == "" {
		return nil, fmt.Errorf("%w: empty product code", ErrValidation)
	}

	rows, err := parseRows(html)
	if err != nil {
		return nil, err
	}

	modes := policy.Modes
	if len(modes) == 0 {
		modes = []MatchMode{MatchExact}
	}
	branch := NormalizeCode(policy.BranchValue)

	for _, mode := range modes {
		for _, row := range rows {
			if len(row.cells) < 2 || policy.CodeColumn >= len(row.cells) {
				continue
			}
			if policy.BranchColumn >= 0 {
				if policy.BranchColumn >= len(row.cells) || NormalizeCode(row.cells[policy.BranchColumn]) != branch {
					continue
				}
			}

			candidate := NormalizeCode(row.cells[policy.CodeColumn])
			if !MatchCode(candidate, want, mode) {
				continue
			}

			rec := &ConfirmationRecord{Code: candidate, RawRowText: row.text}
			if policy.QuantityColumn < len(row.cells) {
				rec.Quantity = NumericHint(row.cells[policy.QuantityColumn])
			}
			return rec, nil
		}
	}

	return nil, nil
}

func parseRows(html string) ([]panelRow, error) {
	// Bare <tr>/<tbody> fragments are dropped by the HTML parser outside a table.
	if !strings.Contains(strings.ToLower(html), "<table") {
		html = "<table>" + html + "</table>"
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse confirmation table: %w", err)
	}

	var rows []panelRow
	doc.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		var row panelRow
		tr.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
			row.cells = append(row.cells, strings.TrimSpace(td.Text()))
		})
		row.text = strings.Join(strings.Fields(strings.Join(row.cells, " ")), " ")
		rows = append(rows, row)
	})

	return rows, nil
}
