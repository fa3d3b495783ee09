// Package stock holds the stock-confirmation core: classification of the
// traffic-light indicator, parsing of the confirmation panel and the
// polling state machine that ties them together.
package stock

import (
	"regexp"
	"strconv"
	"strings"
)

// State is the classified value of the stock indicator.
type State string

const (
	StateGreen   State = "GREEN"
	StatePending State = "PENDING"
	StateOther   State = "OTHER"
)

// Encodings describes how the portal renders the indicator states.
type Encodings struct {
	GreenColor    string
	PendingColor  string
	PendingMarker string
}

// DefaultEncodings returns the colours used by the Distrisuper portal.
func DefaultEncodings() Encodings {
	return Encodings{
		GreenColor:    "rgb(25, 135, 84)",
		PendingColor:  "rgb(212, 175, 55)",
		PendingMarker: "C",
	}
}

// Signal is one observation of the indicator. It is rebuilt on every read.
type Signal struct {
	RawText     string `json:"text"`
	RawColor    string `json:"color"`
	NumericHint *int   `json:"numericHint"`
	State       State  `json:"state"`
}

// IsGreen reports whether the indicator shows immediate availability.
func (s Signal) IsGreen() bool {
	return s.State == StateGreen
}

var digitsRe = regexp.MustCompile(`\d+`)

// Classifier turns raw indicator reads into Signals.
type Classifier struct {
	green   *regexp.Regexp
	pending *regexp.Regexp
	marker  string
}

// NewClassifier compiles the colour matchers for enc. Empty fields fall back
// to DefaultEncodings.
func NewClassifier(enc Encodings) *Classifier {
	def := DefaultEncodings()
	if enc.GreenColor == "" {
		enc.GreenColor = def.GreenColor
	}
	if enc.PendingColor == "" {
		enc.PendingColor = def.PendingColor
	}
	if enc.PendingMarker == "" {
		enc.PendingMarker = def.PendingMarker
	}

	return &Classifier{
		green:   colorPattern(enc.GreenColor),
		pending: colorPattern(enc.PendingColor),
		marker:  strings.TrimSpace(enc.PendingMarker),
	}
}

// colorPattern matches the channel triple of an rgb() encoding regardless of
// spacing, so "rgb(25,135,84)" and "rgba(25, 135, 84, 1)" both match.
func colorPattern(encoding string) *regexp.Regexp {
	channels := digitsRe.FindAllString(encoding, 3)
	if len(channels) < 3 {
		return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(encoding)))
	}
	return regexp.MustCompile(`\b` + strings.Join(channels, `\s*,\s*`) + `\b`)
}

// Classify derives the State from colour and text. Green wins over pending.
func (c *Classifier) Classify(rawColor, rawText string) Signal {
	text := strings.TrimSpace(rawText)
	sig := Signal{
		RawText:     text,
		RawColor:    rawColor,
		NumericHint: NumericHint(text),
	}

	switch {
	case c.green.MatchString(rawColor):
		sig.State = StateGreen
	case strings.EqualFold(text, c.marker) || c.pending.MatchString(rawColor):
		sig.State = StatePending
	default:
		sig.State = StateOther
	}

	return sig
}

// Classify is a convenience wrapper around NewClassifier(enc).Classify.
func Classify(rawColor, rawText string, enc Encodings) Signal {
	return NewClassifier(enc).Classify(rawColor, rawText)
}

// NumericHint returns the first run of digits in text, or nil.
func NumericHint(text string) *int {
	m := digitsRe.FindString(text)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}
