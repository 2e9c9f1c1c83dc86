package statement

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eventmate-dev/eventmate/internal/model"
)

// Strategy extracts transactions from statement text.
type Strategy interface {
	Extract(text string) []model.Transaction
	Name() string
}

// Extractor runs strategies in order and returns the first non-empty
// result. Payment-app statements are inconsistent enough that a strict
// pattern pass needs a looser fallback behind it.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor creates an Extractor with the given strategies.
func NewExtractor(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Default returns an Extractor with the built-in strategies: the strict
// transaction pattern first, then the UTR-proximity fallback.
func Default() *Extractor {
	return NewExtractor(&PatternStrategy{}, &ProximityStrategy{})
}

// Extract parses statement text into transactions. Zero transactions is
// not an error; the caller decides what an empty statement means.
func (e *Extractor) Extract(text string) []model.Transaction {
	for _, s := range e.strategies {
		if txns := s.Extract(text); len(txns) > 0 {
			return txns
		}
	}
	return nil
}

// parseAmount converts a currency token like "1,500.00" to a decimal.
// A token that does not parse means the candidate is not a transaction.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}
