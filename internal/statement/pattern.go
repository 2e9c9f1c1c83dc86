package statement

import (
	"regexp"
	"strings"

	"github.com/eventmate-dev/eventmate/internal/model"
)

// transactionPattern matches one statement transaction: a date token,
// then within 150 characters the "UTR No." marker and reference, then
// within 100 characters a direction keyword, then within 100 characters
// a currency amount.
var transactionPattern = regexp.MustCompile(
	`(?i)(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})[\s\S]{1,150}?UTR No\.\s+([A-Za-z0-9]+)[\s\S]{1,100}?(CREDIT|DEBIT)[\s\S]{1,100}?(?:₹|Rs\.?)\s*([0-9,.]+)`)

// PatternStrategy is the primary extraction pass: a single pattern over
// the whole statement text.
type PatternStrategy struct{}

// Name returns the strategy name.
func (s *PatternStrategy) Name() string { return "pattern" }

// Extract returns every transaction the pattern matches, keeping only
// the first occurrence of each reference ID. Statements sometimes list
// the same settlement twice.
func (s *PatternStrategy) Extract(text string) []model.Transaction {
	seen := make(map[string]bool)
	var txns []model.Transaction

	for _, m := range transactionPattern.FindAllStringSubmatch(text, -1) {
		ref := strings.TrimSpace(m[2])
		if seen[ref] {
			continue
		}
		amount, ok := parseAmount(m[4])
		if !ok {
			continue
		}
		seen[ref] = true
		txns = append(txns, model.Transaction{
			Date:        strings.TrimSpace(m[1]),
			ReferenceID: ref,
			Amount:      amount,
			Direction:   model.Direction(strings.ToUpper(m[3])),
		})
	}
	return txns
}
