package statement

import (
	"regexp"
	"strings"
	"time"

	"github.com/eventmate-dev/eventmate/internal/model"
)

var (
	utrPattern    = regexp.MustCompile(`(?i)UTR No\.\s+([A-Za-z0-9]+)`)
	amountPattern = regexp.MustCompile(`(?:₹|Rs\.?)\s*([0-9,.]+)`)
)

// proximityWindow is the maximum newline distance between a UTR marker
// and the line carrying its direction and amount.
const proximityWindow = 5

// ProximityStrategy is the fallback pass: find every "UTR No." marker
// directly and pair it with the nearest CREDIT/DEBIT line. Used when the
// strict pattern finds nothing, typically because the PDF text dump
// scrambled the column order.
type ProximityStrategy struct{}

// Name returns the strategy name.
func (s *ProximityStrategy) Name() string { return "proximity" }

type directionLine struct {
	start int // byte offset of the line in the full text
	text  string
}

// Extract pairs UTR references with nearby direction lines. Fallback
// transactions have no genuine date and carry today's date instead.
func (s *ProximityStrategy) Extract(text string) []model.Transaction {
	matches := utrPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var lines []directionLine
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		upper := strings.ToUpper(line)
		if strings.Contains(upper, "CREDIT") || strings.Contains(upper, "DEBIT") {
			lines = append(lines, directionLine{start: offset, text: line})
		}
		offset += len(line) + 1
	}

	seen := make(map[string]bool)
	today := time.Now().Format("2006-01-02")
	var txns []model.Transaction

	for _, m := range matches {
		ref := text[m[2]:m[3]]
		if seen[ref] {
			continue
		}
		seen[ref] = true

		line, ok := nearestDirectionLine(text, m[0], lines)
		if !ok {
			continue
		}
		am := amountPattern.FindStringSubmatch(line)
		if am == nil {
			continue
		}
		amount, ok := parseAmount(am[1])
		if !ok {
			continue
		}

		direction := model.DirectionDebit
		if strings.Contains(strings.ToUpper(line), "CREDIT") {
			direction = model.DirectionCredit
		}
		txns = append(txns, model.Transaction{
			Date:        today,
			ReferenceID: ref,
			Amount:      amount,
			Direction:   direction,
		})
	}
	return txns
}

// nearestDirectionLine returns the first direction line within the
// proximity window of the UTR marker at utrPos.
func nearestDirectionLine(text string, utrPos int, lines []directionLine) (string, bool) {
	for _, l := range lines {
		lo, hi := utrPos, l.start
		if lo > hi {
			lo, hi = hi, lo
		}
		if strings.Count(text[lo:hi], "\n") < proximityWindow {
			return l.text, true
		}
	}
	return "", false
}
