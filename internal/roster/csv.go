package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eventmate-dev/eventmate/internal/model"
)

// nonAmount strips currency symbols and separators from amount cells.
var nonAmount = regexp.MustCompile(`[^0-9.]`)

// Parse reads a comma-delimited roster file into entries. The first row
// is the header row; rows with no name, email, phone, or reference are
// skipped. A read error fails the whole parse with no partial result.
func Parse(r io.Reader) ([]model.RosterEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading roster CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := resolveColumns(records[0])

	var entries []model.RosterEntry
	seq := 1
	for _, rec := range records[1:] {
		name := cols.value(rec, fieldName)
		email := cols.value(rec, fieldEmail)
		phone := cols.value(rec, fieldPhone)
		ref := repairReference(cols.value(rec, fieldReference))
		amount := parseRosterAmount(cols.value(rec, fieldAmount))

		if name == "" && email == "" && phone == "" && ref == "" {
			continue
		}

		entries = append(entries, model.RosterEntry{
			SequenceID:  seq,
			Name:        orSentinel(name, model.NoName),
			Email:       orSentinel(email, model.NoEmail),
			Phone:       orSentinel(phone, model.NoPhone),
			ReferenceID: orSentinel(ref, model.NoUTR),
			Amount:      amount,
		})
		seq++
	}
	return entries, nil
}

// orSentinel substitutes the placeholder for a missing value at the
// emission boundary; raw values stay empty inside the parser.
func orSentinel(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}

// repairReference reconstructs a reference that a spreadsheet mangled
// into scientific notation ("1.23456789E+14"): mantissa digits padded
// with trailing zeros out to the exponent-implied length. Falls back to
// a plain fixed-string conversion when the parts do not parse.
func repairReference(raw string) string {
	if !strings.Contains(raw, "E+") {
		return raw
	}

	parts := strings.SplitN(raw, "E+", 2)
	mantissa, merr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	exp, eerr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if merr == nil && eerr == nil {
		digits := strings.Replace(strconv.FormatFloat(mantissa, 'f', -1, 64), ".", "", 1)
		total := len(digits) + exp - (len(digits) - 1)
		if total > len(digits) {
			digits += strings.Repeat("0", total-len(digits))
		}
		return digits
	}

	if d, err := decimal.NewFromString(raw); err == nil {
		return d.StringFixed(0)
	}
	return raw
}

// parseRosterAmount strips non-numeric characters and parses the rest;
// unparseable amounts default to zero.
func parseRosterAmount(raw string) decimal.Decimal {
	cleaned := nonAmount.ReplaceAllString(raw, "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
