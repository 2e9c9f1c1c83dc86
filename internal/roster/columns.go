package roster

import "strings"

// field identifies a logical roster column.
type field int

const (
	fieldName field = iota
	fieldEmail
	fieldPhone
	fieldReference
	fieldAmount
	numFields
)

// synonyms lists acceptable header names per logical field, in priority
// order. Rosters come from whatever spreadsheet the organizers keep, so
// column naming is anything but stable.
var synonyms = map[field][]string{
	fieldName:      {"name", "participant name"},
	fieldEmail:     {"email", "e-mail"},
	fieldPhone:     {"phone", "phone number", "mobile"},
	fieldReference: {"utr", "utr id", "transaction id", "reference"},
	fieldAmount:    {"amount", "payment", "fee"},
}

// columnMap maps each logical field to its header position, or -1 when
// no header matched. Resolved once per parse, not per row.
type columnMap [numFields]int

// resolveColumns matches headers case-insensitively against the synonym
// lists: first an exact match over all candidates, then a substring
// match.
func resolveColumns(headers []string) columnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var cols columnMap
	for f := field(0); f < numFields; f++ {
		cols[f] = findHeader(normalized, synonyms[f])
	}
	return cols
}

func findHeader(headers []string, candidates []string) int {
	for i, h := range headers {
		for _, c := range candidates {
			if h == c {
				return i
			}
		}
	}
	for i, h := range headers {
		for _, c := range candidates {
			if strings.Contains(h, c) {
				return i
			}
		}
	}
	return -1
}

// value returns the trimmed cell for a logical field, or "" when the
// field is absent or the row is short.
func (c columnMap) value(record []string, f field) string {
	idx := c[f]
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
