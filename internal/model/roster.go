package model

import "github.com/shopspring/decimal"

// Sentinel values substituted for roster fields that are absent from the
// uploaded file, so every emitted entry is fully populated.
const (
	NoName  = "(No Name)"
	NoEmail = "(No Email)"
	NoPhone = "(No Phone)"
	NoUTR   = "(No UTR)"
)

// RosterEntry is one parsed registrant row, produced fresh on every
// reconciliation run from the uploaded roster file.
type RosterEntry struct {
	SequenceID  int // file order of emitted rows, starting at 1
	Name        string
	Email       string
	Phone       string
	ReferenceID string
	Amount      decimal.Decimal
	Verified    bool
}
