package model

import "github.com/shopspring/decimal"

// Direction classifies a statement transaction as incoming or outgoing funds.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// Transaction represents one settled payment extracted from a statement.
// Transactions are transient: they live for a single reconciliation run
// and are never persisted.
type Transaction struct {
	Date        string // as found in the statement text, advisory only
	ReferenceID string // UTR token, unique within one statement
	Amount      decimal.Decimal
	Direction   Direction
}
