package reconcile

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/eventmate-dev/eventmate/internal/model"
)

// Registry is the slice of the participant store reconciliation writes
// through.
type Registry interface {
	UpsertByEmail(ctx context.Context, p *model.Participant) error
}

// Service matches roster entries against extracted statement
// transactions and persists the outcome into the participant registry.
type Service struct {
	registry  Registry
	tolerance decimal.Decimal
	log       zerolog.Logger
}

// NewService creates a reconciliation Service. tolerance is the absolute
// amount difference still accepted as a match.
func NewService(registry Registry, tolerance decimal.Decimal, log zerolog.Logger) *Service {
	return &Service{registry: registry, tolerance: tolerance, log: log}
}

// Result summarizes one reconciliation run.
type Result struct {
	VerifiedCount    int
	TotalCount       int
	Pending          int
	Participants     []model.RosterEntry
	TransactionCount int // all extracted transactions, either direction
	CreditCount      int // transactions eligible for matching
}

// Reconcile annotates every roster entry with its verification outcome
// and upserts the annotated entries into the registry by email.
//
// Only CREDIT transactions are eligible: a DEBIT with a matching
// reference is a refund or outgoing transfer, never a payment. A
// matched entry verifies iff the transaction amount is within the
// tolerance of expectedAmount. Upserts are independent per record; one
// failing is logged and skipped, not rolled back.
func (s *Service) Reconcile(ctx context.Context, txns []model.Transaction, entries []model.RosterEntry, expectedAmount decimal.Decimal) (Result, error) {
	credits := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Direction == model.DirectionCredit {
			credits = append(credits, t)
		}
	}

	for i := range entries {
		entry := &entries[i]
		match, ok := findCredit(credits, entry.ReferenceID)
		if !ok {
			entry.Verified = false
			s.log.Debug().
				Str("reference", entry.ReferenceID).
				Str("email", entry.Email).
				Msg("no matching credit transaction")
			continue
		}
		entry.Verified = match.Amount.Sub(expectedAmount).Abs().LessThan(s.tolerance)
		if !entry.Verified {
			s.log.Debug().
				Str("reference", entry.ReferenceID).
				Str("expected", expectedAmount.String()).
				Str("actual", match.Amount.String()).
				Msg("amount mismatch")
		}
	}

	verified := 0
	for i := range entries {
		if entries[i].Verified {
			verified++
		}

		p := participantFrom(entries[i])
		if err := s.registry.UpsertByEmail(ctx, &p); err != nil {
			s.log.Warn().Err(err).
				Str("email", entries[i].Email).
				Msg("registry upsert failed")
		}
	}

	s.log.Info().
		Int("verified", verified).
		Int("total", len(entries)).
		Int("credits", len(credits)).
		Msg("reconciliation complete")

	return Result{
		VerifiedCount:    verified,
		TotalCount:       len(entries),
		Pending:          len(entries) - verified,
		Participants:     entries,
		TransactionCount: len(txns),
		CreditCount:      len(credits),
	}, nil
}

// findCredit returns the first credit whose reference equals ref under
// case-insensitive comparison. References are unique among credits after
// extraction's de-duplication; if duplicates slip through, the first in
// iteration order wins.
func findCredit(credits []model.Transaction, ref string) (model.Transaction, bool) {
	for _, t := range credits {
		if strings.EqualFold(t.ReferenceID, ref) {
			return t, true
		}
	}
	return model.Transaction{}, false
}

func participantFrom(e model.RosterEntry) model.Participant {
	return model.Participant{
		Name:        e.Name,
		PhoneNumber: e.Phone,
		Email:       e.Email,
		ReferenceID: e.ReferenceID,
		Amount:      e.Amount,
		Verified:    e.Verified,
	}
}
