package store

import (
	"context"
	"errors"

	"github.com/eventmate-dev/eventmate/internal/model"
)

// Registry errors surfaced to callers.
var (
	ErrNotFound       = errors.New("participant not found")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrDuplicateEmail = errors.New("participant with this email already exists")
)

// Query filters and orders registry reads.
type Query struct {
	Search    string // case-insensitive substring over name/email/phone/reference
	Verified  *bool
	Attended  *bool
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// ParticipantStore is the registry of participant records, keyed by
// email for upserts and by ID for everything else. Injected into the
// reconciliation engine and the HTTP handlers; nothing touches the
// database directly.
type ParticipantStore interface {
	// UpsertByEmail creates or updates the record for p.Email. Updates
	// overwrite name, phone, reference, verified, and amount; attendance,
	// QR code, and creation time are preserved.
	UpsertByEmail(ctx context.Context, p *model.Participant) error
	Create(ctx context.Context, p *model.Participant) error
	Update(ctx context.Context, p *model.Participant) error
	Get(ctx context.Context, id string) (*model.Participant, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q Query) ([]model.Participant, error)
	// SetVerified is the manual override: verify or undo a single record.
	SetVerified(ctx context.Context, id string, verified bool) (*model.Participant, error)
	// MarkAttended is monotonic: a second call leaves attendedAt alone.
	MarkAttended(ctx context.Context, id string) (*model.Participant, error)
	SetQRCode(ctx context.Context, id, dataURL string) (*model.Participant, error)
	DeleteAll(ctx context.Context) error
}

// ActivityStore records the audit trail of manual actions.
type ActivityStore interface {
	// Log is best-effort; a failed write never fails the caller's action.
	Log(ctx context.Context, action, user string)
	Recent(ctx context.Context, limit int) ([]model.Activity, error)
	All(ctx context.Context) ([]model.Activity, error)
	DeleteAll(ctx context.Context) error
}
