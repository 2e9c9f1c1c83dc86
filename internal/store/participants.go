package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventmate-dev/eventmate/internal/model"
)

// Participants is the gorm-backed ParticipantStore.
type Participants struct {
	db *gorm.DB
}

// NewParticipants creates a Participants store.
func NewParticipants(db *gorm.DB) *Participants {
	return &Participants{db: db}
}

// sortColumns whitelists the fields List accepts for ordering.
var sortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"phone":      "phone_number",
	"amount":     "amount",
	"verified":   "verified",
	"attended":   "attended",
	"createdAt":  "created_at",
	"created_at": "created_at",
}

// UpsertByEmail creates or updates the record keyed by p.Email. The
// read-modify-write runs in one transaction so concurrent upserts to the
// same email cannot interleave into a partial record.
func (s *Participants) UpsertByEmail(ctx context.Context, p *model.Participant) error {
	if !model.ValidEmail(p.Email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, p.Email)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Participant
		err := tx.Where("email = ?", p.Email).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.ID = uuid.New().String()
			p.Attended = false
			p.AttendedAt = nil
			p.QRCode = nil
			return tx.Create(p).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         p.Name,
			"phone_number": p.PhoneNumber,
			"reference_id": p.ReferenceID,
			"verified":     p.Verified,
			"amount":       p.Amount,
		}
		if err := tx.Model(&model.Participant{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return err
		}

		p.ID = existing.ID
		p.Attended = existing.Attended
		p.AttendedAt = existing.AttendedAt
		p.QRCode = existing.QRCode
		p.CreatedAt = existing.CreatedAt
		return nil
	})
}

// Create inserts a new participant, assigning its ID. Fails with
// ErrDuplicateEmail when the email is already registered.
func (s *Participants) Create(ctx context.Context, p *model.Participant) error {
	if !model.ValidEmail(p.Email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, p.Email)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Participant{}).Where("email = ?", p.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %q", ErrDuplicateEmail, p.Email)
		}
		p.ID = uuid.New().String()
		return tx.Create(p).Error
	})
}

// Update overwrites the identity fields of an existing participant.
func (s *Participants) Update(ctx context.Context, p *model.Participant) error {
	var existing model.Participant
	err := s.db.WithContext(ctx).First(&existing, "id = ?", p.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"name":         p.Name,
		"phone_number": p.PhoneNumber,
		"email":        p.Email,
	}
	if p.QRCode != nil {
		updates["qr_code"] = *p.QRCode
	}
	return s.db.WithContext(ctx).Model(&model.Participant{}).Where("id = ?", p.ID).Updates(updates).Error
}

// Get returns a participant by ID.
func (s *Participants) Get(ctx context.Context, id string) (*model.Participant, error) {
	var p model.Participant
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a participant by ID.
func (s *Participants) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Participant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns participants matching q, sorted by creation time
// descending unless q requests otherwise.
func (s *Participants) List(ctx context.Context, q Query) ([]model.Participant, error) {
	tx := s.db.WithContext(ctx).Model(&model.Participant{})

	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where(
			"lower(name) LIKE ? OR lower(email) LIKE ? OR lower(phone_number) LIKE ? OR lower(reference_id) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if q.Verified != nil {
		tx = tx.Where("verified = ?", *q.Verified)
	}
	if q.Attended != nil {
		tx = tx.Where("attended = ?", *q.Attended)
	}

	// Explicit sorts default to ascending; the implicit sort is newest
	// first.
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "desc"
	if ok && !strings.EqualFold(q.SortOrder, "desc") {
		direction = "asc"
	}
	tx = tx.Order(column + " " + direction)

	var participants []model.Participant
	if err := tx.Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// SetVerified flips the verification flag on a single record. Attendance
// state is untouched, so an undo never clears a check-in.
func (s *Participants) SetVerified(ctx context.Context, id string, verified bool) (*model.Participant, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(p).Update("verified", verified).Error; err != nil {
		return nil, err
	}
	p.Verified = verified
	return p, nil
}

// MarkAttended records a check-in. Attendance is monotonic: marking an
// already-attended participant keeps the original timestamp.
func (s *Participants) MarkAttended(ctx context.Context, id string) (*model.Participant, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Attended {
		return p, nil
	}
	now := time.Now()
	updates := map[string]interface{}{"attended": true, "attended_at": now}
	if err := s.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		return nil, err
	}
	p.Attended = true
	p.AttendedAt = &now
	return p, nil
}

// SetQRCode stores the issued QR payload for a participant.
func (s *Participants) SetQRCode(ctx context.Context, id, dataURL string) (*model.Participant, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(p).Update("qr_code", dataURL).Error; err != nil {
		return nil, err
	}
	p.QRCode = &dataURL
	return p, nil
}

// DeleteAll is the irreversible bulk reset used to restart an event
// cycle.
func (s *Participants) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Participant{}).Error
}
