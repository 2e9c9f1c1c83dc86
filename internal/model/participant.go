package model

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Participant is the durable registry record for one registrant, keyed by
// email. Verification state is owned by reconciliation and manual
// overrides; attendance and QR issuance own their fields exclusively.
type Participant struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string          `json:"name" gorm:"not null"`
	PhoneNumber string          `json:"phoneNumber" gorm:"not null"`
	Email       string          `json:"email" gorm:"uniqueIndex;not null"`
	ReferenceID string          `json:"referenceId"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric"`
	Verified    bool            `json:"verified"`
	Attended    bool            `json:"attended"`
	AttendedAt  *time.Time      `json:"attendedAt"`
	QRCode      *string         `json:"qrCode"`
	CreatedAt   time.Time       `json:"createdAt"`
}

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// ValidEmail reports whether s passes the basic email-syntax check
// required of the registry's identity key.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
