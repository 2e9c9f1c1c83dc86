package model

import "time"

// Activity is one audit-trail row: who did what, when.
type Activity struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Action    string    `json:"action" gorm:"not null"`
	User      string    `json:"user" gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}
