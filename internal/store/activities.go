package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/eventmate-dev/eventmate/internal/model"
)

// Activities is the gorm-backed ActivityStore.
type Activities struct {
	db *gorm.DB
}

// NewActivities creates an Activities store.
func NewActivities(db *gorm.DB) *Activities {
	return &Activities{db: db}
}

// Log appends one audit row. Best-effort: the error is swallowed so a
// failed log write never fails the action being logged.
func (s *Activities) Log(ctx context.Context, action, user string) {
	entry := model.Activity{
		Action:    action,
		User:      user,
		Timestamp: time.Now(),
	}
	_ = s.db.WithContext(ctx).Create(&entry).Error
}

// Recent returns the latest entries, newest first.
func (s *Activities) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	var activities []model.Activity
	err := s.db.WithContext(ctx).Order("timestamp desc").Limit(limit).Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// All returns every entry, newest first.
func (s *Activities) All(ctx context.Context) ([]model.Activity, error) {
	var activities []model.Activity
	err := s.db.WithContext(ctx).Order("timestamp desc").Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// DeleteAll clears the audit trail.
func (s *Activities) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Activity{}).Error
}
