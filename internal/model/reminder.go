package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"carecall/internal/apperror"
)

// Kind identifies the reminder variant.
type Kind string

const (
	KindMedicine Kind = "medicine"
	KindWater    Kind = "water"
)

// Valid reports whether the kind is one of the supported variants.
func (k Kind) Valid() bool {
	return k == KindMedicine || k == KindWater
}

// ScheduleLayout is the time-of-day format medicine reminders are stored in.
const ScheduleLayout = "15:04"

// Reminder is a scheduled medicine or water reminder for a user.
// Medicine reminders fire once per day around ScheduleTime; water
// reminders fire every IntervalMinutes. LastTriggered is set only for
// water reminders, and only by the scheduler. Reminders are built via
// NewMedicineReminder and NewWaterReminder so kind-specific fields are
// always populated for their kind.
type Reminder struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	UserID          string     `gorm:"index;not null" json:"user_id"`
	Kind            Kind       `gorm:"type:varchar(16);not null" json:"kind"`
	Active          bool       `gorm:"not null" json:"active"`
	Name            string     `json:"name,omitempty"`
	Dosage          string     `json:"dosage,omitempty"`
	ScheduleTime    string     `json:"schedule_time,omitempty"`
	IntervalMinutes int        `json:"interval_minutes,omitempty"`
	LastTriggered   *time.Time `json:"last_triggered,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// NewMedicineReminder builds a daily medicine reminder. scheduleTime
// must be a valid HH:MM time of day.
func NewMedicineReminder(userID, name, dosage, scheduleTime string) (*Reminder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.ValidationFailed("name", "medicine name is required")
	}
	if _, err := time.Parse(ScheduleLayout, scheduleTime); err != nil {
		return nil, apperror.ValidationFailed("schedule_time", fmt.Sprintf("schedule_time %q is not a valid HH:MM time", scheduleTime))
	}
	return &Reminder{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         KindMedicine,
		Active:       true,
		Name:         name,
		Dosage:       dosage,
		ScheduleTime: scheduleTime,
	}, nil
}

// NewWaterReminder builds an interval water reminder. The caller is
// responsible for substituting the configured default interval before
// calling; a stored reminder always carries an explicit interval.
func NewWaterReminder(userID string, intervalMinutes int) (*Reminder, error) {
	if intervalMinutes <= 0 {
		return nil, apperror.ValidationFailed("interval_minutes", "interval_minutes must be positive")
	}
	return &Reminder{
		ID:              uuid.NewString(),
		UserID:          userID,
		Kind:            KindWater,
		Active:          true,
		IntervalMinutes: intervalMinutes,
	}, nil
}
