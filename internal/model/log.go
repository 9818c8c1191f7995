package model

import "time"

// Status classifies a DTMF adherence response.
type Status string

const (
	StatusTaken   Status = "taken"
	StatusSkipped Status = "skipped"
	StatusInvalid Status = "invalid"
)

// DateLayout is the calendar-date format used for call deduplication.
const DateLayout = "2006-01-02"

// AdherenceLog records the outcome of one completed IVR interaction.
// Exactly one entry is appended per digit capture or timeout.
type AdherenceLog struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Time       time.Time `gorm:"index;not null" json:"time"`
	Status     Status    `gorm:"type:varchar(16);not null" json:"status"`
	ReminderID string    `gorm:"index;not null" json:"reminder_id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	Kind       Kind      `gorm:"type:varchar(16);not null" json:"kind"`
}

// CallRecord is an append-only log of dispatched calls. Date is the
// scheduler's local calendar date and backs the rule that a medicine
// reminder is called at most once per day.
type CallRecord struct {
	ID         uint      `gorm:"primaryKey"`
	ReminderID string    `gorm:"index:idx_call_reminder_date;not null"`
	UserID     string    `gorm:"index;not null"`
	Kind       Kind      `gorm:"type:varchar(16);not null"`
	Date       string    `gorm:"index:idx_call_reminder_date;not null"`
	CalledAt   time.Time `gorm:"not null"`
}
