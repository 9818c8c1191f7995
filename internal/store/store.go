// Package store is the typed persistence layer. Records are indexed by
// id and mutated per row, so the scheduler's dedup check and the water
// last_triggered update never rewrite whole collections.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"carecall/internal/apperror"
	"carecall/internal/model"
)

// Store wraps the database connection with the queries the service needs.
type Store struct {
	db *gorm.DB
}

// New creates a Store backed by the given connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUser persists a new user.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// UserByPhone looks up a user by canonical phone number.
func (s *Store) UserByPhone(ctx context.Context, phone string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user", phone)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByID looks up a user by id.
func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AllUsers returns every registered user.
func (s *Store) AllUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// PhoneExists reports whether a user is already registered with the number.
func (s *Store) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

// CreateReminder persists a new reminder.
func (s *Store) CreateReminder(ctx context.Context, r *model.Reminder) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// ReminderByID looks up a reminder by id.
func (s *Store) ReminderByID(ctx context.Context, id string) (*model.Reminder, error) {
	var r model.Reminder
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("reminder", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RemindersForUser returns a user's reminders, oldest first.
func (s *Store) RemindersForUser(ctx context.Context, userID string) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

// AllReminders returns every reminder, oldest first, for a scheduler tick.
func (s *Store) AllReminders(ctx context.Context) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// MarkWaterTriggered records when a water reminder last fired. This is
// the only post-creation mutation a reminder ever receives.
func (s *Store) MarkWaterTriggered(ctx context.Context, reminderID string, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ?", reminderID).
		Update("last_triggered", at).Error
}

// AppendAdherence appends one adherence log entry.
func (s *Store) AppendAdherence(ctx context.Context, entry *model.AdherenceLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// AdherenceForUser returns a user's adherence history, oldest first.
func (s *Store) AdherenceForUser(ctx context.Context, userID string) ([]model.AdherenceLog, error) {
	var logs []model.AdherenceLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time asc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// AppendCallRecord appends one dispatched-call record.
func (s *Store) AppendCallRecord(ctx context.Context, record *model.CallRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

// MedicineCalledOn reports whether a call was already dispatched for
// the reminder on the given calendar date.
func (s *Store) MedicineCalledOn(ctx context.Context, reminderID, date string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.CallRecord{}).
		Where("reminder_id = ? AND date = ?", reminderID, date).
		Count(&count).Error
	return count > 0, err
}
