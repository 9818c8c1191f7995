// Package scheduler drives the reminder evaluation-and-dispatch loop.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"carecall/internal/config"
	"carecall/internal/model"
	"carecall/internal/store"
)

// Dispatcher places an outbound reminder call and returns the
// provider-assigned call id.
type Dispatcher interface {
	PlaceCall(ctx context.Context, user *model.User, reminder *model.Reminder) (string, error)
}

// Scheduler re-evaluates every reminder on a fixed cadence and
// dispatches the due ones. Each tick runs to completion before the
// next starts; ticks that would overlap are skipped, not queued.
type Scheduler struct {
	cfg        *config.Config
	store      *store.Store
	dispatcher Dispatcher
	cron       *cron.Cron
	logger     *log.Logger
	now        func() time.Time
}

// New creates a Scheduler. It does not start ticking until Start.
func New(cfg *config.Config, st *store.Store, dispatcher Dispatcher, logger *log.Logger) *Scheduler {
	c := cron.New(
		cron.WithLocation(cfg.LocalTimezone),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{
		cfg:        cfg,
		store:      st,
		dispatcher: dispatcher,
		cron:       c,
		logger:     logger,
		now:        time.Now,
	}
}

// Start registers the tick job and starts the loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", s.cfg.TickSeconds), s.runTick)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Printf("scheduler started: tick=%ds grace=%dm", s.cfg.TickSeconds, s.cfg.GraceMinutes)
	return nil
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runTick performs one full evaluation-and-dispatch pass. Every tick
// re-reads all state; the only bookkeeping carried across ticks is the
// call-history log and water last_triggered timestamps, so a reminder
// skipped for any reason this tick is simply re-evaluated on the next.
func (s *Scheduler) runTick() {
	ctx := context.Background()
	now := s.now().In(s.cfg.LocalTimezone)
	today := now.Format(model.DateLayout)

	reminders, err := s.store.AllReminders(ctx)
	if err != nil {
		s.logger.Printf("tick: load reminders: %v", err)
		return
	}
	users, err := s.store.AllUsers(ctx)
	if err != nil {
		s.logger.Printf("tick: load users: %v", err)
		return
	}

	userMap := make(map[string]*model.User, len(users))
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	var due []*model.Reminder
	for i := range reminders {
		rem := &reminders[i]
		if !rem.Active {
			continue
		}
		if _, ok := userMap[rem.UserID]; !ok {
			s.logger.Printf("tick: reminder %s: owner %s not found, skipping", rem.ID, rem.UserID)
			continue
		}
		isDue, err := s.isDue(ctx, rem, now, today)
		if err != nil {
			s.logger.Printf("tick: reminder %s: %v", rem.ID, err)
			continue
		}
		if isDue {
			due = append(due, rem)
		}
	}

	for _, rem := range due {
		s.dispatch(ctx, userMap[rem.UserID], rem, now, today)
	}
}

// isDue applies the kind-specific time condition for the current tick.
func (s *Scheduler) isDue(ctx context.Context, rem *model.Reminder, now time.Time, today string) (bool, error) {
	switch rem.Kind {
	case model.KindMedicine:
		called, err := s.store.MedicineCalledOn(ctx, rem.ID, today)
		if err != nil {
			return false, err
		}
		if called {
			return false, nil
		}
		return medicineDue(rem, now, s.cfg.GraceMinutes)
	case model.KindWater:
		return waterDue(rem, now), nil
	default:
		return false, fmt.Errorf("unknown reminder kind %q", rem.Kind)
	}
}

// dispatch places the call and records the outcome. A dispatch failure
// aborts only this reminder for this tick.
func (s *Scheduler) dispatch(ctx context.Context, user *model.User, rem *model.Reminder, now time.Time, today string) {
	sid, err := s.dispatcher.PlaceCall(ctx, user, rem)
	if err != nil {
		s.logger.Printf("tick: dispatch reminder %s: %v", rem.ID, err)
		return
	}
	s.logger.Printf("tick: called %s (%s) for %s reminder %s, sid=%s", user.Name, user.Phone, rem.Kind, rem.ID, sid)

	record := &model.CallRecord{
		ReminderID: rem.ID,
		UserID:     rem.UserID,
		Kind:       rem.Kind,
		Date:       today,
		CalledAt:   now,
	}
	if err := s.store.AppendCallRecord(ctx, record); err != nil {
		s.logger.Printf("tick: record call for reminder %s: %v", rem.ID, err)
	}

	if rem.Kind == model.KindWater {
		if err := s.store.MarkWaterTriggered(ctx, rem.ID, now); err != nil {
			s.logger.Printf("tick: update last_triggered for reminder %s: %v", rem.ID, err)
		}
	}
}

// medicineDue reports whether now falls within the grace window around
// today's occurrence of the scheduled time. The window is symmetric
// and boundary-inclusive: the reminder is due both shortly before and
// shortly after its scheduled time, a tolerance for tick drift.
func medicineDue(rem *model.Reminder, now time.Time, graceMinutes int) (bool, error) {
	t, err := time.Parse(model.ScheduleLayout, rem.ScheduleTime)
	if err != nil {
		return false, fmt.Errorf("parse schedule_time %q: %w", rem.ScheduleTime, err)
	}
	scheduled := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	delta := now.Sub(scheduled)
	if delta < 0 {
		delta = -delta
	}
	return delta <= time.Duration(graceMinutes)*time.Minute, nil
}

// waterDue reports whether the reminder's interval has elapsed since
// it last fired. A reminder that has never fired is due immediately.
func waterDue(rem *model.Reminder, now time.Time) bool {
	if rem.LastTriggered == nil {
		return true
	}
	return now.Sub(*rem.LastTriggered) >= time.Duration(rem.IntervalMinutes)*time.Minute
}
