// Package ivr builds the voice scripts for reminder calls and records
// the DTMF adherence responses they capture.
package ivr

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"

	"carecall/internal/model"
	"carecall/internal/store"
)

const (
	pollyVoice    = "Polly.Aditi"
	gatherDigits  = 1
	gatherTimeout = 7 // seconds the provider waits for a digit
)

// Kannada callers hear pre-recorded audio; digit instructions stay in
// English so DTMF guidance is unambiguous.
var kannadaPrompt = map[model.Kind]string{
	model.KindMedicine: "/static/kannada_medicine.mp3",
	model.KindWater:    "/static/kannada_water.mp3",
}

var ackMessage = map[model.Status]string{
	model.StatusTaken:   "Thank you. We have recorded that you took it.",
	model.StatusSkipped: "Okay. We have recorded that you skipped it.",
	model.StatusInvalid: "Invalid input received.",
}

// Kannada acknowledgment audio exists only for the two deliberate
// outcomes; invalid input falls back to synthesized speech.
var kannadaAck = map[model.Status]string{
	model.StatusTaken:   "/static/kannada_thanks.mp3",
	model.StatusSkipped: "/static/kannada_skip.mp3",
}

// Responder answers the Twilio voice webhooks. It is stateless across
// calls beyond reading current reminder and user state.
type Responder struct {
	store  *store.Store
	logger *log.Logger
	now    func() time.Time
}

// NewResponder creates a Responder.
func NewResponder(st *store.Store, logger *log.Logger) *Responder {
	return &Responder{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// Prompt builds the voice script for an outbound reminder call: the
// reminder message, a press-1/press-2 instruction, a one-digit Gather
// posting back to /gather, and a goodbye line if no input arrives.
func (r *Responder) Prompt(ctx context.Context, reminderID string) string {
	rem, user, err := r.resolve(ctx, reminderID)
	if err != nil {
		r.logger.Printf("ivr: prompt %s: %v", reminderID, err)
		return render(say{Voice: pollyVoice, Message: "Reminder not found."})
	}

	capture := gather{
		Input:     "dtmf",
		NumDigits: gatherDigits,
		Timeout:   gatherTimeout,
		Action:    "/gather?reminder_id=" + url.QueryEscape(rem.ID),
		Method:    "POST",
	}
	noInput := say{Voice: pollyVoice, Message: "No input received. Goodbye."}

	if user.Language == model.LanguageKannada {
		audio, ok := kannadaPrompt[rem.Kind]
		if !ok {
			r.logger.Printf("ivr: prompt %s: unknown reminder kind %q", rem.ID, rem.Kind)
			return render(say{Voice: pollyVoice, Message: "Reminder not found."})
		}
		instruction := say{Voice: pollyVoice, Message: "Press 1 if taken. Press 2 if skipped."}
		return render(play{URL: audio}, pause{Length: 1}, instruction, capture, noInput)
	}

	main, err := englishPrompt(rem)
	if err != nil {
		r.logger.Printf("ivr: prompt %s: %v", rem.ID, err)
		return render(say{Voice: pollyVoice, Message: "Reminder not found."})
	}
	instruction := say{Voice: pollyVoice, Message: "Press 1 if you have taken it. Press 2 if you want to skip."}
	return render(say{Voice: pollyVoice, Message: main}, pause{Length: 1}, instruction, capture, noInput)
}

// Collect classifies the captured digit, appends exactly one adherence
// log entry whatever the outcome, and returns the acknowledgment script.
func (r *Responder) Collect(ctx context.Context, reminderID, digit string) string {
	rem, user, err := r.resolve(ctx, reminderID)
	if err != nil {
		r.logger.Printf("ivr: collect %s: %v", reminderID, err)
		return render(say{Voice: pollyVoice, Message: "Reminder not found."})
	}

	status := classify(digit)
	entry := &model.AdherenceLog{
		ID:         uuid.NewString(),
		Time:       r.now(),
		Status:     status,
		ReminderID: rem.ID,
		UserID:     rem.UserID,
		Kind:       rem.Kind,
	}
	if err := r.store.AppendAdherence(ctx, entry); err != nil {
		r.logger.Printf("ivr: collect %s: append adherence log: %v", rem.ID, err)
	}

	if user.Language == model.LanguageKannada {
		if audio, ok := kannadaAck[status]; ok {
			return render(play{URL: audio})
		}
	}
	return render(say{Voice: pollyVoice, Message: ackMessage[status]})
}

func (r *Responder) resolve(ctx context.Context, reminderID string) (*model.Reminder, *model.User, error) {
	if reminderID == "" {
		return nil, nil, fmt.Errorf("missing reminder id")
	}
	rem, err := r.store.ReminderByID(ctx, reminderID)
	if err != nil {
		return nil, nil, err
	}
	user, err := r.store.UserByID(ctx, rem.UserID)
	if err != nil {
		return nil, nil, err
	}
	return rem, user, nil
}

func englishPrompt(rem *model.Reminder) (string, error) {
	switch rem.Kind {
	case model.KindWater:
		return "This is a water reminder. Please drink water now.", nil
	case model.KindMedicine:
		return fmt.Sprintf("This is your medicine reminder. Please take %s now.", rem.Name), nil
	default:
		return "", fmt.Errorf("unknown reminder kind %q", rem.Kind)
	}
}

func classify(digit string) model.Status {
	switch digit {
	case "1":
		return model.StatusTaken
	case "2":
		return model.StatusSkipped
	default:
		return model.StatusInvalid
	}
}
