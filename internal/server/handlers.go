package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"carecall/internal/apperror"
	"carecall/internal/model"
	"carecall/internal/phone"
)

type registerRequest struct {
	Name     string         `json:"name"`
	Phone    string         `json:"phone"`
	Password string         `json:"password"`
	Language model.Language `json:"language"`
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type addMedicineRequest struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	ScheduleTime string `json:"schedule_time"`
}

type addWaterRequest struct {
	IntervalMinutes int `json:"interval_minutes"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Password == "" {
		writeError(w, apperror.ValidationFailed("name", "name and password are required"))
		return
	}
	if !req.Language.Valid() {
		writeError(w, apperror.ValidationFailed("language", fmt.Sprintf("unsupported language %q", req.Language)))
		return
	}

	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	exists, err := s.store.PhoneExists(r.Context(), normalized)
	if err != nil {
		writeError(w, err)
		return
	}
	if exists {
		writeError(w, apperror.ValidationFailed("phone", "phone already registered"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Phone:        normalized,
		PasswordHash: string(hash),
		Language:     req.Language,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	s.logger.Printf("registered user %s (%s)", user.ID, user.Phone)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := s.store.UserByPhone(r.Context(), normalized)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeError(w, apperror.Unauthorized("invalid credentials"))
			return
		}
		writeError(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, apperror.Unauthorized("invalid credentials"))
		return
	}

	sess := s.sessions.Create(user.ID)
	writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.sessions.Invalidate(token)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleAddMedicine(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("no session"))
		return
	}

	var req addMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	rem, err := model.NewMedicineReminder(userID, req.Name, req.Dosage, req.ScheduleTime)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.CreateReminder(r.Context(), rem); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleAddWater(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("no session"))
		return
	}

	var req addWaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	// The configured default is applied once, here; stored water
	// reminders always carry an explicit interval.
	interval := req.IntervalMinutes
	if interval == 0 {
		interval = s.cfg.DefaultWaterIntervalMinutes
	}

	rem, err := model.NewWaterReminder(userID, interval)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.CreateReminder(r.Context(), rem); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleMyReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("no session"))
		return
	}

	reminders, err := s.store.RemindersForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleMyAdherence(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("no session"))
		return
	}

	logs, err := s.store.AdherenceForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if logs == nil {
		logs = []model.AdherenceLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	reminderID := r.URL.Query().Get("reminder_id")
	writeXML(w, s.ivr.Prompt(r.Context(), reminderID))
}

func (s *Server) handleGather(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.Printf("gather: parse form: %v", err)
	}
	reminderID := r.URL.Query().Get("reminder_id")
	digit := r.FormValue("Digits")
	writeXML(w, s.ivr.Collect(r.Context(), reminderID, digit))
}
