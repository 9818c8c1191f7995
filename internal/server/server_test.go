package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"carecall/internal/config"
	"carecall/internal/ivr"
	"carecall/internal/model"
	"carecall/internal/session"
	"carecall/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Reminder{},
		&model.AdherenceLog{},
		&model.CallRecord{},
	))

	st := store.New(db)
	logger := log.New(io.Discard, "", 0)
	cfg := &config.Config{
		DefaultWaterIntervalMinutes: 120,
		StaticDir:                   t.TempDir(),
		LocalTimezone:               time.UTC,
	}
	sessions := session.NewMemoryStore(time.Hour)
	responder := ivr.NewResponder(st, logger)

	return New(cfg, st, sessions, responder, logger), st
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, s *Server, phone string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"name":     "Asha",
		"phone":    phone,
		"password": "secret",
		"language": "en",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func login(t *testing.T, s *Server, phone, password string) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"phone":    phone,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	register(t, s, "9876543210")

	// the same number in a different format is still a duplicate
	rec := doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"name":     "Asha",
		"phone":    "09876543210",
		"password": "secret",
		"language": "en",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"phone":    "9876543210",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "PasswordHash")
	assert.Contains(t, rec.Body.String(), "+919876543210")

	rec = doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"phone":    "9876543210",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"phone":    "9999999999",
		"password": "secret",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"name":     "Asha",
		"phone":    "12345",
		"password": "secret",
		"language": "en",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"name":     "Asha",
		"phone":    "9876543210",
		"password": "secret",
		"language": "fr",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"phone":    "9876543210",
		"password": "secret",
		"language": "en",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	for _, path := range []string{"/my-reminders", "/my-adherence"} {
		rec := doJSON(t, s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doJSON(t, s, http.MethodGet, "/my-reminders", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReminderFlow(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	register(t, s, "9876543210")
	token := login(t, s, "9876543210", "secret")

	rec := doJSON(t, s, http.MethodPost, "/add-medicine", token, map[string]string{
		"name":          "Aspirin",
		"dosage":        "1 tablet",
		"schedule_time": "09:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// interval omitted: the configured default applies at creation
	rec = doJSON(t, s, http.MethodPost, "/add-water", token, map[string]int{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/add-medicine", token, map[string]string{
		"name":          "Aspirin",
		"dosage":        "1 tablet",
		"schedule_time": "late evening",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/my-reminders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reminders []model.Reminder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reminders))
	require.Len(t, reminders, 2)
	assert.Equal(t, model.KindMedicine, reminders[0].Kind)
	assert.Equal(t, "09:00", reminders[0].ScheduleTime)
	assert.Equal(t, model.KindWater, reminders[1].Kind)
	assert.Equal(t, 120, reminders[1].IntervalMinutes)

	rec = doJSON(t, s, http.MethodGet, "/my-adherence", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestLogout(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	register(t, s, "9876543210")
	token := login(t, s, "9876543210", "secret")

	rec := doJSON(t, s, http.MethodPost, "/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/my-reminders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVoiceAndGatherWebhooks(t *testing.T) {
	t.Parallel()
	s, st := newTestServer(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         "Asha",
		Phone:        "+919876543210",
		PasswordHash: string(hash),
		Language:     model.LanguageEnglish,
	}
	require.NoError(t, st.CreateUser(ctx, user))

	rem, err := model.NewMedicineReminder(user.ID, "Aspirin", "1 tablet", "09:00")
	require.NoError(t, err)
	require.NoError(t, st.CreateReminder(ctx, rem))

	req := httptest.NewRequest(http.MethodPost, "/voice?reminder_id="+rem.ID, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Please take Aspirin now.")

	form := url.Values{"Digits": {"1"}}
	req = httptest.NewRequest(http.MethodPost, "/gather?reminder_id="+rem.ID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recorded that you took it")

	logs, err := st.AdherenceForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.StatusTaken, logs[0].Status)
}
