package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wellness-tracker/apiserver/internal/services"
	"github.com/wellness-tracker/apiserver/internal/store"
	"github.com/wellness-tracker/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// fakeUserRepo is an in-memory services.UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]types.User{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateUser
		}
	}
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ReminderPreferences == nil {
		user.ReminderPreferences = json.RawMessage(`{}`)
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetReminderPreferences(_ context.Context, userID string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user.ReminderPreferences, nil
}

func (f *fakeUserRepo) SetReminderPreferences(_ context.Context, userID string, prefs json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if prefs == nil {
		prefs = json.RawMessage(`{}`)
	}
	user.ReminderPreferences = prefs
	user.UpdatedAt = time.Now()
	f.users[userID] = user
	return prefs, nil
}

// fakeLogRepo is an in-memory services.LogRepository that enforces the same
// id+owner predicate as the real store.
type fakeLogRepo struct {
	mu   sync.Mutex
	logs map[string]types.WellnessLog
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: map[string]types.WellnessLog{}}
}

func (f *fakeLogRepo) Create(_ context.Context, log types.WellnessLog) (types.WellnessLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	log.ID = uuid.NewString()
	log.CreatedAt = now
	log.UpdatedAt = now
	f.logs[log.ID] = log
	return log, nil
}

func (f *fakeLogRepo) List(_ context.Context, userID string, filter store.LogFilter, limit int) ([]types.WellnessLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var logs []types.WellnessLog
	for _, log := range f.logs {
		if log.UserID != userID {
			continue
		}
		if filter.Type != "" && log.Type != filter.Type {
			continue
		}
		if filter.Start != nil && filter.End != nil {
			if log.Date.Before(*filter.Start) || log.Date.After(*filter.End) {
				continue
			}
		}
		logs = append(logs, log)
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date.After(logs[j].Date) })
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	if logs == nil {
		logs = []types.WellnessLog{}
	}
	return logs, nil
}

func (f *fakeLogRepo) Update(_ context.Context, userID string, log types.WellnessLog) (types.WellnessLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.logs[log.ID]
	if !ok || existing.UserID != userID {
		return types.WellnessLog{}, store.ErrNotFound
	}
	existing.Type = log.Type
	existing.Value = log.Value
	existing.Details = log.Details
	existing.UpdatedAt = time.Now()
	f.logs[log.ID] = existing
	return existing, nil
}

func (f *fakeLogRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.logs[id]
	if !ok || existing.UserID != userID {
		return store.ErrNotFound
	}
	delete(f.logs, id)
	return nil
}

// testEnv bundles the router and fakes for handler tests.
type testEnv struct {
	router   *chi.Mux
	userRepo *fakeUserRepo
	logRepo  *fakeLogRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userRepo := newFakeUserRepo()
	logRepo := newFakeLogRepo()
	userService := services.NewUserService(userRepo)
	logService := services.NewLogService(logRepo)
	authMiddleware := RequireAuth(testSecret)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret)
	})
	router.Route("/wellness/logs", func(r chi.Router) {
		LogsRouter(r, logService, authMiddleware)
	})
	router.Route("/user/reminders", func(r chi.Router) {
		RemindersRouter(r, userService, authMiddleware)
	})

	return &testEnv{router: router, userRepo: userRepo, logRepo: logRepo}
}

// signup creates a user directly in the fake store and returns its id
// together with a valid session token.
func (e *testEnv) signup(t *testing.T, name, email, password string) (string, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := e.userRepo.Create(nil, types.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	})
	require.NoError(t, err)

	token, err := issueToken(user.ID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return user.ID, token
}

// do performs a request against the test router. A non-empty token is sent
// as a bearer credential.
func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
