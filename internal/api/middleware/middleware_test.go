package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

func actorEcho(t *testing.T, got *domain.Actor) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		require.True(t, ok)
		*got = actor
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
		wantActor  domain.Actor
	}{
		{name: "client by default", userID: "42", wantStatus: http.StatusNoContent, wantActor: domain.Actor{UserID: 42, Role: domain.RoleClient}},
		{name: "barber", userID: "7", role: "barber", wantStatus: http.StatusNoContent, wantActor: domain.Actor{UserID: 7, Role: domain.RoleBarber}},
		{name: "missing id", wantStatus: http.StatusUnauthorized},
		{name: "bad id", userID: "abc", wantStatus: http.StatusUnauthorized},
		{name: "negative id", userID: "-1", wantStatus: http.StatusUnauthorized},
		{name: "unknown role", userID: "7", role: "owner", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.Actor
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(HeaderUserRole, tt.role)
			}
			rec := httptest.NewRecorder()

			Auth(actorEcho(t, &got)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, got)
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := Auth(RequireRole(domain.RoleBarber, domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set(HeaderUserRole, "admin")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	const given = "0b7cfa3e-9d1c-4f43-a6ad-4e0d2e3c8a11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, given)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, given, seen)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2, time.Minute)
	handler := Auth(limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req.Header.Set(HeaderUserID, userID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, call("42"))
	assert.Equal(t, http.StatusCreated, call("42"))
	assert.Equal(t, http.StatusTooManyRequests, call("42"))
	// Лимит у каждого пользователя свой
	assert.Equal(t, http.StatusCreated, call("43"))
}

func TestRateLimiter_CleanupEvictsIdleUsers(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(0.001, 1, 10*time.Minute)
	limiter.now = func() time.Time { return now }
	handler := Auth(limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req.Header.Set(HeaderUserID, userID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for _, userID := range []string{"1", "2", "3"} {
		assert.Equal(t, http.StatusCreated, call(userID))
	}
	require.Equal(t, 3, limiter.Size())

	now = now.Add(6 * time.Minute)
	assert.Equal(t, http.StatusTooManyRequests, call("3"))
	assert.Equal(t, 0, limiter.Cleanup())

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 2, limiter.Cleanup())
	assert.Equal(t, 1, limiter.Size())
}

func TestRateLimiter_RunCleanupStops(t *testing.T) {
	limiter := NewRateLimiter(1, 1, time.Nanosecond)
	limiter.limiter(42)

	stopCh := make(chan struct{})
	done := make(chan struct{})
	go func() {
		limiter.RunCleanup(time.Millisecond, stopCh)
		close(done)
	}()

	assert.Eventually(t, func() bool { return limiter.Size() == 0 }, time.Second, time.Millisecond)
	close(stopCh)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not stop")
	}
}

type recordedRequest struct {
	method, path string
	status       int
}

type fakeRecorder struct {
	requests []recordedRequest
}

func (f *fakeRecorder) RecordHTTPRequest(_, method, path string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method: method, path: path, status: status})
}

func (f *fakeRecorder) ServiceName() string {
	return "barber-service"
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	recorder := &fakeRecorder{}
	router := mux.NewRouter()
	router.Use(Metrics(recorder))
	router.HandleFunc("/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/15", nil))

	require.Len(t, recorder.requests, 1)
	assert.Equal(t, recordedRequest{method: http.MethodGet, path: "/bookings/{bookingId}", status: http.StatusNotFound}, recorder.requests[0])
}
