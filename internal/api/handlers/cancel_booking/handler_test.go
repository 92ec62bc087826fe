package cancel_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-BarberService/internal/api/middleware"
	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/bookings"
	"github.com/m04kA/SMC-BarberService/internal/service/bookings/models"
)

type mockService struct{ mock.Mock }

func (m *mockService) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	return m.Called(ctx, bookingID, req).Error(0)
}

func (m *mockService) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResponse), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var client = domain.Actor{UserID: 42, Role: domain.RoleClient}

func newRequest(payload string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/100/cancel", strings.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"bookingId": "100"})
	return req.WithContext(middleware.WithActor(req.Context(), client))
}

func TestHandler_Cancel(t *testing.T) {
	svc := new(mockService)
	svc.On("Cancel", mock.Anything, int64(100), mock.MatchedBy(func(r *models.CancelBookingRequest) bool {
		return r.Actor == client && r.CancellationReason != nil && *r.CancellationReason == "me enfermé"
	})).Return(nil)
	svc.On("GetByID", mock.Anything, int64(100), client).
		Return(&models.BookingResponse{ID: 100, Status: string(domain.StatusCancelled)}, nil)

	rec := httptest.NewRecorder()
	NewHandler(svc, nopLogger{}).Handle(rec, newRequest(`{"cancellationReason":"me enfermé"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
	svc.AssertExpectations(t)
}

func TestHandler_EmptyBody(t *testing.T) {
	svc := new(mockService)
	svc.On("Cancel", mock.Anything, int64(100), mock.MatchedBy(func(r *models.CancelBookingRequest) bool {
		return r.CancellationReason == nil
	})).Return(nil)
	svc.On("GetByID", mock.Anything, int64(100), client).Return(&models.BookingResponse{ID: 100}, nil)

	rec := httptest.NewRecorder()
	NewHandler(svc, nopLogger{}).Handle(rec, newRequest(""))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: bookings.ErrBookingNotFound, want: http.StatusNotFound},
		{err: bookings.ErrAccessDenied, want: http.StatusForbidden},
		{err: bookings.ErrCannotCancel, want: http.StatusConflict},
		{err: bookings.ErrInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := new(mockService)
			svc.On("Cancel", mock.Anything, int64(100), mock.Anything).Return(tt.err)
			rec := httptest.NewRecorder()

			NewHandler(svc, nopLogger{}).Handle(rec, newRequest(""))

			assert.Equal(t, tt.want, rec.Code)
			svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
