package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPlayerID = "4f6f9f8a-2d1e-4b3c-9a7d-222222222222"

func bookRequest(t *testing.T, bc *BookingController, slotID string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", testPlayerID) })
	r.POST("/api/player/sessions/:id/book", bc.BookSession)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions/"+slotID+"/book", nil)
	r.ServeHTTP(w, req)
	return w
}

var slotColumns = []string{
	"id", "coach_id", "branch_id", "session_date", "start_time", "end_time",
	"status", "coach_name", "coach_specialization", "branch_name", "hourly_rate",
}

func TestBookSessionReportsConflictWhenSlotAlreadyTaken(t *testing.T) {
	db, mock := newMockDB(t)
	bc := NewBookingController(db, zap.NewNop())

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE id = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	// Conditional update loses the race: zero rows affected.
	mock.ExpectExec(`UPDATE coach_sessions`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM coach_sessions WHERE id = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	w := bookRequest(t, bc, "slot-1")

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "BOOKING_CONFLICT")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSessionReturnsNotFoundForUnknownSlot(t *testing.T) {
	db, mock := newMockDB(t)
	bc := NewBookingController(db, zap.NewNop())

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE id = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`UPDATE coach_sessions`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM coach_sessions WHERE id = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	w := bookRequest(t, bc, "slot-gone")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "RESOURCE_NOT_FOUND")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSessionSucceedsWhenSlotIsAvailable(t *testing.T) {
	db, mock := newMockDB(t)
	bc := NewBookingController(db, zap.NewNop())

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE id = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`UPDATE coach_sessions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Availability list is re-fetched after a successful booking.
	mock.ExpectQuery(`FROM coach_sessions cs`).
		WillReturnRows(sqlmock.NewRows(slotColumns))

	w := bookRequest(t, bc, "slot-1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "booked successfully")
	assert.NoError(t, mock.ExpectationsWereMet())
}
