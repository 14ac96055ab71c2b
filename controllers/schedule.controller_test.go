package controllers

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCoachID = "7c2d5e1b-8f40-4e6a-b5c3-333333333333"
const testBranchID = "9a8b7c6d-5e4f-4a3b-2c1d-444444444444"

func createSessionRequest(t *testing.T, sc *ScheduleController, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", testCoachID) })
	r.POST("/api/coach/sessions", sc.CreateSession)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/coach/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSessionRejectsMalformedWindow(t *testing.T) {
	db, mock := newMockDB(t)
	sc := NewScheduleController(db, zap.NewNop())

	// Validation happens before any statement runs.
	w := createSessionRequest(t, sc,
		`{"branch_id": "`+testBranchID+`", "session_date": "2026-09-01", "start_time": "nine", "end_time": "10:00"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionRejectsInvertedWindow(t *testing.T) {
	db, _ := newMockDB(t)
	sc := NewScheduleController(db, zap.NewNop())

	w := createSessionRequest(t, sc,
		`{"branch_id": "`+testBranchID+`", "session_date": "2026-09-01", "start_time": "11:00", "end_time": "10:00"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSessionReportsTimeConflict(t *testing.T) {
	db, mock := newMockDB(t)
	sc := NewScheduleController(db, zap.NewNop())

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM branches WHERE id = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	// DO NOTHING fired, so RETURNING yields no row.
	mock.ExpectQuery(`INSERT INTO coach_sessions`).
		WillReturnError(sql.ErrNoRows)

	w := createSessionRequest(t, sc,
		`{"branch_id": "`+testBranchID+`", "session_date": "2026-09-01", "start_time": "09:00", "end_time": "10:00"}`)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already exists at this time")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionReportsDatabaseErrorDistinctly(t *testing.T) {
	db, mock := newMockDB(t)
	sc := NewScheduleController(db, zap.NewNop())

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM branches WHERE id = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO coach_sessions`).
		WillReturnError(errors.New("foreign key violation"))

	w := createSessionRequest(t, sc,
		`{"branch_id": "`+testBranchID+`", "session_date": "2026-09-01", "start_time": "09:00", "end_time": "10:00"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "DATABASE_ERROR")
	assert.NotContains(t, w.Body.String(), "already exists at this time")
	assert.NoError(t, mock.ExpectationsWereMet())
}
