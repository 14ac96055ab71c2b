package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func signUpRequest(t *testing.T, ac *AuthController, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/api/auth/signup", ac.SignUp)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSignUpRejectsRegisteredEmailBeforeIdentityCreation(t *testing.T) {
	db, mock := newMockDB(t)
	ac := NewAuthController(db, zap.NewNop(), nil)

	mock.ExpectQuery(`SELECT email FROM users WHERE email = \$1`).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("taken@example.com"))

	w := signUpRequest(t, ac,
		`{"full_name": "Test Player", "email": "taken@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")

	// The pre-check is the only statement allowed to run; in particular
	// no identities INSERT may have happened.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUpFailsClosedWhenEmailCheckErrors(t *testing.T) {
	db, mock := newMockDB(t)
	ac := NewAuthController(db, zap.NewNop(), nil)

	mock.ExpectQuery(`SELECT email FROM users WHERE email = \$1`).
		WillReturnError(errors.New("connection reset"))

	w := signUpRequest(t, ac,
		`{"full_name": "Test Player", "email": "new@example.com", "password": "secret123"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
