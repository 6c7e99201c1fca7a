package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at"}

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewHandler(NewRepo(db), newTestTokens(time.Hour))
	h.RegisterRoutes(router.Group("/users"))

	return router, mock
}

func doJSON(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_Success(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT id, name, email, password_hash, created_at").
		WithArgs("jane@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := doJSON(router, http.MethodPost, "/users/register",
		`{"name":"Jane","email":"jane@example.com","password":"secret-password"}`, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT id, name, email, password_hash, created_at").
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "Jane", "jane@example.com", "hash", time.Now()))

	w := doJSON(router, http.MethodPost, "/users/register",
		`{"name":"Jane","email":"jane@example.com","password":"secret-password"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
	// no INSERT may run after a conflict
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_ShortPassword(t *testing.T) {
	router, mock := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/users/register",
		`{"name":"Jane","email":"jane@example.com","password":"short"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_Success(t *testing.T) {
	router, mock := setupRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, name, email, password_hash, created_at").
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "Jane", "jane@example.com", string(hash), time.Now()))

	w := doJSON(router, http.MethodPost, "/users/login",
		`{"email":"jane@example.com","password":"secret-password"}`, "")

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	// the token decodes back to the stored user's id
	claims, err := newTestTokens(time.Hour).Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	router, mock := setupRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, name, email, password_hash, created_at").
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "Jane", "jane@example.com", string(hash), time.Now()))

	w := doJSON(router, http.MethodPost, "/users/login",
		`{"email":"jane@example.com","password":"wrong-password"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestLogin_UnknownEmail_SameResponse(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT id, name, email, password_hash, created_at").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	w := doJSON(router, http.MethodPost, "/users/login",
		`{"email":"ghost@example.com","password":"whatever-password"}`, "")

	// absent email and wrong password are indistinguishable
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, w.Body.String())
}

func TestMe_Success(t *testing.T) {
	router, mock := setupRouter(t)

	token, _, err := newTestTokens(time.Hour).Sign("u1")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, name, email, password_hash, created_at").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "Jane", "jane@example.com", "hash", time.Now()))

	w := doJSON(router, http.MethodGet, "/users/me", "", token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jane@example.com")
	// the hash never leaves the server
	assert.NotContains(t, w.Body.String(), "hash")
}

func TestMe_UserGone(t *testing.T) {
	router, mock := setupRouter(t)

	token, _, err := newTestTokens(time.Hour).Sign("u-gone")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, name, email, password_hash, created_at").
		WithArgs("u-gone").
		WillReturnError(sql.ErrNoRows)

	w := doJSON(router, http.MethodGet, "/users/me", "", token)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMe_NoToken(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/users/me", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_ExpiredToken(t *testing.T) {
	router, _ := setupRouter(t)

	token, _, err := newTestTokens(-time.Minute).Sign("u1")
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/users/me", "", token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
