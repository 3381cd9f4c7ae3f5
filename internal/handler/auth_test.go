package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/config"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/utils"
)

const rawRefresh = "3f2a9c"

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)
	cfg := config.Config{JWTSecret: "auth-secret", AccessTTLMin: 5, RefreshTTLDays: 1}
	return NewAuthHandler(cfg, nil, repository.NewUserRepo(db), repository.NewTokenRepo(db), zap.NewNop()), mock
}

// expectRefreshLookup queues the token and user reads that precede rotation.
func expectRefreshLookup(mock sqlmock.Sqlmock) {
	hash := utils.HashRefreshRaw(rawRefresh)
	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\?`).WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(5, time.Now().UTC().Add(time.Hour), nil))
	mock.ExpectQuery(`FROM users WHERE id=\?`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "first_name", "last_name", "city", "is_active", "created_at", "updated_at"}).
			AddRow(5, "donor@example.org", "x", "DONOR", "A", "B", "", true, time.Now(), time.Now()))
}

func TestRefresh_RotatesToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	expectRefreshLookup(mock)
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).WithArgs(utils.HashRefreshRaw(rawRefresh)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).WithArgs(5, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := call(h.Refresh, nil, http.MethodPost, `{"refresh_token":"`+rawRefresh+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.NotEmpty(t, body["access"])
	assert.NotEmpty(t, body["refresh"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_AlreadyRotatedIsRejected(t *testing.T) {
	h, mock := newAuthHandler(t)
	expectRefreshLookup(mock)
	// A concurrent rotation revoked the token between the lookup and the update.
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).WithArgs(utils.HashRefreshRaw(rawRefresh)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := call(h.Refresh, nil, http.MethodPost, `{"refresh_token":"`+rawRefresh+`"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "no new refresh token may be stored")
}

func TestLogout_RevokedTokenStillSucceeds(t *testing.T) {
	h, mock := newAuthHandler(t)
	hash := utils.HashRefreshRaw(rawRefresh)
	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\?`).WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(5, time.Now().UTC().Add(time.Hour), nil))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := call(h.Logout, nil, http.MethodPost, `{"refresh_token":"`+rawRefresh+`"}`, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
