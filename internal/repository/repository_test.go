package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (sqlmock.Sqlmock, func() *BloodRequestRepo, func() *TokenRepo, func() *UserRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock,
		func() *BloodRequestRepo { return NewBloodRequestRepo(db) },
		func() *TokenRepo { return NewTokenRepo(db) },
		func() *UserRepo { return NewUserRepo(db) }
}

func TestListOpenByBloodType(t *testing.T) {
	mock, requests, _, _ := newMock(t)

	cols := []string{"id", "hospital_id", "blood_type", "quantity", "urgency", "description", "status",
		"request_date", "fulfilled_date", "created_at", "name", "phone", "city", "pledged"}
	mock.ExpectQuery(`WHERE br.status = 'Open' AND br.blood_type = \?\s+ORDER BY br.request_date DESC`).
		WithArgs("O+").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 1, "O+", 3, "High", "trauma", "Open", now, nil, now, "City Medical Center", "(555) 123-4567", "New York", 1).
			AddRow(1, 1, "O+", 1, "Normal", "stock", "Open", now.Add(-time.Hour), nil, now, "City Medical Center", "(555) 123-4567", "New York", 0))

	out, err := requests().ListOpenByBloodType(context.Background(), model.BloodOPos)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(2), out[0].ID)
	assert.Equal(t, model.UrgencyHigh, out[0].Urgency)
	assert.Equal(t, 1, out[0].Pledged)
	assert.Nil(t, out[1].FulfilledDate)
	assert.Equal(t, "City Medical Center", out[1].HospitalName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	mock, requests, _, users := newMock(t)
	mock.ExpectQuery(`FROM blood_requests br WHERE br.id = \?`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`FROM users WHERE id=\?`).WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := requests().GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users().GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRefresh(t *testing.T) {
	mock, _, tokens, _ := newMock(t)
	cols := []string{"user_id", "expires_at", "revoked_at"}
	future := time.Now().UTC().Add(time.Hour)

	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\?`).WithArgs("good").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, future, nil))
	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\?`).WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, future, now))
	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=\?`).WithArgs("expired").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, now, nil))

	uid, err := tokens().ValidateRefresh(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), uid)
	_, err = tokens().ValidateRefresh(context.Background(), "revoked")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tokens().ValidateRefresh(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeByHash(t *testing.T) {
	mock, _, tokens, _ := newMock(t)
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP\(\) WHERE token_hash=\? AND revoked_at IS NULL`).
		WithArgs("h1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs("h1").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, tokens().RevokeByHash(context.Background(), "h1"))
	assert.ErrorIs(t, tokens().RevokeByHash(context.Background(), "h1"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDelete(t *testing.T) {
	mock, _, _, users := newMock(t)
	mock.ExpectExec(`DELETE FROM users WHERE id=\?`).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id=\?`).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, users().Delete(context.Background(), 3))
	assert.ErrorIs(t, users().Delete(context.Background(), 4), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isDuplicate(assert.AnError))
}

func TestLimitClause(t *testing.T) {
	assert.Equal(t, "", limitClause(0))
	assert.Equal(t, " LIMIT 5", limitClause(5))
}
