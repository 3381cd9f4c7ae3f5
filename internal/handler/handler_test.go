package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/middleware"
	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/queue"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/service"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// call runs h with p installed as the authenticated principal.
func call(h echo.HandlerFunc, p model.Principal, method, body string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if p != nil {
		c.Set(middleware.KeyUserID, p.Account().ID)
		c.Set(middleware.KeyRole, p.Role())
		c.Set(middleware.KeyPrincipal, p)
	}
	_ = h(c)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&model.ValidationError{Field: "quantity", Message: "must be greater than zero"}, http.StatusBadRequest},
		{&model.IneligibleError{Reason: model.ReasonDonorUnavailable}, http.StatusConflict},
		{fmt.Errorf("update: %w", model.ErrInvalidTransition), http.StatusConflict},
		{repository.ErrNotFound, http.StatusNotFound},
		{repository.ErrForbidden, http.StatusForbidden},
		{repository.ErrEmailExists, http.StatusConflict},
		{service.ErrBadCredentials, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := call(func(c echo.Context) error { return respondError(c, zap.NewNop(), tc.err) }, nil, http.MethodGet, "", nil)
		assert.Equal(t, tc.status, rec.Code, "%v", tc.err)
	}

	rec := call(func(c echo.Context) error {
		return respondError(c, zap.NewNop(), &model.IneligibleError{Reason: model.ReasonRequestNotOpen})
	}, nil, http.MethodGet, "", nil)
	body := decode(t, rec)
	assert.Equal(t, "donor not eligible", body["error"])
	assert.Equal(t, "request_not_open", body["reason"])
}

var requestCols = []string{"id", "hospital_id", "blood_type", "quantity", "urgency", "description", "status", "request_date", "fulfilled_date", "created_at"}

func newDonorHandler(db *sql.DB) *DonorHandler {
	m := service.NewDonationMatcher(repository.NewDonorRepo(db), repository.NewBloodRequestRepo(db), repository.NewDonationRepo(db), queue.NopPublisher{}, model.MatchRules{}, zap.NewNop())
	return NewDonorHandler(m, repository.NewDonorRepo(db), zap.NewNop())
}

func TestDonorAccept_RequestNotOpen(t *testing.T) {
	db, mock := setupMockDB(t)
	h := newDonorHandler(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM donors WHERE id=\? FOR UPDATE`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "blood_type", "is_available", "last_donation_date", "created_at"}).
			AddRow(4, 40, "O+", true, nil, now))
	mock.ExpectQuery(`FROM blood_requests br WHERE br.id = \? FOR UPDATE`).WithArgs(9).
		WillReturnRows(sqlmock.NewRows(requestCols).AddRow(9, 7, "O+", 2, "Normal", "d", "Cancelled", now, nil, now))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM donations`).WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectRollback()

	p := model.DonorPrincipal{User: model.User{ID: 40}, Donor: model.Donor{ID: 4, BloodType: model.BloodOPos}}
	rec := call(h.Accept, p, http.MethodPost, "", map[string]string{"id": "9"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "request_not_open", decode(t, rec)["reason"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorAccept_BadID(t *testing.T) {
	db, _ := setupMockDB(t)
	h := newDonorHandler(db)
	p := model.DonorPrincipal{User: model.User{ID: 40}, Donor: model.Donor{ID: 4}}
	rec := call(h.Accept, p, http.MethodPost, "", map[string]string{"id": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDonorRoutesRequireDonorPrincipal(t *testing.T) {
	db, _ := setupMockDB(t)
	h := newDonorHandler(db)
	hp := model.HospitalPrincipal{User: model.User{ID: 1}}
	assert.Equal(t, http.StatusUnauthorized, call(h.Dashboard, hp, http.MethodGet, "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(h.Accept, nil, http.MethodPost, "", map[string]string{"id": "9"}).Code)
}

func TestDonorUpdateProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	h := newDonorHandler(db)

	mock.ExpectExec(`UPDATE donors SET blood_type=\?, is_available=\?, last_donation_date=\? WHERE id=\?`).
		WithArgs("A-", true, nil, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := model.DonorPrincipal{User: model.User{ID: 40}, Donor: model.Donor{ID: 4, BloodType: model.BloodOPos, IsAvailable: true}}
	rec := call(h.UpdateProfile, p, http.MethodPut, `{"blood_type":"a-"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "A-", decode(t, rec)["blood_type"])
	assert.NoError(t, mock.ExpectationsWereMet())

	rec = call(h.UpdateProfile, p, http.MethodPut, `{"blood_type":"Q"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "blood_type", decode(t, rec)["field"])
}

func newHospitalHandler(db *sql.DB, policy model.TransitionPolicy) *HospitalHandler {
	l := service.NewRequestLifecycle(repository.NewBloodRequestRepo(db), repository.NewDonationRepo(db), queue.NopPublisher{}, policy, zap.NewNop())
	return NewHospitalHandler(l, repository.NewHospitalRepo(db), zap.NewNop())
}

func TestHospitalCreateRequest_Validation(t *testing.T) {
	db, mock := setupMockDB(t)
	h := newHospitalHandler(db, model.PolicyPermissive)
	p := model.HospitalPrincipal{User: model.User{ID: 2}, Hospital: model.Hospital{ID: 7}}

	rec := call(h.CreateRequest, p, http.MethodPost, `{"blood_type":"O+","quantity":0,"description":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity", decode(t, rec)["field"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHospitalCreateRequest(t *testing.T) {
	db, mock := setupMockDB(t)
	h := newHospitalHandler(db, model.PolicyPermissive)
	p := model.HospitalPrincipal{User: model.User{ID: 2}, Hospital: model.Hospital{ID: 7}}

	mock.ExpectExec(`INSERT INTO blood_requests`).
		WithArgs(7, "B-", 3, "Critical", "trauma", "Open", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(`SELECT created_at FROM blood_requests`).WithArgs(12).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	rec := call(h.CreateRequest, p, http.MethodPost, `{"blood_type":"b-","quantity":3,"urgency":"critical","description":"trauma"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Open", body["status"])
	assert.Equal(t, float64(12), body["id"])
	assert.NotContains(t, body, "fulfilled_date")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHospitalUpdateStatus_OtherHospital(t *testing.T) {
	db, mock := setupMockDB(t)
	h := newHospitalHandler(db, model.PolicyPermissive)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM blood_requests br WHERE br.id = \? FOR UPDATE`).WithArgs(9).
		WillReturnRows(sqlmock.NewRows(requestCols).AddRow(9, 8, "O+", 2, "Normal", "d", "Open", now, nil, now))
	mock.ExpectRollback()

	p := model.HospitalPrincipal{User: model.User{ID: 2}, Hospital: model.Hospital{ID: 7}}
	rec := call(h.UpdateRequestStatus, p, http.MethodPatch, `{"status":"Fulfilled"}`, map[string]string{"id": "9"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHospitalUpdateStatus_StrictConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	h := newHospitalHandler(db, model.PolicyStrict)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM blood_requests br WHERE br.id = \? FOR UPDATE`).WithArgs(9).
		WillReturnRows(sqlmock.NewRows(requestCols).AddRow(9, 7, "O+", 2, "Normal", "d", "Fulfilled", now, now, now))
	mock.ExpectRollback()

	p := model.HospitalPrincipal{User: model.User{ID: 2}, Hospital: model.Hospital{ID: 7}}
	rec := call(h.UpdateRequestStatus, p, http.MethodPatch, `{"status":"Open"}`, map[string]string{"id": "9"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminDeleteUser_Self(t *testing.T) {
	db, mock := setupMockDB(t)
	h := &AdminHandler{Users: repository.NewUserRepo(db), Log: zap.NewNop()}
	p := model.AdminPrincipal{User: model.User{ID: 1, Role: model.RoleAdmin}}

	rec := call(h.DeleteUser, p, http.MethodDelete, "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mock.ExpectExec(`DELETE FROM users WHERE id=\?`).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 0))
	rec = call(h.DeleteUser, p, http.MethodDelete, "", map[string]string{"id": "5"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRange(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	e := echo.New()
	ctx := func(q string) echo.Context {
		return e.NewContext(httptest.NewRequest(http.MethodGet, "/?"+q, nil), httptest.NewRecorder())
	}

	from, to, err := exportRange(ctx(""), now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 8, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), to)

	from, to, err = exportRange(ctx("from=2025-01-01&to=2025-01-31"), now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), to)

	_, _, err = exportRange(ctx("from=2025-02-01&to=2025-01-31"), now)
	assert.Error(t, err)
	_, _, err = exportRange(ctx("from=yesterday"), now)
	assert.Error(t, err)
}
