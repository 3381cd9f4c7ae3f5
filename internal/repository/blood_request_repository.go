package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

// BloodRequestRepo provides persistence for blood requests.  Status
// changes go through UpdateStatusTx so that the caller's transaction holds
// the row lock taken by LockByIDTx.
type BloodRequestRepo struct{ db *sql.DB }

func NewBloodRequestRepo(db *sql.DB) *BloodRequestRepo { return &BloodRequestRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need a transaction.
func (r *BloodRequestRepo) DB() *sql.DB { return r.db }

const requestColumns = "br.id, br.hospital_id, br.blood_type, br.quantity, br.urgency, br.description, br.status, br.request_date, br.fulfilled_date, br.created_at"

// scanRequest reads requestColumns followed by any extra destinations.
func scanRequest(row interface{ Scan(...any) error }, extra ...any) (model.BloodRequest, error) {
	var br model.BloodRequest
	var bt, urg, st string
	var fulfilled sql.NullTime
	dest := append([]any{&br.ID, &br.HospitalID, &bt, &br.Quantity, &urg, &br.Description, &st, &br.RequestDate, &fulfilled, &br.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.BloodRequest{}, err
	}
	br.BloodType = model.BloodType(bt)
	br.Urgency = model.Urgency(urg)
	br.Status = model.RequestStatus(st)
	br.FulfilledDate = timePtr(fulfilled)
	return br, nil
}

// Create inserts req and reads back the generated id and created_at.
func (r *BloodRequestRepo) Create(ctx context.Context, req *model.BloodRequest) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO blood_requests (hospital_id, blood_type, quantity, urgency, description, status, request_date)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.HospitalID, string(req.BloodType), req.Quantity, string(req.Urgency), req.Description, string(req.Status), req.RequestDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT created_at FROM blood_requests WHERE id = ?", req.ID).Scan(&req.CreatedAt)
}

// GetByID loads a single request.
func (r *BloodRequestRepo) GetByID(ctx context.Context, id uint64) (model.BloodRequest, error) {
	br, err := scanRequest(r.db.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM blood_requests br WHERE br.id = ?", id))
	return br, notFound(err)
}

// LockByIDTx loads a request with SELECT ... FOR UPDATE.  Concurrent
// accepts and status updates on the same request serialize on this lock.
func (r *BloodRequestRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.BloodRequest, error) {
	br, err := scanRequest(tx.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM blood_requests br WHERE br.id = ? FOR UPDATE", id))
	return br, notFound(err)
}

// UpdateStatusTx persists status and fulfilled_date.
func (r *BloodRequestRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, req model.BloodRequest) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE blood_requests SET status = ?, fulfilled_date = ? WHERE id = ?",
		string(req.Status), nullTime(req.FulfilledDate), req.ID)
	return err
}

// RequestListing is a request joined with its hospital and the units
// already pledged by non-cancelled donations.
type RequestListing struct {
	model.BloodRequest
	HospitalName  string `json:"hospital_name"`
	HospitalPhone string `json:"hospital_phone"`
	City          string `json:"city"`
	Pledged       int    `json:"pledged"`
}

const listingSelect = `SELECT ` + requestColumns + `, h.name, h.phone, u.city,
                      COALESCE((SELECT SUM(d.quantity) FROM donations d
                                WHERE d.blood_request_id = br.id AND d.status <> 'Cancelled'), 0)
               FROM blood_requests br
               JOIN hospitals h ON h.id = br.hospital_id
               JOIN users u ON u.id = h.user_id`

func (r *BloodRequestRepo) listings(ctx context.Context, q string, args ...any) ([]RequestListing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RequestListing{}
	for rows.Next() {
		var l RequestListing
		br, err := scanRequest(rows, &l.HospitalName, &l.HospitalPhone, &l.City, &l.Pledged)
		if err != nil {
			return nil, err
		}
		l.BloodRequest = br
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListOpenByBloodType returns Open requests needing bt, most recent
// request_date first.  It is read-only.
func (r *BloodRequestRepo) ListOpenByBloodType(ctx context.Context, bt model.BloodType) ([]RequestListing, error) {
	return r.listings(ctx, listingSelect+`
               WHERE br.status = 'Open' AND br.blood_type = ?
               ORDER BY br.request_date DESC, br.id DESC`, string(bt))
}

// ListByHospital returns the hospital's requests, newest first.  A positive
// limit caps the result.
func (r *BloodRequestRepo) ListByHospital(ctx context.Context, hospitalID uint64, limit int) ([]RequestListing, error) {
	return r.listings(ctx, listingSelect+`
               WHERE br.hospital_id = ?
               ORDER BY br.created_at DESC, br.id DESC`+limitClause(limit), hospitalID)
}

// ListAll returns every request, newest first.
func (r *BloodRequestRepo) ListAll(ctx context.Context) ([]RequestListing, error) {
	return r.listings(ctx, listingSelect+`
               ORDER BY br.created_at DESC, br.id DESC`)
}

// CountByHospital returns the number of the hospital's requests per status.
func (r *BloodRequestRepo) CountByHospital(ctx context.Context, hospitalID uint64) (map[model.RequestStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM blood_requests WHERE hospital_id = ? GROUP BY status", hospitalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[model.RequestStatus]int{}
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[model.RequestStatus(st)] = n
	}
	return out, rows.Err()
}
