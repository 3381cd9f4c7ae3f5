package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

// HospitalRepo persists hospital profiles.
type HospitalRepo struct{ db *sql.DB }

func NewHospitalRepo(db *sql.DB) *HospitalRepo { return &HospitalRepo{db: db} }

const hospitalColumns = "id,user_id,name,address,phone,created_at"

func scanHospital(row interface{ Scan(...any) error }) (model.Hospital, error) {
	var h model.Hospital
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Address, &h.Phone, &h.CreatedAt)
	return h, err
}

// CreateTx inserts h inside tx and populates h.ID.
func (r *HospitalRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.Hospital) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO hospitals (user_id, name, address, phone) VALUES (?,?,?,?)",
		h.UserID, h.Name, h.Address, h.Phone)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// GetByUserID loads the hospital profile owned by userID.
func (r *HospitalRepo) GetByUserID(ctx context.Context, userID uint64) (model.Hospital, error) {
	h, err := scanHospital(r.db.QueryRowContext(ctx,
		"SELECT "+hospitalColumns+" FROM hospitals WHERE user_id=? LIMIT 1", userID))
	return h, notFound(err)
}

// Update writes name, address and phone.
func (r *HospitalRepo) Update(ctx context.Context, h model.Hospital) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE hospitals SET name=?, address=?, phone=? WHERE id=?",
		h.Name, h.Address, h.Phone, h.ID)
	return err
}

// HospitalSummary is a hospital joined with its account and request count.
type HospitalSummary struct {
	model.Hospital
	Email        string `json:"email"`
	ContactName  string `json:"contact_name"`
	City         string `json:"city"`
	RequestCount int    `json:"request_count"`
}

// ListSummaries returns every hospital with account details, newest first.
func (r *HospitalRepo) ListSummaries(ctx context.Context) ([]HospitalSummary, error) {
	const q = `SELECT h.id, h.user_id, h.name, h.address, h.phone, h.created_at,
                      u.email, u.first_name, u.last_name, u.city,
                      (SELECT COUNT(*) FROM blood_requests br WHERE br.hospital_id = h.id)
               FROM hospitals h
               JOIN users u ON u.id = h.user_id
               ORDER BY h.created_at DESC, h.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []HospitalSummary{}
	for rows.Next() {
		var s HospitalSummary
		var first, last string
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Address, &s.Phone, &s.CreatedAt,
			&s.Email, &first, &last, &s.City, &s.RequestCount); err != nil {
			return nil, err
		}
		s.ContactName = model.User{FirstName: first, LastName: last}.FullName()
		out = append(out, s)
	}
	return out, rows.Err()
}
