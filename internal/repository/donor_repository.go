package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

// DonorRepo persists donor profiles.
type DonorRepo struct{ db *sql.DB }

func NewDonorRepo(db *sql.DB) *DonorRepo { return &DonorRepo{db: db} }

const donorColumns = "id,user_id,blood_type,is_available,last_donation_date,created_at"

func scanDonor(row interface{ Scan(...any) error }) (model.Donor, error) {
	var d model.Donor
	var bt string
	var last sql.NullTime
	if err := row.Scan(&d.ID, &d.UserID, &bt, &d.IsAvailable, &last, &d.CreatedAt); err != nil {
		return model.Donor{}, err
	}
	d.BloodType = model.BloodType(bt)
	d.LastDonationDate = timePtr(last)
	return d, nil
}

// CreateTx inserts d inside tx and populates d.ID.
func (r *DonorRepo) CreateTx(ctx context.Context, tx *sql.Tx, d *model.Donor) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO donors (user_id, blood_type, is_available, last_donation_date) VALUES (?,?,?,?)",
		d.UserID, string(d.BloodType), d.IsAvailable, nullTime(d.LastDonationDate))
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
	d.ID = uint64(id)
	return nil
}

// GetByUserID loads the donor profile owned by userID.
func (r *DonorRepo) GetByUserID(ctx context.Context, userID uint64) (model.Donor, error) {
	d, err := scanDonor(r.db.QueryRowContext(ctx,
		"SELECT "+donorColumns+" FROM donors WHERE user_id=? LIMIT 1", userID))
	return d, notFound(err)
}

// LockByIDTx reads a donor with SELECT ... FOR UPDATE so that availability
// cannot change until tx ends.
func (r *DonorRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Donor, error) {
	d, err := scanDonor(tx.QueryRowContext(ctx,
		"SELECT "+donorColumns+" FROM donors WHERE id=? FOR UPDATE", id))
	return d, notFound(err)
}

// Update writes the editable profile fields of d.
func (r *DonorRepo) Update(ctx context.Context, d model.Donor) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE donors SET blood_type=?, is_available=?, last_donation_date=? WHERE id=?",
		string(d.BloodType), d.IsAvailable, nullTime(d.LastDonationDate), d.ID)
	return err
}

// DonorSummary is a donor row joined with its account and donation count,
// used by the admin listing.
type DonorSummary struct {
	model.Donor
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	City          string `json:"city"`
	DonationCount int    `json:"donation_count"`
}

// ListSummaries returns every donor with account details, newest first.
func (r *DonorRepo) ListSummaries(ctx context.Context) ([]DonorSummary, error) {
	const q = `SELECT d.id, d.user_id, d.blood_type, d.is_available, d.last_donation_date, d.created_at,
                      u.email, u.first_name, u.last_name, u.city,
                      (SELECT COUNT(*) FROM donations dn WHERE dn.donor_id = d.id)
               FROM donors d
               JOIN users u ON u.id = d.user_id
               ORDER BY d.created_at DESC, d.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DonorSummary{}
	for rows.Next() {
		var s DonorSummary
		var bt, first, last string
		var lastDonation sql.NullTime
		if err := rows.Scan(&s.ID, &s.UserID, &bt, &s.IsAvailable, &lastDonation, &s.CreatedAt,
			&s.Email, &first, &last, &s.City, &s.DonationCount); err != nil {
			return nil, err
		}
		s.BloodType = model.BloodType(bt)
		s.LastDonationDate = timePtr(lastDonation)
		s.FullName = model.User{FirstName: first, LastName: last}.FullName()
		out = append(out, s)
	}
	return out, rows.Err()
}
