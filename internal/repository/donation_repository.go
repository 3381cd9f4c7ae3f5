package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

// DonationRepo provides persistence for donations.
type DonationRepo struct{ db *sql.DB }

func NewDonationRepo(db *sql.DB) *DonationRepo { return &DonationRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need a transaction.
func (r *DonationRepo) DB() *sql.DB { return r.db }

const donationColumns = "dn.id, dn.donor_id, dn.blood_request_id, dn.donation_date, dn.quantity, dn.status, dn.notes, dn.created_at"

func scanDonation(row interface{ Scan(...any) error }, extra ...any) (model.Donation, error) {
	var d model.Donation
	var st string
	var notes sql.NullString
	dest := append([]any{&d.ID, &d.DonorID, &d.BloodRequestID, &d.DonationDate, &d.Quantity, &st, &notes, &d.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Donation{}, err
	}
	d.Status = model.DonationStatus(st)
	d.Notes = strPtr(notes)
	return d, nil
}

// CreateTx inserts d inside tx and populates d.ID and d.CreatedAt.
func (r *DonationRepo) CreateTx(ctx context.Context, tx *sql.Tx, d *model.Donation) error {
	var notes sql.NullString
	if d.Notes != nil {
		notes = sql.NullString{String: *d.Notes, Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO donations (donor_id, blood_request_id, donation_date, quantity, status, notes)
         VALUES (?, ?, ?, ?, ?, ?)`,
		d.DonorID, d.BloodRequestID, d.DonationDate, d.Quantity, string(d.Status), notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return tx.QueryRowContext(ctx, "SELECT created_at FROM donations WHERE id = ?", d.ID).Scan(&d.CreatedAt)
}

// PledgedQuantityTx sums the quantity of every non-cancelled donation for
// requestID.  Call it after locking the request row.
func (r *DonationRepo) PledgedQuantityTx(ctx context.Context, tx *sql.Tx, requestID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(quantity), 0) FROM donations WHERE blood_request_id = ? AND status <> 'Cancelled'",
		requestID).Scan(&n)
	return n, err
}

// LockByIDTx loads a donation with SELECT ... FOR UPDATE.
func (r *DonationRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Donation, error) {
	d, err := scanDonation(tx.QueryRowContext(ctx,
		"SELECT "+donationColumns+" FROM donations dn WHERE dn.id = ? FOR UPDATE", id))
	return d, notFound(err)
}

// UpdateStatusTx persists d.Status.
func (r *DonationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, d model.Donation) error {
	_, err := tx.ExecContext(ctx, "UPDATE donations SET status = ? WHERE id = ?", string(d.Status), d.ID)
	return err
}

// DonationDetail is a donation joined with the request, hospital and donor
// it links.
type DonationDetail struct {
	model.Donation
	BloodType     model.BloodType     `json:"blood_type"`
	Urgency       model.Urgency       `json:"urgency"`
	RequestStatus model.RequestStatus `json:"request_status"`
	HospitalName  string              `json:"hospital_name"`
	DonorName     string              `json:"donor_name"`
	DonorEmail    string              `json:"donor_email"`
}

const detailSelect = `SELECT ` + donationColumns + `,
                      br.blood_type, br.urgency, br.status, h.name,
                      du.first_name, du.last_name, du.email
               FROM donations dn
               JOIN blood_requests br ON br.id = dn.blood_request_id
               JOIN hospitals h ON h.id = br.hospital_id
               JOIN donors d ON d.id = dn.donor_id
               JOIN users du ON du.id = d.user_id`

func (r *DonationRepo) details(ctx context.Context, q string, args ...any) ([]DonationDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DonationDetail{}
	for rows.Next() {
		var dd DonationDetail
		var bt, urg, st, first, last string
		d, err := scanDonation(rows, &bt, &urg, &st, &dd.HospitalName, &first, &last, &dd.DonorEmail)
		if err != nil {
			return nil, err
		}
		dd.Donation = d
		dd.BloodType = model.BloodType(bt)
		dd.Urgency = model.Urgency(urg)
		dd.RequestStatus = model.RequestStatus(st)
		dd.DonorName = model.User{FirstName: first, LastName: last}.FullName()
		out = append(out, dd)
	}
	return out, rows.Err()
}

// ListByDonor returns the donor's donations, newest first.  A positive
// limit caps the result.
func (r *DonationRepo) ListByDonor(ctx context.Context, donorID uint64, limit int) ([]DonationDetail, error) {
	return r.details(ctx, detailSelect+`
               WHERE dn.donor_id = ?
               ORDER BY dn.created_at DESC, dn.id DESC`+limitClause(limit), donorID)
}

// ListByRequest returns the donations made towards a request.
func (r *DonationRepo) ListByRequest(ctx context.Context, requestID uint64) ([]DonationDetail, error) {
	return r.details(ctx, detailSelect+`
               WHERE dn.blood_request_id = ?
               ORDER BY dn.created_at DESC, dn.id DESC`, requestID)
}

// ListAll returns every donation, newest first.  A positive limit caps the
// result.
func (r *DonationRepo) ListAll(ctx context.Context, limit int) ([]DonationDetail, error) {
	return r.details(ctx, detailSelect+`
               ORDER BY dn.created_at DESC, dn.id DESC`+limitClause(limit))
}

// ListBetween returns donations created in [from, to), oldest first.  Used
// by the spreadsheet export.
func (r *DonationRepo) ListBetween(ctx context.Context, from, to time.Time) ([]DonationDetail, error) {
	return r.details(ctx, detailSelect+`
               WHERE dn.created_at >= ? AND dn.created_at < ?
               ORDER BY dn.created_at ASC, dn.id ASC`, from, to)
}
