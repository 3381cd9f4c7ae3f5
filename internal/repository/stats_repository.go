package repository

import (
	"context"
	"database/sql"
)

// Stats aggregates the counters shown on the home page and admin dashboard.
type Stats struct {
	TotalUsers         int `json:"total_users"`
	TotalDonors        int `json:"total_donors"`
	TotalHospitals     int `json:"total_hospitals"`
	TotalRequests      int `json:"total_requests"`
	OpenRequests       int `json:"open_requests"`
	CompletedDonations int `json:"completed_donations"`
}

type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Load computes all counters in one round trip.
func (r *StatsRepo) Load(ctx context.Context) (Stats, error) {
	const q = `SELECT
                 (SELECT COUNT(*) FROM users),
                 (SELECT COUNT(*) FROM donors),
                 (SELECT COUNT(*) FROM hospitals),
                 (SELECT COUNT(*) FROM blood_requests),
                 (SELECT COUNT(*) FROM blood_requests WHERE status = 'Open'),
                 (SELECT COUNT(*) FROM donations WHERE status = 'Completed')`
	var s Stats
	err := r.db.QueryRowContext(ctx, q).Scan(&s.TotalUsers, &s.TotalDonors, &s.TotalHospitals,
		&s.TotalRequests, &s.OpenRequests, &s.CompletedDonations)
	return s, err
}
