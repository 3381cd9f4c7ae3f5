package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/queue"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
)

// DonationMatcher lets donors accept open requests and administrators
// settle the resulting donations.
type DonationMatcher struct {
	Donors    *repository.DonorRepo
	Requests  *repository.BloodRequestRepo
	Donations *repository.DonationRepo
	Events    queue.Publisher
	Rules     model.MatchRules
	Log       *zap.Logger
	Now       func() time.Time
}

func NewDonationMatcher(donors *repository.DonorRepo, requests *repository.BloodRequestRepo, donations *repository.DonationRepo, events queue.Publisher, rules model.MatchRules, log *zap.Logger) *DonationMatcher {
	if donors == nil || requests == nil || donations == nil {
		panic("nil repository passed to NewDonationMatcher")
	}
	return &DonationMatcher{
		Donors:    donors,
		Requests:  requests,
		Donations: donations,
		Events:    events,
		Rules:     rules,
		Log:       log,
		Now:       nowUTC,
	}
}

// Accept pledges the donor to the request.  Donor and request rows are
// locked before the eligibility check so that two donors racing for the
// last unit cannot both succeed.  No donation is stored unless every check
// passes.
func (m *DonationMatcher) Accept(ctx context.Context, p model.DonorPrincipal, requestID uint64) (model.Donation, error) {
	now := m.Now()
	var donation model.Donation
	var req model.BloodRequest
	err := inTx(ctx, m.Donations.DB(), func(tx *sql.Tx) error {
		donor, err := m.Donors.LockByIDTx(ctx, tx, p.Donor.ID)
		if err != nil {
			return err
		}
		req, err = m.Requests.LockByIDTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		pledged, err := m.Donations.PledgedQuantityTx(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		qty, err := model.CheckEligibility(donor, req, pledged, m.Rules)
		if err != nil {
			return err
		}
		donation = model.NewPendingDonation(donor, req, qty, now)
		return m.Donations.CreateTx(ctx, tx, &donation)
	})
	if err != nil {
		return model.Donation{}, err
	}
	publish(ctx, m.Events, m.Log, queue.QueueDonationAccepted, queue.DonationAcceptedEvent{
		Meta:         queue.NewMeta(now),
		DonationID:   donation.ID,
		DonorID:      donation.DonorID,
		RequestID:    donation.BloodRequestID,
		BloodType:    string(req.BloodType),
		Quantity:     donation.Quantity,
		DonationDate: donation.DonationDate.UTC().Format(time.RFC3339),
	})
	return donation, nil
}

// Complete records the outcome of a donation.  It does not touch the
// request status or the donor's last donation date.
func (m *DonationMatcher) Complete(ctx context.Context, _ model.AdminPrincipal, donationID uint64, status string) (model.Donation, error) {
	to, err := model.ParseDonationStatus(status)
	if err != nil {
		return model.Donation{}, err
	}
	var d model.Donation
	var from model.DonationStatus
	err = inTx(ctx, m.Donations.DB(), func(tx *sql.Tx) error {
		var err error
		d, err = m.Donations.LockByIDTx(ctx, tx, donationID)
		if err != nil {
			return err
		}
		from = d.Status
		if err := d.Complete(to); err != nil {
			return err
		}
		return m.Donations.UpdateStatusTx(ctx, tx, d)
	})
	if err != nil {
		return model.Donation{}, err
	}
	publish(ctx, m.Events, m.Log, queue.QueueDonationStatusChanged, queue.DonationStatusChangedEvent{
		Meta:       queue.NewMeta(m.Now()),
		DonationID: d.ID,
		From:       string(from),
		To:         string(d.Status),
	})
	return d, nil
}

// OpenRequests lists the Open requests matching the donor's blood type.
func (m *DonationMatcher) OpenRequests(ctx context.Context, p model.DonorPrincipal) ([]repository.RequestListing, error) {
	return m.Requests.ListOpenByBloodType(ctx, p.Donor.BloodType)
}

// MyDonations lists every donation made by the donor, newest first.
func (m *DonationMatcher) MyDonations(ctx context.Context, p model.DonorPrincipal) ([]repository.DonationDetail, error) {
	return m.Donations.ListByDonor(ctx, p.Donor.ID, 0)
}

// DonorDashboard shows the donor's profile with their latest donations.
type DonorDashboard struct {
	User      model.User                  `json:"user"`
	Donor     model.Donor                 `json:"donor"`
	Donations []repository.DonationDetail `json:"recent_donations"`
}

func (m *DonationMatcher) Dashboard(ctx context.Context, p model.DonorPrincipal) (DonorDashboard, error) {
	recent, err := m.Donations.ListByDonor(ctx, p.Donor.ID, RecentLimit)
	if err != nil {
		return DonorDashboard{}, err
	}
	return DonorDashboard{User: p.User, Donor: p.Donor, Donations: recent}, nil
}
