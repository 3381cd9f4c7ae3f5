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

// RequestLifecycle creates blood requests and moves them between Open,
// Fulfilled and Cancelled.
type RequestLifecycle struct {
	Requests  *repository.BloodRequestRepo
	Donations *repository.DonationRepo
	Events    queue.Publisher
	Policy    model.TransitionPolicy
	Log       *zap.Logger
	Now       func() time.Time
}

func NewRequestLifecycle(requests *repository.BloodRequestRepo, donations *repository.DonationRepo, events queue.Publisher, policy model.TransitionPolicy, log *zap.Logger) *RequestLifecycle {
	if requests == nil || donations == nil {
		panic("nil repository passed to NewRequestLifecycle")
	}
	return &RequestLifecycle{
		Requests:  requests,
		Donations: donations,
		Events:    events,
		Policy:    policy,
		Log:       log,
		Now:       nowUTC,
	}
}

// Create validates in and stores a new Open request for the hospital.
func (s *RequestLifecycle) Create(ctx context.Context, h model.HospitalPrincipal, in model.NewRequestInput) (model.BloodRequest, error) {
	req, err := model.NewBloodRequest(h.Hospital.ID, in, s.Now())
	if err != nil {
		return model.BloodRequest{}, err
	}
	if err := s.Requests.Create(ctx, &req); err != nil {
		return model.BloodRequest{}, err
	}
	publish(ctx, s.Events, s.Log, queue.QueueRequestCreated, queue.RequestCreatedEvent{
		Meta:       queue.NewMeta(req.RequestDate),
		RequestID:  req.ID,
		HospitalID: req.HospitalID,
		BloodType:  string(req.BloodType),
		Quantity:   req.Quantity,
		Urgency:    string(req.Urgency),
	})
	return req, nil
}

// UpdateStatus sets the status of one of the hospital's requests.  The
// row is locked for the duration of the change so that it serializes with
// concurrent accepts.
func (s *RequestLifecycle) UpdateStatus(ctx context.Context, h model.HospitalPrincipal, requestID uint64, status string) (model.BloodRequest, error) {
	to, err := model.ParseRequestStatus(status)
	if err != nil {
		return model.BloodRequest{}, err
	}
	now := s.Now()
	var req model.BloodRequest
	var from model.RequestStatus
	err = inTx(ctx, s.Requests.DB(), func(tx *sql.Tx) error {
		var err error
		req, err = s.Requests.LockByIDTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.HospitalID != h.Hospital.ID {
			return repository.ErrForbidden
		}
		from = req.Status
		if err := req.Transition(to, now, s.Policy); err != nil {
			return err
		}
		return s.Requests.UpdateStatusTx(ctx, tx, req)
	})
	if err != nil {
		return model.BloodRequest{}, err
	}
	publish(ctx, s.Events, s.Log, queue.QueueRequestStatusChanged, queue.RequestStatusChangedEvent{
		Meta:       queue.NewMeta(now),
		RequestID:  req.ID,
		HospitalID: req.HospitalID,
		From:       string(from),
		To:         string(req.Status),
	})
	return req, nil
}

// ListOpenForBloodType returns the Open requests needing bt, most recent
// first.  Listing never changes a request.
func (s *RequestLifecycle) ListOpenForBloodType(ctx context.Context, bt model.BloodType) ([]repository.RequestListing, error) {
	return s.Requests.ListOpenByBloodType(ctx, bt)
}

// ListForHospital returns the hospital's own requests, newest first.
func (s *RequestLifecycle) ListForHospital(ctx context.Context, h model.HospitalPrincipal) ([]repository.RequestListing, error) {
	return s.Requests.ListByHospital(ctx, h.Hospital.ID, 0)
}

// RequestDetails is a request together with the donations pledged to it.
type RequestDetails struct {
	Request   model.BloodRequest          `json:"request"`
	Donations []repository.DonationDetail `json:"donations"`
}

// Details loads one of the hospital's requests with its donations.
func (s *RequestLifecycle) Details(ctx context.Context, h model.HospitalPrincipal, requestID uint64) (RequestDetails, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return RequestDetails{}, err
	}
	if req.HospitalID != h.Hospital.ID {
		return RequestDetails{}, repository.ErrForbidden
	}
	donations, err := s.Donations.ListByRequest(ctx, requestID)
	if err != nil {
		return RequestDetails{}, err
	}
	return RequestDetails{Request: req, Donations: donations}, nil
}

// HospitalDashboard summarizes a hospital's requests.
type HospitalDashboard struct {
	Hospital       model.Hospital              `json:"hospital"`
	OpenCount      int                         `json:"open_count"`
	FulfilledCount int                         `json:"fulfilled_count"`
	CancelledCount int                         `json:"cancelled_count"`
	Recent         []repository.RequestListing `json:"recent_requests"`
}

func (s *RequestLifecycle) Dashboard(ctx context.Context, h model.HospitalPrincipal) (HospitalDashboard, error) {
	counts, err := s.Requests.CountByHospital(ctx, h.Hospital.ID)
	if err != nil {
		return HospitalDashboard{}, err
	}
	recent, err := s.Requests.ListByHospital(ctx, h.Hospital.ID, RecentLimit)
	if err != nil {
		return HospitalDashboard{}, err
	}
	return HospitalDashboard{
		Hospital:       h.Hospital,
		OpenCount:      counts[model.RequestOpen],
		FulfilledCount: counts[model.RequestFulfilled],
		CancelledCount: counts[model.RequestCancelled],
		Recent:         recent,
	}, nil
}
