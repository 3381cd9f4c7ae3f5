package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/service"
)

// DonorHandler serves the /v1/donor routes.  All methods assume the
// DONOR role and a resolved principal.
type DonorHandler struct {
	Matcher *service.DonationMatcher
	Donors  *repository.DonorRepo
	Log     *zap.Logger
}

func NewDonorHandler(m *service.DonationMatcher, donors *repository.DonorRepo, log *zap.Logger) *DonorHandler {
	if m == nil || donors == nil {
		panic("nil dependency passed to NewDonorHandler")
	}
	return &DonorHandler{Matcher: m, Donors: donors, Log: log}
}

// Dashboard handles GET /v1/donor/dashboard.
func (h *DonorHandler) Dashboard(c echo.Context) error {
	p, ok := donorOf(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Matcher.Dashboard(ctx, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Profile handles GET /v1/donor/profile.
func (h *DonorHandler) Profile(c echo.Context) error {
	p, ok := donorOf(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": p.User, "donor": p.Donor})
}

type donorProfileReq struct {
	BloodType        string     `json:"blood_type"`
	IsAvailable      *bool      `json:"is_available"`
	LastDonationDate *time.Time `json:"last_donation_date"`
}

// UpdateProfile handles PUT /v1/donor/profile.  Omitted is_available and
// last_donation_date keep their current values.
func (h *DonorHandler) UpdateProfile(c echo.Context) error {
	p, ok := donorOf(c)
	if !ok {
		return unauthorized(c)
	}
	var req donorProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in := model.DonorProfileInput{
		BloodType:        req.BloodType,
		IsAvailable:      p.Donor.IsAvailable,
		LastDonationDate: req.LastDonationDate,
	}
	if req.IsAvailable != nil {
		in.IsAvailable = *req.IsAvailable
	}
	if in.LastDonationDate == nil {
		in.LastDonationDate = p.Donor.LastDonationDate
	}
	donor := p.Donor
	if err := donor.ApplyProfile(in); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Donors.Update(ctx, donor); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, donor)
}

// Requests handles GET /v1/donor/requests: the Open requests matching the
// donor's blood type, most recent first.
func (h *DonorHandler) Requests(c echo.Context) error {
	p, ok := donorOf(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Matcher.OpenRequests(ctx, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blood_type": p.Donor.BloodType, "requests": list})
}

// Accept handles POST /v1/donor/requests/:id/accept.
func (h *DonorHandler) Accept(c echo.Context) error {
	p, ok := donorOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Matcher.Accept(ctx, p, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("donation accepted",
		zap.Uint64("donation_id", d.ID),
		zap.Uint64("donor_id", d.DonorID),
		zap.Uint64("request_id", d.BloodRequestID))
	return c.JSON(http.StatusCreated, d)
}

// Donations handles GET /v1/donor/donations.
func (h *DonorHandler) Donations(c echo.Context) error {
	p, ok := donorOf(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Matcher.MyDonations(ctx, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"donations": list})
}
