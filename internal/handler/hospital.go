package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/service"
)

// HospitalHandler serves the /v1/hospital routes.
type HospitalHandler struct {
	Lifecycle *service.RequestLifecycle
	Hospitals *repository.HospitalRepo
	Log       *zap.Logger
}

func NewHospitalHandler(l *service.RequestLifecycle, hospitals *repository.HospitalRepo, log *zap.Logger) *HospitalHandler {
	if l == nil || hospitals == nil {
		panic("nil dependency passed to NewHospitalHandler")
	}
	return &HospitalHandler{Lifecycle: l, Hospitals: hospitals, Log: log}
}

// Dashboard handles GET /v1/hospital/dashboard.
func (h *HospitalHandler) Dashboard(c echo.Context) error {
	p, ok := hospitalOf(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Lifecycle.Dashboard(ctx, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Profile handles GET /v1/hospital/profile.
func (h *HospitalHandler) Profile(c echo.Context) error {
	p, ok := hospitalOf(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": p.User, "hospital": p.Hospital})
}

type hospitalProfileReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// UpdateProfile handles PUT /v1/hospital/profile.
func (h *HospitalHandler) UpdateProfile(c echo.Context) error {
	p, ok := hospitalOf(c)
	if !ok {
		return unauthorized(c)
	}
	var req hospitalProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	hosp := p.Hospital
	if err := hosp.ApplyProfile(model.HospitalProfileInput(req)); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Hospitals.Update(ctx, hosp); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, hosp)
}

type createRequestReq struct {
	BloodType   string `json:"blood_type"`
	Quantity    int    `json:"quantity"`
	Urgency     string `json:"urgency"`
	Description string `json:"description"`
}

// CreateRequest handles POST /v1/hospital/requests.
func (h *HospitalHandler) CreateRequest(c echo.Context) error {
	p, ok := hospitalOf(c)
	if !ok {
		return unauthorized(c)
	}
	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	br, err := h.Lifecycle.Create(ctx, p, model.NewRequestInput(req))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, br)
}

// Requests handles GET /v1/hospital/requests.
func (h *HospitalHandler) Requests(c echo.Context) error {
	p, ok := hospitalOf(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Lifecycle.ListForHospital(ctx, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": list})
}

// RequestDetails handles GET /v1/hospital/requests/:id.
func (h *HospitalHandler) RequestDetails(c echo.Context) error {
	p, ok := hospitalOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Lifecycle.Details(ctx, p, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateRequestStatus handles PATCH /v1/hospital/requests/:id/status.
func (h *HospitalHandler) UpdateRequestStatus(c echo.Context) error {
	p, ok := hospitalOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	br, err := h.Lifecycle.UpdateStatus(ctx, p, id, req.Status)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, br)
}
