package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/report"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/service"
)

// AdminHandler serves the /v1/admin routes.
type AdminHandler struct {
	Users     *repository.UserRepo
	Donors    *repository.DonorRepo
	Hospitals *repository.HospitalRepo
	Requests  *repository.BloodRequestRepo
	Donations *repository.DonationRepo
	Counters  *repository.StatsRepo
	Matcher   *service.DonationMatcher
	Log       *zap.Logger
}

// Dashboard handles GET /v1/admin/dashboard: system counters plus the
// latest donations.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	stats, err := h.Counters.Load(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	recent, err := h.Donations.ListAll(ctx, service.RecentLimit)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats, "recent_donations": recent})
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// DeleteUser handles DELETE /v1/admin/users/:id.  The profile, requests
// and donations of the user are removed by cascade.  Administrators cannot
// delete their own account.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	admin, ok := adminOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == admin.User.ID {
		return respondError(c, h.Log, &model.ValidationError{Field: "id", Message: "cannot delete your own account"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("user deleted", zap.Uint64("user_id", id), zap.Uint64("by", admin.User.ID))
	return c.NoContent(http.StatusNoContent)
}

// ListDonors handles GET /v1/admin/donors.
func (h *AdminHandler) ListDonors(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Donors.ListSummaries(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"donors": list})
}

// ListHospitals handles GET /v1/admin/hospitals.
func (h *AdminHandler) ListHospitals(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Hospitals.ListSummaries(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hospitals": list})
}

// ListRequests handles GET /v1/admin/requests.
func (h *AdminHandler) ListRequests(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Requests.ListAll(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": list})
}

// ListDonations handles GET /v1/admin/donations.
func (h *AdminHandler) ListDonations(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Donations.ListAll(ctx, 0)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"donations": list})
}

// exportRange reads ?from=YYYY-MM-DD&to=YYYY-MM-DD.  The range defaults to
// the last 30 days and to is inclusive.
func exportRange(c echo.Context, now time.Time) (time.Time, time.Time, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	from, to := today.AddDate(0, 0, -30), today
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, time.Time{}, &model.ValidationError{Field: "from", Message: "must be YYYY-MM-DD"}
		}
		from = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, time.Time{}, &model.ValidationError{Field: "to", Message: "must be YYYY-MM-DD"}
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, &model.ValidationError{Field: "to", Message: "must not be before from"}
	}
	return from, to.AddDate(0, 0, 1), nil
}

// ExportDonations handles GET /v1/admin/donations/export and streams an
// xlsx workbook of the donations created in the requested range.
func (h *AdminHandler) ExportDonations(c echo.Context) error {
	from, to, err := exportRange(c, time.Now())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	rows, err := h.Donations.ListBetween(ctx, from, to)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	data, err := report.DonationsXLSX(rows)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	name := fmt.Sprintf("donations_%s_%s.xlsx", from.Format("20060102"), to.AddDate(0, 0, -1).Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// UpdateDonationStatus handles PATCH /v1/admin/donations/:id/status.
func (h *AdminHandler) UpdateDonationStatus(c echo.Context) error {
	admin, ok := adminOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid donation id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Matcher.Complete(ctx, admin, id, req.Status)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}
