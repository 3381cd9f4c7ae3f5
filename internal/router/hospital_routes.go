package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blood-donation-tracker/internal/handler"
	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

// RegisterHospital registers HOSPITAL-scoped endpoints under /v1/hospital.
func RegisterHospital(e *echo.Echo, h *handler.HospitalHandler, g Guard) {
	hg := e.Group("/v1/hospital", g.For(model.RoleHospital)...)
	hg.GET("/dashboard", h.Dashboard)
	hg.GET("/profile", h.Profile)
	hg.PUT("/profile", h.UpdateProfile)

	// ---- Requests ----
	hg.POST("/requests", h.CreateRequest)
	hg.GET("/requests", h.Requests)
	hg.GET("/requests/:id", h.RequestDetails)
	hg.PATCH("/requests/:id/status", h.UpdateRequestStatus)
	hg.PUT("/requests/:id/status", h.UpdateRequestStatus) // alias for clients without PATCH
}
