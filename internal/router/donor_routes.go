package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blood-donation-tracker/internal/handler"
	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

// RegisterDonor registers DONOR-scoped endpoints under /v1/donor.  limiter
// guards the accept endpoint.
func RegisterDonor(e *echo.Echo, h *handler.DonorHandler, g Guard, limiter echo.MiddlewareFunc) {
	d := e.Group("/v1/donor", g.For(model.RoleDonor)...)
	d.GET("/dashboard", h.Dashboard)
	d.GET("/profile", h.Profile)
	d.PUT("/profile", h.UpdateProfile)
	d.GET("/requests", h.Requests)
	d.POST("/requests/:id/accept", h.Accept, limiter)
	d.GET("/donations", h.Donations)
}
