package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blood-donation-tracker/internal/handler"
	"github.com/iliyamo/blood-donation-tracker/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, g Guard) {
	a := e.Group("/v1/admin", g.For(model.RoleAdmin)...)
	a.GET("/dashboard", h.Dashboard)

	// ---- Accounts ----
	a.GET("/users", h.ListUsers)
	a.DELETE("/users/:id", h.DeleteUser)
	a.GET("/donors", h.ListDonors)
	a.GET("/hospitals", h.ListHospitals)

	// ---- Requests & donations ----
	a.GET("/requests", h.ListRequests)
	a.GET("/donations", h.ListDonations)
	a.GET("/donations/export", h.ExportDonations)
	a.PATCH("/donations/:id/status", h.UpdateDonationStatus)
}
