package handler // handler defines the HTTP handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/middleware"
	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/service"
)

// dbTimeout bounds the database work of a single request.
const dbTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID returns the authenticated user id stored by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errors.New("user_id missing from context")
	}
	return id, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func donorOf(c echo.Context) (model.DonorPrincipal, bool) {
	p, _ := middleware.CurrentPrincipal(c)
	dp, ok := p.(model.DonorPrincipal)
	return dp, ok
}

func hospitalOf(c echo.Context) (model.HospitalPrincipal, bool) {
	p, _ := middleware.CurrentPrincipal(c)
	hp, ok := p.(model.HospitalPrincipal)
	return hp, ok
}

func adminOf(c echo.Context) (model.AdminPrincipal, bool) {
	p, _ := middleware.CurrentPrincipal(c)
	ap, ok := p.(model.AdminPrincipal)
	return ap, ok
}

// respondError maps domain and repository errors onto HTTP responses.
// Unclassified errors are logged and reported as 500.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var verr *model.ValidationError
	var ierr *model.IneligibleError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error(), "field": verr.Field})
	case errors.As(err, &ierr):
		return c.JSON(http.StatusConflict, echo.Map{"error": model.ErrIneligibleDonor.Error(), "reason": ierr.Reason})
	case errors.Is(err, model.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, service.ErrBadCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	log.Error("request failed",
		zap.String("request_id", middleware.RequestIDFrom(c)),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
