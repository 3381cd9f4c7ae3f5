package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
)

// UserFinder, DonorFinder and HospitalFinder are implemented by the
// repositories of the same name.
type UserFinder interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

type DonorFinder interface {
	GetByUserID(ctx context.Context, userID uint64) (model.Donor, error)
}

type HospitalFinder interface {
	GetByUserID(ctx context.Context, userID uint64) (model.Hospital, error)
}

// PrincipalSource resolves the account and role profile behind a user id.
type PrincipalSource struct {
	Users     UserFinder
	Donors    DonorFinder
	Hospitals HospitalFinder
}

// Resolve builds the principal for userID.  A user whose account was
// deleted or deactivated, or whose role profile is missing, resolves to
// repository.ErrNotFound.
func (s PrincipalSource) Resolve(ctx context.Context, userID uint64) (model.Principal, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, repository.ErrNotFound
	}
	switch u.Role {
	case model.RoleAdmin:
		return model.AdminPrincipal{User: u}, nil
	case model.RoleHospital:
		h, err := s.Hospitals.GetByUserID(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		return model.HospitalPrincipal{User: u, Hospital: h}, nil
	case model.RoleDonor:
		d, err := s.Donors.GetByUserID(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		return model.DonorPrincipal{User: u, Donor: d}, nil
	}
	return nil, repository.ErrNotFound
}

// LoadPrincipal resolves the authenticated user into a model.Principal and
// stores it under KeyPrincipal.  It must run after JWTAuth.  The role in
// the database wins over the role claim of an older token.
func LoadPrincipal(src PrincipalSource, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			p, err := src.Resolve(c.Request().Context(), uid)
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account not found"})
			}
			if err != nil {
				log.Error("resolve principal", zap.Uint64("user_id", uid), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			c.Set(KeyPrincipal, p)
			c.Set(KeyRole, p.Role())
			return next(c)
		}
	}
}
