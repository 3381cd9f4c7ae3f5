package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/utils"
)

// ErrBadCredentials is returned by Authenticate for an unknown email, a
// wrong password or a deactivated account.
var ErrBadCredentials = errors.New("invalid credentials")

// Accounts registers users together with their role profile.
type Accounts struct {
	Users      *repository.UserRepo
	Donors     *repository.DonorRepo
	Hospitals  *repository.HospitalRepo
	BcryptCost int
	Now        func() time.Time
}

func NewAccounts(users *repository.UserRepo, donors *repository.DonorRepo, hospitals *repository.HospitalRepo, bcryptCost int) *Accounts {
	return &Accounts{Users: users, Donors: donors, Hospitals: hospitals, BcryptCost: bcryptCost, Now: nowUTC}
}

// Column widths of users.first_name, last_name and city.
const (
	maxNameLen = 50
	maxCityLen = 100
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	City      string
	Role      string
}

func (in *RegisterInput) normalize() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.City = strings.TrimSpace(in.City)
	switch {
	case in.Email == "":
		return &model.ValidationError{Field: "email", Message: "is required"}
	case len(in.Email) > 255 || !strings.Contains(in.Email, "@"):
		return &model.ValidationError{Field: "email", Message: "is not a valid address"}
	case in.FirstName == "":
		return &model.ValidationError{Field: "first_name", Message: "is required"}
	case in.LastName == "":
		return &model.ValidationError{Field: "last_name", Message: "is required"}
	case utf8.RuneCountInString(in.FirstName) > maxNameLen:
		return &model.ValidationError{Field: "first_name", Message: "must be at most 50 characters"}
	case utf8.RuneCountInString(in.LastName) > maxNameLen:
		return &model.ValidationError{Field: "last_name", Message: "must be at most 50 characters"}
	case utf8.RuneCountInString(in.City) > maxCityLen:
		return &model.ValidationError{Field: "city", Message: "must be at most 100 characters"}
	}
	if msg := utils.PasswordProblem(in.Password); msg != "" {
		return &model.ValidationError{Field: "password", Message: msg}
	}
	return nil
}

// Register creates a DONOR or HOSPITAL account.  Any other requested role,
// including ADMIN, falls back to DONOR.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (model.Principal, error) {
	role, ok := model.ParseRole(in.Role)
	if !ok || role == model.RoleAdmin {
		role = model.RoleDonor
	}
	return a.Create(ctx, in, role)
}

// Create inserts the user and, for donors and hospitals, the role profile
// in one transaction.
func (a *Accounts) Create(ctx context.Context, in RegisterInput, role model.Role) (model.Principal, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	u := model.User{Email: in.Email, Role: role, FirstName: in.FirstName, LastName: in.LastName, City: in.City}
	var p model.Principal
	err := inTx(ctx, a.Users.DB(), func(tx *sql.Tx) error {
		if err := a.Users.CreateTx(ctx, tx, &u, in.Password, a.BcryptCost); err != nil {
			return err
		}
		switch role {
		case model.RoleDonor:
			d := model.NewRegisteredDonor(u.ID, a.Now())
			if err := a.Donors.CreateTx(ctx, tx, &d); err != nil {
				return err
			}
			p = model.DonorPrincipal{User: u, Donor: d}
		case model.RoleHospital:
			h := model.NewRegisteredHospital(u)
			if err := a.Hospitals.CreateTx(ctx, tx, &h); err != nil {
				return err
			}
			p = model.HospitalPrincipal{User: u, Hospital: h}
		default:
			p = model.AdminPrincipal{User: u}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Authenticate checks email and password.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := a.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrBadCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrBadCredentials
	}
	return u, nil
}
