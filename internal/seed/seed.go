// Package seed creates the demo accounts used in development.
package seed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/service"
)

// Account is one demo login.
type Account struct {
	Input service.RegisterInput
	Role  model.Role

	// Donor profile; ignored for other roles.
	BloodType           model.BloodType
	MonthsSinceDonation int

	// Hospital profile; ignored for other roles.
	Hospital model.HospitalProfileInput
}

// Demo is the default demo data set.
var Demo = []Account{
	{
		Input: service.RegisterInput{Email: "admin@bloodtracker.com", Password: "Admin123!", FirstName: "Admin", LastName: "User", City: "New York"},
		Role:  model.RoleAdmin,
	},
	{
		Input: service.RegisterInput{Email: "hospital@citymedical.com", Password: "Hospital123!", FirstName: "City", LastName: "Medical", City: "New York"},
		Role:  model.RoleHospital,
		Hospital: model.HospitalProfileInput{
			Name:    "City Medical Center",
			Address: "123 Medical Drive, New York, NY 10001",
			Phone:   "(555) 123-4567",
		},
	},
	{
		Input:               service.RegisterInput{Email: "donor1@email.com", Password: "Donor123!", FirstName: "John", LastName: "Smith", City: "New York"},
		Role:                model.RoleDonor,
		BloodType:           model.BloodOPos,
		MonthsSinceDonation: 3,
	},
	{
		Input:               service.RegisterInput{Email: "donor2@email.com", Password: "Donor123!", FirstName: "Sarah", LastName: "Johnson", City: "New York"},
		Role:                model.RoleDonor,
		BloodType:           model.BloodAPos,
		MonthsSinceDonation: 2,
	},
}

// Seeder inserts accounts that do not exist yet.
type Seeder struct {
	Accounts  *service.Accounts
	Users     *repository.UserRepo
	Donors    *repository.DonorRepo
	Hospitals *repository.HospitalRepo
	Log       *zap.Logger
}

// Run creates every missing account in set.  Existing emails are skipped,
// so Run is safe to call on every start.
func (s *Seeder) Run(ctx context.Context, set []Account) (int, error) {
	created := 0
	for _, a := range set {
		_, err := s.Users.GetByEmail(ctx, a.Input.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}
		p, err := s.Accounts.Create(ctx, a.Input, a.Role)
		if errors.Is(err, repository.ErrEmailExists) {
			continue
		}
		if err != nil {
			return created, err
		}
		if err := s.applyProfile(ctx, p, a); err != nil {
			return created, err
		}
		created++
		s.Log.Info("seeded account", zap.String("email", a.Input.Email), zap.String("role", string(a.Role)))
	}
	return created, nil
}

func (s *Seeder) applyProfile(ctx context.Context, p model.Principal, a Account) error {
	switch v := p.(type) {
	case model.DonorPrincipal:
		d := v.Donor
		if a.BloodType != "" {
			d.BloodType = a.BloodType
		}
		if a.MonthsSinceDonation > 0 {
			last := s.Accounts.Now().AddDate(0, -a.MonthsSinceDonation, 0)
			d.LastDonationDate = &last
		}
		return s.Donors.Update(ctx, d)
	case model.HospitalPrincipal:
		if a.Hospital.Name == "" {
			return nil
		}
		h := v.Hospital
		if err := h.ApplyProfile(a.Hospital); err != nil {
			return err
		}
		return s.Hospitals.Update(ctx, h)
	}
	return nil
}
