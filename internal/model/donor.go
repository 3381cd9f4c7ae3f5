package model

import "time"

// Donor is the donor profile attached one-to-one to a User.  It is created
// at registration with DefaultBloodType and is changed only through profile
// updates.
type Donor struct {
    ID               uint64     `json:"id"`                           // donors.id
    UserID           uint64     `json:"user_id"`                      // donors.user_id
    BloodType        BloodType  `json:"blood_type"`                   // donors.blood_type
    IsAvailable      bool       `json:"is_available"`                 // donors.is_available
    LastDonationDate *time.Time `json:"last_donation_date,omitempty"` // donors.last_donation_date (nullable)
    CreatedAt        time.Time  `json:"created_at"`                   // donors.created_at
}

// DonorProfileInput carries the editable donor fields.
type DonorProfileInput struct {
    BloodType        string
    IsAvailable      bool
    LastDonationDate *time.Time
}

// ApplyProfile validates in and copies it onto d.
func (d *Donor) ApplyProfile(in DonorProfileInput) error {
    bt, err := ParseBloodType(in.BloodType)
    if err != nil {
        return err
    }
    d.BloodType = bt
    d.IsAvailable = in.IsAvailable
    d.LastDonationDate = in.LastDonationDate
    return nil
}

// NewRegisteredDonor returns the donor row created alongside a new DONOR
// account.
func NewRegisteredDonor(userID uint64, now time.Time) Donor {
    last := now.AddDate(0, -6, 0)
    return Donor{
        UserID:           userID,
        BloodType:        DefaultBloodType,
        IsAvailable:      true,
        LastDonationDate: &last,
    }
}
