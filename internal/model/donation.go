package model

import "time"

// Donation records a donor's pledge towards a blood request.
type Donation struct {
    ID             uint64         `json:"id"`               // donations.id
    DonorID        uint64         `json:"donor_id"`         // donations.donor_id
    BloodRequestID uint64         `json:"blood_request_id"` // donations.blood_request_id
    DonationDate   time.Time      `json:"donation_date"`    // donations.donation_date
    Quantity       int            `json:"quantity"`         // donations.quantity
    Status         DonationStatus `json:"status"`           // donations.status
    Notes          *string        `json:"notes,omitempty"`  // donations.notes (nullable)
    CreatedAt      time.Time      `json:"created_at"`       // donations.created_at
}

// DonationLeadTime is how far ahead an accepted donation is scheduled.
const DonationLeadTime = 24 * time.Hour

// unitsPerDonation is the most a single donor pledges in one acceptance.
const unitsPerDonation = 1

// PledgeQuantity is min(request quantity, 1).
func PledgeQuantity(req BloodRequest) int {
    if req.Quantity < unitsPerDonation {
        return req.Quantity
    }
    return unitsPerDonation
}

// MatchRules tunes the eligibility check.
type MatchRules struct {
    // RequireBloodTypeMatch re-checks the donor's blood type against the
    // request.  Callers normally filter requests by blood type already.
    RequireBloodTypeMatch bool
}

// CheckEligibility decides whether donor may accept req given the units
// already pledged by non-cancelled donations.  On success it returns the
// quantity to pledge.
func CheckEligibility(donor Donor, req BloodRequest, pledged int, rules MatchRules) (int, error) {
    if !donor.IsAvailable {
        return 0, &IneligibleError{Reason: ReasonDonorUnavailable}
    }
    if req.Status != RequestOpen {
        return 0, &IneligibleError{Reason: ReasonRequestNotOpen}
    }
    if rules.RequireBloodTypeMatch && donor.BloodType != req.BloodType {
        return 0, &IneligibleError{Reason: ReasonBloodTypeMismatch}
    }
    qty := PledgeQuantity(req)
    if req.Quantity-pledged < qty || qty <= 0 {
        return 0, &IneligibleError{Reason: ReasonRequestExhausted}
    }
    return qty, nil
}

// NewPendingDonation builds the donation created when donor accepts req.
func NewPendingDonation(donor Donor, req BloodRequest, qty int, now time.Time) Donation {
    return Donation{
        DonorID:        donor.ID,
        BloodRequestID: req.ID,
        DonationDate:   now.Add(DonationLeadTime),
        Quantity:       qty,
        Status:         DonationPending,
    }
}

// Complete applies an administrative status change.  Only Completed and
// Cancelled are accepted; the related request and donor are not touched.
func (d *Donation) Complete(to DonationStatus) error {
    if to != DonationCompleted && to != DonationCancelled {
        return invalid("status", "must be Completed or Cancelled")
    }
    d.Status = to
    return nil
}
