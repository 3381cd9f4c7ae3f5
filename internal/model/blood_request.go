package model

import (
    "strings"
    "time"
)

// BloodRequest is a hospital's request for units of a blood type.
//
// Fields:
//  ID            – primary key identifier.
//  HospitalID    – hospital that created the request.
//  BloodType     – blood type needed.
//  Quantity      – number of units needed (> 0).
//  Urgency       – Low, Normal, High or Critical.
//  Description   – free text shown to donors.
//  Status        – Open, Fulfilled or Cancelled.
//  RequestDate   – when the request was posted.
//  FulfilledDate – set if and only if Status is Fulfilled.
//  CreatedAt     – row creation timestamp.
type BloodRequest struct {
    ID            uint64        `json:"id"`                       // blood_requests.id
    HospitalID    uint64        `json:"hospital_id"`              // blood_requests.hospital_id
    BloodType     BloodType     `json:"blood_type"`               // blood_requests.blood_type
    Quantity      int           `json:"quantity"`                 // blood_requests.quantity
    Urgency       Urgency       `json:"urgency"`                  // blood_requests.urgency
    Description   string        `json:"description"`              // blood_requests.description
    Status        RequestStatus `json:"status"`                   // blood_requests.status
    RequestDate   time.Time     `json:"request_date"`             // blood_requests.request_date
    FulfilledDate *time.Time    `json:"fulfilled_date,omitempty"` // blood_requests.fulfilled_date (nullable)
    CreatedAt     time.Time     `json:"created_at"`               // blood_requests.created_at
}

// NewRequestInput is the raw form submitted by a hospital.
type NewRequestInput struct {
    BloodType   string
    Quantity    int
    Urgency     string
    Description string
}

// MaxDescriptionLen mirrors the blood_requests.description column width.
const MaxDescriptionLen = 500

// NewBloodRequest validates in and builds an Open request for hospitalID.
func NewBloodRequest(hospitalID uint64, in NewRequestInput, now time.Time) (BloodRequest, error) {
    bt, err := ParseBloodType(in.BloodType)
    if err != nil {
        return BloodRequest{}, err
    }
    desc := strings.TrimSpace(in.Description)
    if desc == "" {
        return BloodRequest{}, invalid("description", "is required")
    }
    if len(desc) > MaxDescriptionLen {
        return BloodRequest{}, invalid("description", "must be at most 500 characters")
    }
    if in.Quantity <= 0 {
        return BloodRequest{}, invalid("quantity", "must be greater than zero")
    }
    urg, err := ParseUrgency(in.Urgency)
    if err != nil {
        return BloodRequest{}, err
    }
    return BloodRequest{
        HospitalID:  hospitalID,
        BloodType:   bt,
        Quantity:    in.Quantity,
        Urgency:     urg,
        Description: desc,
        Status:      RequestOpen,
        RequestDate: now,
    }, nil
}

// Transition moves the request to status `to` under policy.  Setting
// Fulfilled stamps FulfilledDate with now; any other status clears it so
// that FulfilledDate is present exactly when the request is Fulfilled.
func (r *BloodRequest) Transition(to RequestStatus, now time.Time, policy TransitionPolicy) error {
    if policy == PolicyStrict {
        if r.Status == to {
            return nil
        }
        if r.Status != RequestOpen {
            return ErrInvalidTransition
        }
    }
    r.Status = to
    if to == RequestFulfilled {
        t := now
        r.FulfilledDate = &t
    } else {
        r.FulfilledDate = nil
    }
    return nil
}
