package model

import "strings"

// Role is one of the three fixed account roles.  The values are stored in
// users.role and embedded in the JWT "role" claim.
type Role string

const (
    RoleAdmin    Role = "ADMIN"
    RoleHospital Role = "HOSPITAL"
    RoleDonor    Role = "DONOR"
)

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
    switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
    case RoleAdmin, RoleHospital, RoleDonor:
        return r, true
    }
    return "", false
}

// BloodType is a donor/request compatibility class such as "O+".  No
// cross-type compatibility is modelled: a request for O+ matches O+ donors
// only.
type BloodType string

const (
    BloodAPos  BloodType = "A+"
    BloodANeg  BloodType = "A-"
    BloodBPos  BloodType = "B+"
    BloodBNeg  BloodType = "B-"
    BloodABPos BloodType = "AB+"
    BloodABNeg BloodType = "AB-"
    BloodOPos  BloodType = "O+"
    BloodONeg  BloodType = "O-"
)

// DefaultBloodType is assigned to donors at registration until they edit
// their profile.
const DefaultBloodType = BloodOPos

var bloodTypes = map[BloodType]bool{
    BloodAPos: true, BloodANeg: true, BloodBPos: true, BloodBNeg: true,
    BloodABPos: true, BloodABNeg: true, BloodOPos: true, BloodONeg: true,
}

// ParseBloodType validates a blood type code.  Whitespace is trimmed and
// letters are upper-cased before lookup.
func ParseBloodType(s string) (BloodType, error) {
    s = strings.ToUpper(strings.TrimSpace(s))
    if s == "" {
        return "", invalid("blood_type", "is required")
    }
    bt := BloodType(s)
    if !bloodTypes[bt] {
        return "", invalid("blood_type", "unknown blood type "+s)
    }
    return bt, nil
}

// Urgency ranks how quickly a request must be served.
type Urgency string

const (
    UrgencyLow      Urgency = "Low"
    UrgencyNormal   Urgency = "Normal"
    UrgencyHigh     Urgency = "High"
    UrgencyCritical Urgency = "Critical"
)

// ParseUrgency maps a case-insensitive name to an Urgency.  An empty value
// yields UrgencyNormal.
func ParseUrgency(s string) (Urgency, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "":
        return UrgencyNormal, nil
    case "low":
        return UrgencyLow, nil
    case "normal":
        return UrgencyNormal, nil
    case "high":
        return UrgencyHigh, nil
    case "critical":
        return UrgencyCritical, nil
    }
    return "", invalid("urgency", "must be one of Low, Normal, High, Critical")
}

// RequestStatus is the lifecycle state of a BloodRequest.
type RequestStatus string

const (
    RequestOpen      RequestStatus = "Open"
    RequestFulfilled RequestStatus = "Fulfilled"
    RequestCancelled RequestStatus = "Cancelled"
)

// ParseRequestStatus accepts Open, Fulfilled or Cancelled in any case.
func ParseRequestStatus(s string) (RequestStatus, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "open":
        return RequestOpen, nil
    case "fulfilled":
        return RequestFulfilled, nil
    case "cancelled", "canceled":
        return RequestCancelled, nil
    }
    return "", invalid("status", "must be one of Open, Fulfilled, Cancelled")
}

// Terminal reports whether no further transitions are expected.
func (s RequestStatus) Terminal() bool {
    return s == RequestFulfilled || s == RequestCancelled
}

// DonationStatus is the lifecycle state of a Donation.
type DonationStatus string

const (
    DonationPending   DonationStatus = "Pending"
    DonationCompleted DonationStatus = "Completed"
    DonationCancelled DonationStatus = "Cancelled"
)

// ParseDonationStatus accepts Pending, Completed or Cancelled in any case.
func ParseDonationStatus(s string) (DonationStatus, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "pending":
        return DonationPending, nil
    case "completed":
        return DonationCompleted, nil
    case "cancelled", "canceled":
        return DonationCancelled, nil
    }
    return "", invalid("status", "must be one of Pending, Completed, Cancelled")
}

// TransitionPolicy controls how strictly request status changes are checked.
type TransitionPolicy string

const (
    // PolicyPermissive accepts any known status, including re-opening a
    // fulfilled or cancelled request.
    PolicyPermissive TransitionPolicy = "permissive"
    // PolicyStrict only allows Open -> Fulfilled and Open -> Cancelled.
    PolicyStrict TransitionPolicy = "strict"
)

// ParseTransitionPolicy falls back to PolicyPermissive for unknown values.
func ParseTransitionPolicy(s string) TransitionPolicy {
    if strings.EqualFold(strings.TrimSpace(s), string(PolicyStrict)) {
        return PolicyStrict
    }
    return PolicyPermissive
}
