package model

import (
    "errors"
    "fmt"
)

// ValidationError reports a missing or malformed input field.  Handlers
// render it back to the client as a 400 together with the field name so
// the originating form can highlight it.
type ValidationError struct {
    Field   string
    Message string
}

func (e *ValidationError) Error() string {
    if e.Field == "" {
        return e.Message
    }
    return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
    return &ValidationError{Field: field, Message: msg}
}

// ErrIneligibleDonor is matched (via errors.Is) by every IneligibleError.
var ErrIneligibleDonor = errors.New("donor not eligible")

// ErrInvalidTransition is returned when a status change is rejected by the
// configured transition policy.
var ErrInvalidTransition = errors.New("invalid status transition")

// Reasons carried by IneligibleError.
const (
    ReasonDonorUnavailable   = "donor_unavailable"
    ReasonRequestNotOpen     = "request_not_open"
    ReasonRequestExhausted   = "request_fully_pledged"
    ReasonBloodTypeMismatch  = "blood_type_mismatch"
)

// IneligibleError explains why a donor may not accept a request.
type IneligibleError struct {
    Reason string
}

func (e *IneligibleError) Error() string {
    return ErrIneligibleDonor.Error() + ": " + e.Reason
}

func (e *IneligibleError) Is(target error) bool { return target == ErrIneligibleDonor }
