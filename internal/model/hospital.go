package model

import (
    "strings"
    "time"
)

// Hospital is the hospital profile attached one-to-one to a User.
type Hospital struct {
    ID        uint64    `json:"id"`         // hospitals.id
    UserID    uint64    `json:"user_id"`    // hospitals.user_id
    Name      string    `json:"name"`       // hospitals.name
    Address   string    `json:"address"`    // hospitals.address
    Phone     string    `json:"phone"`      // hospitals.phone
    CreatedAt time.Time `json:"created_at"` // hospitals.created_at
}

// Placeholder values written at registration.
const (
    PlaceholderAddress = "Address to be updated"
    PlaceholderPhone   = "Phone to be updated"
)

// NewRegisteredHospital returns the hospital row created alongside a new
// HOSPITAL account.
func NewRegisteredHospital(u User) Hospital {
    return Hospital{
        UserID:  u.ID,
        Name:    strings.TrimSpace(u.FullName() + " Hospital"),
        Address: PlaceholderAddress,
        Phone:   PlaceholderPhone,
    }
}

// HospitalProfileInput carries the editable hospital fields.
type HospitalProfileInput struct {
    Name    string
    Address string
    Phone   string
}

// ApplyProfile validates in and copies it onto h.
func (h *Hospital) ApplyProfile(in HospitalProfileInput) error {
    name := strings.TrimSpace(in.Name)
    addr := strings.TrimSpace(in.Address)
    phone := strings.TrimSpace(in.Phone)
    switch {
    case name == "":
        return invalid("name", "is required")
    case len(name) > 200:
        return invalid("name", "must be at most 200 characters")
    case addr == "":
        return invalid("address", "is required")
    case len(addr) > 500:
        return invalid("address", "must be at most 500 characters")
    case phone == "":
        return invalid("phone", "is required")
    case len(phone) > 20:
        return invalid("phone", "must be at most 20 characters")
    }
    h.Name, h.Address, h.Phone = name, addr, phone
    return nil
}
