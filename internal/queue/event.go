// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher and consumer that carry them.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// Queue names double as routing keys on the default exchange.
const (
    QueueRequestCreated        = "request.created"
    QueueRequestStatusChanged  = "request.status_changed"
    QueueDonationAccepted      = "donation.accepted"
    QueueDonationStatusChanged = "donation.status_changed"
)

// Queues lists every queue declared by the publisher and consumer.
var Queues = []string{
    QueueRequestCreated,
    QueueRequestStatusChanged,
    QueueDonationAccepted,
    QueueDonationStatusChanged,
}

// Meta is embedded in every event.
type Meta struct {
    EventID    string `json:"event_id"`
    OccurredAt string `json:"occurred_at"`
}

// NewMeta stamps a fresh event id and the given time in RFC3339 UTC.
func NewMeta(at time.Time) Meta {
    return Meta{EventID: uuid.NewString(), OccurredAt: at.UTC().Format(time.RFC3339)}
}

// RequestCreatedEvent is published when a hospital posts a request.
type RequestCreatedEvent struct {
    Meta
    RequestID  uint64 `json:"request_id"`
    HospitalID uint64 `json:"hospital_id"`
    BloodType  string `json:"blood_type"`
    Quantity   int    `json:"quantity"`
    Urgency    string `json:"urgency"`
}

// RequestStatusChangedEvent is published after a status update commits.
type RequestStatusChangedEvent struct {
    Meta
    RequestID  uint64 `json:"request_id"`
    HospitalID uint64 `json:"hospital_id"`
    From       string `json:"from"`
    To         string `json:"to"`
}

// DonationAcceptedEvent is published when a donor accepts a request.
type DonationAcceptedEvent struct {
    Meta
    DonationID   uint64 `json:"donation_id"`
    DonorID      uint64 `json:"donor_id"`
    RequestID    uint64 `json:"request_id"`
    BloodType    string `json:"blood_type"`
    Quantity     int    `json:"quantity"`
    DonationDate string `json:"donation_date"`
}

// DonationStatusChangedEvent is published when an admin completes or
// cancels a donation.
type DonationStatusChangedEvent struct {
    Meta
    DonationID uint64 `json:"donation_id"`
    From       string `json:"from"`
    To         string `json:"to"`
}
