// Package queue defines message payloads exchanged over the message
// broker and the consumer that records them.  Downstream services (the
// email/QR rendering pipeline, analytics) subscribe to these queues;
// the engine itself never waits on them.
package queue

// ReservationConfirmedEvent is published when a hold is successfully
// confirmed.  The verification token is deliberately absent: it travels
// only to the vendor who owns the reservation, never through the broker.
type ReservationConfirmedEvent struct {
	ReservationID string `json:"reservation_id"`
	StallID       uint64 `json:"stall_id"`
	StallName     string `json:"stall_name"`
	VendorID      string `json:"vendor_id"`
	PriceCents    uint32 `json:"price_cents"`
	ConfirmedAt   string `json:"confirmed_at"`
}

// ReservationCheckedInEvent is published when a verification token is
// consumed at the venue.
type ReservationCheckedInEvent struct {
	ReservationID string `json:"reservation_id"`
	StallID       uint64 `json:"stall_id"`
	StallName     string `json:"stall_name"`
	VendorID      string `json:"vendor_id"`
	CheckedInAt   string `json:"checked_in_at"`
}
