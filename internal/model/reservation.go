package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.  A
// reservation starts as a hold and either progresses to confirmed and
// checked_in, or ends up cancelled or expired.  The three terminal
// states are never left once entered.
type ReservationStatus string

const (
	StatusHeld      ReservationStatus = "held"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusExpired   ReservationStatus = "expired"
	StatusCheckedIn ReservationStatus = "checked_in"
)

// Terminal reports whether the status is one of the final states
// (cancelled, expired, checked_in).
func (s ReservationStatus) Terminal() bool {
	switch s {
	case StatusCancelled, StatusExpired, StatusCheckedIn:
		return true
	}
	return false
}

// Occupying reports whether a reservation in this status blocks other
// vendors from holding the same stall.  At most one occupying
// reservation may exist per stall at any instant.
func (s ReservationStatus) Occupying() bool {
	switch s {
	case StatusHeld, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// Reservation records a vendor's claim on a single stall.  Many
// reservations may reference one stall over the lifetime of an event,
// but only one of them can be occupying at a time.
//
// Fields:
//  ID                – UUID assigned at creation.
//  StallID           – the stall being reserved (exactly one).
//  VendorID          – identity of the vendor, supplied by the upstream
//                      identity provider.
//  Status            – lifecycle state, see ReservationStatus.
//  Notes             – optional free-form text entered by the vendor.
//  VerificationToken – opaque QR payload; set only once the reservation
//                      is confirmed, empty before that.
//  CreatedAt         – when the hold was created.
//  HoldExpiresAt     – when an unconfirmed hold lapses.
//  ConfirmedAt       – when the hold was confirmed (nil before).
//  CheckedInAt       – when the vendor checked in at the venue (nil before).
type Reservation struct {
	ID                string            `json:"id"`                           // reservations.id
	StallID           uint64            `json:"stall_id"`                     // reservations.stall_id
	VendorID          string            `json:"vendor_id"`                    // reservations.vendor_id
	Status            ReservationStatus `json:"status"`                       // reservations.status
	Notes             string            `json:"notes,omitempty"`              // reservations.notes
	VerificationToken string            `json:"verification_token,omitempty"` // reservations.verification_token
	CreatedAt         time.Time         `json:"created_at"`                   // reservations.created_at
	HoldExpiresAt     time.Time         `json:"hold_expires_at"`              // reservations.hold_expires_at
	ConfirmedAt       *time.Time        `json:"confirmed_at,omitempty"`       // reservations.confirmed_at
	CheckedInAt       *time.Time        `json:"checked_in_at,omitempty"`      // reservations.checked_in_at
}
