package model

// StallAvailability is a read-only projection pairing a stall with the
// reservation currently occupying it, if any.  It is recomputed from the
// ledger on every read and never mutated directly.
type StallAvailability struct {
	Stall    Stall        `json:"stall"`
	Reserved bool         `json:"reserved"`
	Occupant *Reservation `json:"occupant,omitempty"`
}
