// Package model holds the persisted domain records of the reservation
// engine.  Structs here map one-to-one onto database rows; behaviour
// lives in the ledger, not on these types.
package model

// StallSize is the commercial size class of a stall.
type StallSize string

const (
	SizeSmall  StallSize = "small"
	SizeMedium StallSize = "medium"
	SizeLarge  StallSize = "large"
)

// Valid reports whether the value is one of the known size classes.
func (s StallSize) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Stall is a single bookable unit on the exhibition floor.  Stalls are
// static for the lifetime of an event: the set of stalls and their
// attributes never change while the server runs.
type Stall struct {
	ID         uint64    `json:"id"`          // stalls.id
	Name       string    `json:"name"`        // stalls.name
	Size       StallSize `json:"size"`        // stalls.size
	Dimensions string    `json:"dimensions"`  // stalls.dimensions
	PriceCents uint32    `json:"price_cents"` // stalls.price_cents
	FloorRow   uint32    `json:"floor_row"`   // stalls.floor_row
	FloorCol   uint32    `json:"floor_col"`   // stalls.floor_col
}
