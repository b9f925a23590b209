package model

import "fmt"

// DateRange is a stay expressed as the half-open interval [CheckIn, CheckOut).
// The check-out day itself is free for the next guest to check in.
type DateRange struct {
	CheckIn  Date `json:"checkInDate" bson:"check_in_date"`
	CheckOut Date `json:"checkOutDate" bson:"check_out_date"`
}

func NewDateRange(checkIn, checkOut Date) DateRange {
	return DateRange{CheckIn: checkIn, CheckOut: checkOut}
}

func (r DateRange) Valid() bool {
	return !r.CheckIn.IsZero() && r.CheckIn.Before(r.CheckOut)
}

// Overlaps reports whether the two stays share at least one night.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

func (r DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}
	return int(r.CheckOut.Sub(r.CheckIn.Time).Hours() / 24)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s", r.CheckIn, r.CheckOut)
}

// FirstConflict returns the first range in existing that overlaps proposed.
func FirstConflict(proposed DateRange, existing []DateRange) (DateRange, bool) {
	for _, r := range existing {
		if proposed.Overlaps(r) {
			return r, true
		}
	}
	return DateRange{}, false
}
