// Package model contains domain models passed between layers.
package model

import "time"

// InPlayNo is the ScheduledForInPlay value that excludes an event from the
// in-play view. Any other value, including an absent one, keeps it.
const InPlayNo = "No"

// RawRecord is one data row of a trader tagging export, before cleaning.
// Absent fields are reported through the Has* flags rather than sentinel
// strings so that "" and "NA" are treated alike.
type RawRecord struct {
	Line               int    // 1-based line number in the source file
	Date               string // day/month/year hour:minute
	HasDate            bool
	Event              string
	HasEvent           bool
	ScheduledForInPlay string
	HasInPlay          bool
	AssignedTrader     string
	HasTrader          bool
}

// CleanedRecord is a RawRecord that survived cleaning.
type CleanedRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	Event              string    `json:"event"`
	ScheduledForInPlay string    `json:"scheduled_for_in_play"`
	Trader             string    `json:"trader"`
	HasTrader          bool      `json:"has_trader"`
	Hour               int       `json:"hour"`
	TimeSlot           string    `json:"time_slot,omitempty"` // empty when Hour is outside the bins
}

// InPlay reports whether the record belongs to the in-play view.
func (r CleanedRecord) InPlay() bool {
	return r.ScheduledForInPlay != InPlayNo
}
