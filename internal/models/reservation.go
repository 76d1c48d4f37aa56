package models

import "strings"

// Reservation is a committed time window on one spot for one calendar day.
// Times arrive either as bare "HH:MM" or combined "YYYY-MM-DD HH:MM:SS"
// stamps depending on the backend revision.
type Reservation struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ReservationReceipt is the result of a booking submission.
type ReservationReceipt struct {
	Status        string `json:"status"`
	ReservationID string `json:"reservation_id"`
}

// SlotWindow is one of the eight fixed two-hour reservation windows per day.
type SlotWindow struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
	Label string `json:"label"`
}

// SlotCatalog returns the fixed windows offered by the booking flow,
// 07:00-09:00 through 21:00-23:00. These are the only legal boundaries.
func SlotCatalog() []SlotWindow {
	return []SlotWindow{
		{Start: "07:00", End: "09:00", Label: "7:00 AM - 9:00 AM"},
		{Start: "09:00", End: "11:00", Label: "9:00 AM - 11:00 AM"},
		{Start: "11:00", End: "13:00", Label: "11:00 AM - 1:00 PM"},
		{Start: "13:00", End: "15:00", Label: "1:00 PM - 3:00 PM"},
		{Start: "15:00", End: "17:00", Label: "3:00 PM - 5:00 PM"},
		{Start: "17:00", End: "19:00", Label: "5:00 PM - 7:00 PM"},
		{Start: "19:00", End: "21:00", Label: "7:00 PM - 9:00 PM"},
		{Start: "21:00", End: "23:00", Label: "9:00 PM - 11:00 PM"},
	}
}

// StartClock extracts the "HH:MM" component from a reservation start time,
// accepting both bare clock values and combined date+time stamps.
func (r Reservation) StartClock() string {
	return clockOf(r.StartTime)
}

func clockOf(s string) string {
	s = strings.TrimSpace(s)
	// combined "YYYY-MM-DD HH:MM:SS" or ISO "YYYY-MM-DDTHH:MM:SS"
	if i := strings.IndexAny(s, " T"); i >= 0 {
		s = s[i+1:]
	}
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}
