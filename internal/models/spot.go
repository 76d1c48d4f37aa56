package models

import "time"

// ParkingSpot is a point-in-time snapshot of one physical spot. Snapshots are
// replaced wholesale on every poll; instances are never mutated in place.
type ParkingSpot struct {
	SpotID       int       `json:"spot_id"`
	SpotNumber   string    `json:"spot_number,omitempty"` // e.g. "A1", "D2"
	LevelID      int       `json:"level_id"`
	IsAvailable  bool      `json:"is_available"`
	IsAccessible bool      `json:"is_accessible"`
	LastUpdated  time.Time `json:"last_updated,omitempty"`
}

// AdminStats is the read-only aggregate shown on the operator console.
// OccupiedSpots + AvailableSpots always equals TotalSpots.
type AdminStats struct {
	Temperature    float64 `json:"temperature"` // °C
	Humidity       float64 `json:"humidity"`    // percent
	TotalSpots     int     `json:"total_spots"`
	OccupiedSpots  int     `json:"occupied_spots"`
	AvailableSpots int     `json:"available_spots"`
	TrafficFlow    []int   `json:"traffic_flow"`    // cars per hour, 24 points
	DailyOccupancy []int   `json:"daily_occupancy"` // percent per day, 7 points
}
