package gateway

import (
	"math/rand"

	"campus_parking/internal/models"
)

// mockSpotRecords is the built-in substitute inventory served whenever the
// live spot source is unreachable, erroring or empty: six standard spots and
// two accessible ones, with a fixed occupancy pattern.
func mockSpotRecords() []spotRecord {
	return []spotRecord{
		{SpotID: 1, SpotNumber: "A1", Available: intPtr(1), IsDisability: boolPtr(false)},
		{SpotID: 2, SpotNumber: "A2", Available: intPtr(0), IsDisability: boolPtr(false)},
		{SpotID: 3, SpotNumber: "A3", Available: intPtr(1), IsDisability: boolPtr(false)},
		{SpotID: 4, SpotNumber: "B1", Available: intPtr(0), IsDisability: boolPtr(false)},
		{SpotID: 5, SpotNumber: "B2", Available: intPtr(1), IsDisability: boolPtr(false)},
		{SpotID: 6, SpotNumber: "B3", Available: intPtr(0), IsDisability: boolPtr(false)},
		{SpotID: 7, SpotNumber: "D1", Available: intPtr(1), IsDisability: boolPtr(true)},
		{SpotID: 8, SpotNumber: "D2", Available: intPtr(0), IsDisability: boolPtr(true)},
	}
}

// randomizedEnvironment fakes the sensor readings on the operator console.
// Spot counts are filled in by the caller.
func randomizedEnvironment() models.AdminStats {
	traffic := make([]int, 24)
	for i := range traffic {
		traffic[i] = rand.Intn(120)
	}
	daily := make([]int, 7)
	for i := range daily {
		daily[i] = 20 + rand.Intn(81) // 20..100 percent
	}
	return models.AdminStats{
		Temperature:    18 + rand.Float64()*14, // 18..32 °C
		Humidity:       40 + rand.Float64()*30, // 40..70 %
		TrafficFlow:    traffic,
		DailyOccupancy: daily,
	}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
