package job

import (
	"time"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/shared/geo"
)

// Job is a hospital shift posting. Latitude/longitude accept both string and
// numeric JSON, matching what the mobile clients send.
type Job struct {
	ID          string    `json:"id"`
	HospitalID  string    `json:"hospital_id"`
	Title       string    `json:"title"`
	Specialty   string    `json:"specialty"`
	SessionDate string    `json:"session_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	RatePerHour float64   `json:"rate_per_hour"`
	Latitude    geo.Coord `json:"latitude"`
	Longitude   geo.Coord `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
}

// NearbyJob is a listing entry with its distance from the searching doctor.
type NearbyJob struct {
	Job
	DistanceKm        float64 `json:"distance_km"`
	DistanceFormatted string  `json:"distance"`
}

// DistanceResponse is the job-detail proximity check against the shared
// geofence radius.
type DistanceResponse struct {
	geo.Verdict
	DistanceFormatted string `json:"distance,omitempty"`
}
