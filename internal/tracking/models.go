package tracking

import (
	"time"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/session"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/shared/geo"
)

// LocationRequest is the device position attached to tracking and check-in
// actions. Coordinates tolerate string-typed values.
type LocationRequest struct {
	Latitude  geo.Coord `json:"latitude"`
	Longitude geo.Coord `json:"longitude"`
}

func (r LocationRequest) Point() *geo.Point {
	return geo.PointFrom(r.Latitude, r.Longitude)
}

type TrackPoint struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	AccuracyM  float64   `json:"accuracy_m"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type Summary struct {
	SessionID   int64          `json:"session_id"`
	Status      session.Status `json:"status"`
	PointCount  int            `json:"point_count"`
	DistanceM   float64        `json:"distance_m"`
	DurationSec int64          `json:"duration_sec"`
}

// HistoryItem is one entry of the doctor's session history screen: the raw
// snapshot plus its current classification.
type HistoryItem struct {
	Session     session.JobSession  `json:"session"`
	Eligibility session.Eligibility `json:"eligibility"`
}

type event struct {
	Type      string    `json:"type"`
	SessionID int64     `json:"session_id"`
	At        time.Time `json:"at"`
}
