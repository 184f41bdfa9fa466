package session

import (
	"strings"
	"time"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/shared/geo"
)

// JobSession is a read-only snapshot of a scheduled work session as delivered
// by the backend. Every optional field really is optional on the wire.
type JobSession struct {
	ID            int64  `json:"id"`
	JobID         string `json:"job_id"`
	ApplicationID string `json:"application_id"`
	DoctorID      string `json:"doctor_id"`

	SessionDate string `json:"session_date"` // YYYY-MM-DD
	StartTime   string `json:"start_time"`   // HH:MM or HH:MM:SS
	EndTime     string `json:"end_time"`

	ApprovedAt        *time.Time `json:"approved_at"`
	CheckInTime       *time.Time `json:"check_in_time"`
	TrackingStartedAt *time.Time `json:"tracking_started_at"`
	AutoCancelled     bool       `json:"auto_cancelled"`

	// Hospital coordinates come through as strings on some endpoints and
	// numbers on others.
	HospitalLat geo.Coord `json:"latitude"`
	HospitalLng geo.Coord `json:"longitude"`
}

// HospitalPoint returns the hospital location, or nil when either coordinate
// is missing or unparsable.
func (s *JobSession) HospitalPoint() *geo.Point {
	if s == nil {
		return nil
	}
	return geo.PointFrom(s.HospitalLat, s.HospitalLng)
}

// ScheduledStart combines session_date and start_time into a timestamp.
func (s *JobSession) ScheduledStart() (time.Time, bool) {
	return combine(s.SessionDate, s.StartTime)
}

// ScheduledEnd combines session_date and end_time into a timestamp.
func (s *JobSession) ScheduledEnd() (time.Time, bool) {
	return combine(s.SessionDate, s.EndTime)
}

func combine(date, clock string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	// Some endpoints send the date as a full timestamp; keep the date part.
	if len(date) > 10 {
		date = date[:10]
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, date+" "+clock, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
