package session

import (
	"fmt"
	"time"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/shared/geo"
)

// Status is the tracking-window classification of a session at a point in
// time. It is derived on every evaluation and never stored.
type Status string

const (
	StatusNoSession Status = "no_session"
	StatusTooEarly  Status = "too_early"
	StatusActive    Status = "active"
	StatusStarted   Status = "started"
	StatusExpired   Status = "expired"
)

// Policy holds the tracking-window offsets. AutoCancelAfter measures from the
// window opening, not from shift start; it is backend policy and configurable.
type Policy struct {
	TrackingLead     time.Duration
	AutoCancelAfter  time.Duration
	WarningThreshold time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		TrackingLead:     time.Hour,
		AutoCancelAfter:  90 * time.Minute,
		WarningThreshold: 10 * time.Minute,
	}
}

// PolicyFromMinutes builds a Policy from the minute-granularity config knobs.
// Non-positive values fall back to the defaults.
func PolicyFromMinutes(leadMin, cancelMin, warnMin int) Policy {
	p := DefaultPolicy()
	if leadMin > 0 {
		p.TrackingLead = time.Duration(leadMin) * time.Minute
	}
	if cancelMin > 0 {
		p.AutoCancelAfter = time.Duration(cancelMin) * time.Minute
	}
	if warnMin > 0 {
		p.WarningThreshold = time.Duration(warnMin) * time.Minute
	}
	return p
}

// Eligibility is the time-window verdict for a session. Countdown fields are
// populated only for the statuses they apply to.
type Eligibility struct {
	Status                Status `json:"status"`
	CanStartTracking      bool   `json:"can_start_tracking"`
	CanCheckIn            bool   `json:"can_check_in"`
	MinutesUntilCancel    int    `json:"minutes_until_cancellation,omitempty"`
	IsWithinWarningPeriod bool   `json:"is_within_warning_period"`
	TimeUntilTracking     string `json:"time_until_tracking,omitempty"`
	TimeRemaining         string `json:"time_remaining,omitempty"`

	WindowStart *time.Time `json:"tracking_window_start,omitempty"`
	WindowEnd   *time.Time `json:"tracking_window_end,omitempty"`
}

// Evaluate classifies a session against now. It never panics on missing or
// malformed schedule fields; those degrade to StatusNoSession unless a
// terminal flag already decides the outcome.
func (p Policy) Evaluate(s *JobSession, now time.Time) Eligibility {
	if s == nil {
		return Eligibility{Status: StatusNoSession}
	}
	if s.TrackingStartedAt != nil {
		return Eligibility{Status: StatusStarted, CanCheckIn: s.CheckInTime == nil && s.ApprovedAt != nil}
	}
	if s.AutoCancelled {
		return Eligibility{Status: StatusExpired}
	}

	start, ok := s.ScheduledStart()
	if !ok {
		return Eligibility{Status: StatusNoSession}
	}

	windowStart := start.Add(-p.TrackingLead)
	windowEnd := windowStart.Add(p.AutoCancelAfter)

	out := Eligibility{WindowStart: &windowStart, WindowEnd: &windowEnd}
	switch {
	case now.After(windowEnd):
		out.Status = StatusExpired
	case now.Before(windowStart):
		out.Status = StatusTooEarly
		out.TimeUntilTracking = formatDelta(windowStart.Sub(now))
	default:
		out.Status = StatusActive
		remaining := windowEnd.Sub(now)
		out.MinutesUntilCancel = ceilMinutes(remaining)
		out.IsWithinWarningPeriod = remaining <= p.WarningThreshold
		out.TimeRemaining = formatDelta(remaining)
		out.CanStartTracking = true
		out.CanCheckIn = s.ApprovedAt != nil && s.CheckInTime == nil
	}
	return out
}

// View merges the time-window verdict with the geofence verdict; this is the
// final actionable state the screens render buttons from.
type View struct {
	Eligibility
	Geofence          geo.Verdict `json:"geofence"`
	DistanceFormatted string      `json:"distance,omitempty"`
}

// EvaluateAt produces the merged verdict for a device location. A nil device
// location keeps the time-window result but forces both action gates off,
// letting callers distinguish "location unavailable" from "too far".
func (p Policy) EvaluateAt(s *JobSession, now time.Time, device *geo.Point, radiusKm float64) View {
	view := View{
		Eligibility: p.Evaluate(s, now),
		Geofence:    geo.Evaluate(device, s.HospitalPoint(), radiusKm),
	}
	if view.Geofence.DistanceKm != nil {
		view.DistanceFormatted = geo.FormatDistance(*view.Geofence.DistanceKm)
	}
	view.CanStartTracking = view.CanStartTracking && view.Geofence.WithinRange
	view.CanCheckIn = view.CanCheckIn && view.Geofence.WithinRange
	return view
}

func ceilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}

// formatDelta renders a duration as "1h 5m", "2h" or "45m".
func formatDelta(d time.Duration) string {
	m := ceilMinutes(d)
	h := m / 60
	m = m % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
