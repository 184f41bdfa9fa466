package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/db"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/session"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/shared/geo"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/stream"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotEligible     = errors.New("session is not in its tracking window")
	ErrOutOfRange      = errors.New("device is outside the check-in geofence")
	ErrLocationUnknown = errors.New("device location unavailable")
)

type Service struct {
	db       db.Querier
	hub      *stream.Hub
	policy   session.Policy
	radiusKm float64
}

func NewService(db db.Querier, hub *stream.Hub, policy session.Policy, radiusKm float64) *Service {
	if radiusKm <= 0 {
		radiusKm = geo.DefaultRadiusKm
	}
	return &Service{db: db, hub: hub, policy: policy, radiusKm: radiusKm}
}

const sessionColumns = `
	s.id, s.job_id, s.application_id, s.doctor_id,
	s.session_date, s.start_time, s.end_time,
	s.approved_at, s.check_in_time, s.tracking_started_at, s.auto_cancelled,
	ST_Y(j.location::geometry), ST_X(j.location::geometry)`

func (s *Service) Session(ctx context.Context, id int64) (*session.JobSession, error) {
	row := s.db.QueryRow(ctx, `
		SELECT`+sessionColumns+`
		FROM job_sessions s
		JOIN jobs j ON j.id = s.job_id
		WHERE s.id=$1
	`, id)
	return scanSession(row)
}

// Eligibility computes the merged time-window and geofence verdict the
// screens poll for. device may be nil when the platform reports no location.
func (s *Service) Eligibility(ctx context.Context, id int64, now time.Time, device *geo.Point) (session.View, error) {
	js, err := s.Session(ctx, id)
	if err != nil {
		return session.View{}, err
	}
	return s.policy.EvaluateAt(js, now, device, s.radiusKm), nil
}

// StartTracking opens live tracking for a session, rejecting anything the
// merged verdict does not allow. The update is guarded so tracking_started_at
// is written at most once.
func (s *Service) StartTracking(ctx context.Context, id int64, now time.Time, device *geo.Point) (session.View, error) {
	js, err := s.Session(ctx, id)
	if err != nil {
		return session.View{}, err
	}

	view := s.policy.EvaluateAt(js, now, device, s.radiusKm)
	if !view.CanStartTracking {
		return view, gateError(view.Eligibility.Status == session.StatusActive, view.Geofence)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE job_sessions SET tracking_started_at=$2
		WHERE id=$1 AND tracking_started_at IS NULL AND auto_cancelled=false
	`, id, now)
	if err != nil {
		return view, err
	}
	if tag.RowsAffected() == 0 {
		return view, ErrNotEligible
	}

	js.TrackingStartedAt = &now
	view = s.policy.EvaluateAt(js, now, device, s.radiusKm)

	s.broadcast(id, event{Type: "tracking_started", SessionID: id, At: now})
	return view, nil
}

// CheckIn records the doctor's arrival. It requires an approved session
// within the geofence; check_in_time is written at most once.
func (s *Service) CheckIn(ctx context.Context, id int64, now time.Time, device *geo.Point) (session.View, error) {
	js, err := s.Session(ctx, id)
	if err != nil {
		return session.View{}, err
	}

	view := s.policy.EvaluateAt(js, now, device, s.radiusKm)
	if !view.CanCheckIn {
		return view, gateError(view.Eligibility.CanCheckIn || timeWindowAllowsCheckIn(view.Eligibility.Status, js), view.Geofence)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE job_sessions SET check_in_time=$2
		WHERE id=$1 AND check_in_time IS NULL AND approved_at IS NOT NULL
	`, id, now)
	if err != nil {
		return view, err
	}
	if tag.RowsAffected() == 0 {
		return view, ErrNotEligible
	}

	js.CheckInTime = &now
	view = s.policy.EvaluateAt(js, now, device, s.radiusKm)

	s.broadcast(id, event{Type: "check_in", SessionID: id, At: now})
	return view, nil
}

func (s *Service) AddPoint(ctx context.Context, id int64, loc LocationRequest, accuracyM float64, recordedAt time.Time) (TrackPoint, error) {
	point := loc.Point()
	if point == nil {
		return TrackPoint{}, ErrLocationUnknown
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	var lastLat, lastLng float64
	havePrev := true
	err := s.db.QueryRow(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry)
		FROM track_points
		WHERE session_id=$1
		ORDER BY recorded_at DESC
		LIMIT 1
	`, id).Scan(&lastLat, &lastLng)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return TrackPoint{}, err
		}
		havePrev = false
	}

	out := TrackPoint{SessionID: id, Lat: point.Lat, Lng: point.Lng, AccuracyM: accuracyM, RecordedAt: recordedAt}
	row := s.db.QueryRow(ctx, `
		INSERT INTO track_points (session_id, location, accuracy_m, recorded_at)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography, $4, $5)
		RETURNING id, created_at
	`, id, point.Lng, point.Lat, accuracyM, recordedAt)
	if err := row.Scan(&out.ID, &out.CreatedAt); err != nil {
		return TrackPoint{}, err
	}

	if havePrev {
		deltaM := geo.HaversineKm(lastLat, lastLng, point.Lat, point.Lng) * 1000
		if _, err := s.db.Exec(ctx, `
			UPDATE job_sessions
			SET total_distance_m = COALESCE(total_distance_m,0) + $2
			WHERE id=$1
		`, id, deltaM); err != nil {
			return TrackPoint{}, err
		}
	}

	if s.hub != nil {
		payload, _ := json.Marshal(out)
		s.hub.Broadcast(strconv.FormatInt(id, 10), payload)
	}
	return out, nil
}

func (s *Service) Summary(ctx context.Context, id int64, now time.Time) (Summary, error) {
	js, err := s.Session(ctx, id)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{SessionID: id, Status: s.policy.Evaluate(js, now).Status}
	if err := s.db.QueryRow(ctx, `
		SELECT COALESCE(total_distance_m,0) FROM job_sessions WHERE id=$1
	`, id).Scan(&out.DistanceM); err != nil {
		return Summary{}, err
	}
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM track_points WHERE session_id=$1`, id).Scan(&out.PointCount); err != nil {
		return Summary{}, err
	}

	if js.TrackingStartedAt != nil {
		until := now
		if js.CheckInTime != nil && js.CheckInTime.After(*js.TrackingStartedAt) {
			until = *js.CheckInTime
		}
		out.DurationSec = int64(until.Sub(*js.TrackingStartedAt).Seconds())
	}
	return out, nil
}

// History lists the doctor's sessions newest first, each classified against
// now so the screen can label them without re-deriving anything.
func (s *Service) History(ctx context.Context, doctorID string, now time.Time) ([]HistoryItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+sessionColumns+`
		FROM job_sessions s
		JOIN jobs j ON j.id = s.job_id
		WHERE s.doctor_id=$1
		ORDER BY s.session_date DESC, s.start_time DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []HistoryItem
	for rows.Next() {
		js, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, HistoryItem{Session: *js, Eligibility: s.policy.Evaluate(js, now)})
	}
	return items, nil
}

// AutoCancelSweep flags sessions whose tracking window lapsed without the
// doctor starting tracking. Classification is delegated to the engine so the
// sweep and the screens can never disagree.
func (s *Service) AutoCancelSweep(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+sessionColumns+`
		FROM job_sessions s
		JOIN jobs j ON j.id = s.job_id
		WHERE s.auto_cancelled=false AND s.tracking_started_at IS NULL
	`)
	if err != nil {
		return 0, err
	}

	var lapsed []int64
	for rows.Next() {
		js, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return 0, err
		}
		if s.policy.Evaluate(js, now).Status == session.StatusExpired {
			lapsed = append(lapsed, js.ID)
		}
	}
	rows.Close()

	if len(lapsed) == 0 {
		return 0, nil
	}
	if _, err := s.db.Exec(ctx, `
		UPDATE job_sessions SET auto_cancelled=true WHERE id = ANY($1)
	`, lapsed); err != nil {
		return 0, err
	}
	return len(lapsed), nil
}

func (s *Service) broadcast(id int64, ev event) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(ev)
	s.hub.Broadcast(strconv.FormatInt(id, 10), payload)
}

// gateError picks the most specific rejection: time window first, then
// missing location, then plain out-of-range.
func gateError(timeWindowOK bool, verdict geo.Verdict) error {
	switch {
	case !timeWindowOK:
		return ErrNotEligible
	case verdict.DistanceKm == nil:
		return ErrLocationUnknown
	default:
		return ErrOutOfRange
	}
}

func timeWindowAllowsCheckIn(st session.Status, js *session.JobSession) bool {
	if js.CheckInTime != nil || js.ApprovedAt == nil {
		return false
	}
	return st == session.StatusActive || st == session.StatusStarted
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*session.JobSession, error) {
	var js session.JobSession
	var lat, lng float64
	if err := row.Scan(
		&js.ID, &js.JobID, &js.ApplicationID, &js.DoctorID,
		&js.SessionDate, &js.StartTime, &js.EndTime,
		&js.ApprovedAt, &js.CheckInTime, &js.TrackingStartedAt, &js.AutoCancelled,
		&lat, &lng,
	); err != nil {
		return nil, err
	}
	js.HospitalLat = geo.NewCoord(lat)
	js.HospitalLng = geo.NewCoord(lng)
	return &js, nil
}
