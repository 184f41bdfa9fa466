package job

import (
	"context"
	"errors"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/db"
	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/shared/geo"

	"github.com/google/uuid"
)

var ErrLocationRequired = errors.New("valid latitude and longitude required")

type Service struct {
	db       db.Querier
	radiusKm float64
}

func NewService(db db.Querier, radiusKm float64) *Service {
	if radiusKm <= 0 {
		radiusKm = geo.DefaultRadiusKm
	}
	return &Service{db: db, radiusKm: radiusKm}
}

func (s *Service) CreateJob(ctx context.Context, input Job) (Job, error) {
	loc := geo.PointFrom(input.Latitude, input.Longitude)
	if loc == nil {
		return Job{}, ErrLocationRequired
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO jobs (id, hospital_id, title, specialty, session_date, start_time, end_time, rate_per_hour, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, ST_SetSRID(ST_MakePoint($9,$10), 4326)::geography)
		RETURNING created_at
	`, input.ID, input.HospitalID, input.Title, input.Specialty, input.SessionDate, input.StartTime, input.EndTime, input.RatePerHour, loc.Lng, loc.Lat)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Job{}, err
	}
	return input, nil
}

func (s *Service) UpdateJob(ctx context.Context, id string, patch Job) (Job, error) {
	j, err := s.GetJob(ctx, id)
	if err != nil {
		return Job{}, err
	}
	if patch.Title != "" {
		j.Title = patch.Title
	}
	if patch.Specialty != "" {
		j.Specialty = patch.Specialty
	}
	if patch.SessionDate != "" {
		j.SessionDate = patch.SessionDate
	}
	if patch.StartTime != "" {
		j.StartTime = patch.StartTime
	}
	if patch.EndTime != "" {
		j.EndTime = patch.EndTime
	}
	if patch.RatePerHour != 0 {
		j.RatePerHour = patch.RatePerHour
	}
	if p := geo.PointFrom(patch.Latitude, patch.Longitude); p != nil {
		j.Latitude = patch.Latitude
		j.Longitude = patch.Longitude
	}

	loc := geo.PointFrom(j.Latitude, j.Longitude)
	if loc == nil {
		return Job{}, ErrLocationRequired
	}

	_, err = s.db.Exec(ctx, `
		UPDATE jobs
		SET title=$2, specialty=$3, session_date=$4, start_time=$5, end_time=$6, rate_per_hour=$7,
		    location=ST_SetSRID(ST_MakePoint($8,$9), 4326)::geography
		WHERE id=$1
	`, j.ID, j.Title, j.Specialty, j.SessionDate, j.StartTime, j.EndTime, j.RatePerHour, loc.Lng, loc.Lat)
	if err != nil {
		return Job{}, err
	}
	return j, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, hospital_id, title, specialty, session_date, start_time, end_time, rate_per_hour,
		       ST_Y(location::geometry), ST_X(location::geometry), created_at
		FROM jobs WHERE id=$1
	`, id)
	return scanJob(row)
}

func (s *Service) DeleteJob(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	return err
}

// Nearby lists jobs within radiusKm of the doctor, nearest first, with the
// distance rendered in the shared display format.
func (s *Service) Nearby(ctx context.Context, device geo.Point, radiusKm float64) ([]NearbyJob, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, hospital_id, title, specialty, session_date, start_time, end_time, rate_per_hour,
		       ST_Y(location::geometry), ST_X(location::geometry), created_at
		FROM jobs
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography, $3)
		ORDER BY location <-> ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography
	`, device.Lng, device.Lat, radiusKm*1000)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []NearbyJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		entry := NearbyJob{Job: j}
		if loc := geo.PointFrom(j.Latitude, j.Longitude); loc != nil {
			entry.DistanceKm = geo.HaversineKm(device.Lat, device.Lng, loc.Lat, loc.Lng)
			entry.DistanceFormatted = geo.FormatDistance(entry.DistanceKm)
		}
		jobs = append(jobs, entry)
	}
	return jobs, nil
}

// Distance runs the job-detail proximity check for a device location against
// the shared geofence radius.
func (s *Service) Distance(ctx context.Context, id string, device *geo.Point) (DistanceResponse, error) {
	j, err := s.GetJob(ctx, id)
	if err != nil {
		return DistanceResponse{}, err
	}

	resp := DistanceResponse{Verdict: geo.Evaluate(device, geo.PointFrom(j.Latitude, j.Longitude), s.radiusKm)}
	if resp.DistanceKm != nil {
		resp.DistanceFormatted = geo.FormatDistance(*resp.DistanceKm)
	}
	return resp, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var lat, lng float64
	if err := row.Scan(&j.ID, &j.HospitalID, &j.Title, &j.Specialty, &j.SessionDate, &j.StartTime, &j.EndTime, &j.RatePerHour, &lat, &lng, &j.CreatedAt); err != nil {
		return Job{}, err
	}
	j.Latitude = geo.NewCoord(lat)
	j.Longitude = geo.NewCoord(lng)
	return j, nil
}
