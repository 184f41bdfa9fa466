package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/shared/geo"

	"github.com/pashagolub/pgxmock/v3"
)

var jobCols = []string{
	"id", "hospital_id", "title", "specialty", "session_date", "start_time", "end_time",
	"rate_per_hour", "lat", "lng", "created_at",
}

func TestCreateAndGetJob(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()

	mock.ExpectQuery(`INSERT INTO jobs`).
		WithArgs(pgxmock.AnyArg(), "hosp-1", "Night shift ICU", "icu", "2024-01-10", "10:00:00", "18:00:00", 120.0, 77.5946, 12.9716).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	svc := NewService(mock, geo.DefaultRadiusKm)
	created, err := svc.CreateJob(context.Background(), Job{
		HospitalID:  "hosp-1",
		Title:       "Night shift ICU",
		Specialty:   "icu",
		SessionDate: "2024-01-10",
		StartTime:   "10:00:00",
		EndTime:     "18:00:00",
		RatePerHour: 120,
		Latitude:    geo.CoordFrom("12.9716"),
		Longitude:   geo.CoordFrom(77.5946),
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	mock.ExpectQuery(`SELECT id, hospital_id, title`).
		WithArgs(created.ID).
		WillReturnRows(pgxmock.NewRows(jobCols).
			AddRow(created.ID, "hosp-1", "Night shift ICU", "icu", "2024-01-10", "10:00:00", "18:00:00", 120.0, 12.9716, 77.5946, createdAt))

	loaded, err := svc.GetJob(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if loaded.ID != created.ID || loaded.Title != "Night shift ICU" {
		t.Fatalf("unexpected job loaded")
	}
	if pt := geo.PointFrom(loaded.Latitude, loaded.Longitude); pt == nil || pt.Lat != 12.9716 {
		t.Fatalf("unexpected location %+v", pt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateJobRequiresLocation(t *testing.T) {
	svc := NewService(nil, 0)
	_, err := svc.CreateJob(context.Background(), Job{HospitalID: "hosp-1", Title: "Shift"})
	if !errors.Is(err, ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired, got %v", err)
	}

	_, err = svc.CreateJob(context.Background(), Job{
		HospitalID: "hosp-1", Title: "Shift",
		Latitude: geo.CoordFrom("not-a-number"), Longitude: geo.CoordFrom(77.0),
	})
	if !errors.Is(err, ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired for bad latitude, got %v", err)
	}
}

func TestUpdateDeleteJob(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock, geo.DefaultRadiusKm)

	mock.ExpectQuery(`SELECT id, hospital_id, title`).
		WithArgs("job-1").
		WillReturnRows(pgxmock.NewRows(jobCols).
			AddRow("job-1", "hosp-1", "Shift", "general", "2024-01-10", "10:00", "18:00", 100.0, 12.9716, 77.5946, time.Now()))

	mock.ExpectExec(`UPDATE jobs`).
		WithArgs("job-1", "Shift B", "general", "2024-01-10", "10:00", "18:00", 100.0, 77.5946, 12.9716).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := svc.UpdateJob(context.Background(), "job-1", Job{Title: "Shift B"})
	if err != nil {
		t.Fatalf("update job: %v", err)
	}
	if updated.Title != "Shift B" {
		t.Fatalf("unexpected update")
	}

	mock.ExpectExec(`DELETE FROM jobs`).WithArgs("job-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := svc.DeleteJob(context.Background(), "job-1"); err != nil {
		t.Fatalf("delete job: %v", err)
	}
}

func TestNearby(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`ST_DWithin`).
		WithArgs(77.5946, 12.9716, 5000.0).
		WillReturnRows(pgxmock.NewRows(jobCols).
			AddRow("job-1", "hosp-1", "Shift", "general", "2024-01-10", "10:00", "18:00", 100.0, 12.98, 77.60, time.Now()))

	svc := NewService(mock, geo.DefaultRadiusKm)
	jobs, err := svc.Nearby(context.Background(), geo.Point{Lat: 12.9716, Lng: 77.5946}, 5)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].DistanceKm <= 0 || jobs[0].DistanceFormatted == "" {
		t.Fatalf("expected rendered distance, got %+v", jobs[0])
	}
}

func TestDistanceVerdicts(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock, geo.DefaultRadiusKm)

	row := func() *pgxmock.Rows {
		return pgxmock.NewRows(jobCols).
			AddRow("job-1", "hosp-1", "Shift", "general", "2024-01-10", "10:00", "18:00", 100.0, 12.9716, 77.5946, time.Now())
	}

	mock.ExpectQuery(`SELECT id, hospital_id, title`).WithArgs("job-1").WillReturnRows(row())
	resp, err := svc.Distance(context.Background(), "job-1", &geo.Point{Lat: 12.9716, Lng: 77.5946})
	if err != nil {
		t.Fatalf("distance: %v", err)
	}
	if resp.DistanceKm == nil || !resp.WithinRange || resp.DistanceFormatted != "0m" {
		t.Fatalf("expected at-door verdict, got %+v", resp)
	}

	mock.ExpectQuery(`SELECT id, hospital_id, title`).WithArgs("job-1").WillReturnRows(row())
	resp, err = svc.Distance(context.Background(), "job-1", &geo.Point{Lat: 13.0827, Lng: 80.2707})
	if err != nil {
		t.Fatalf("distance: %v", err)
	}
	if resp.WithinRange || resp.DistanceKm == nil {
		t.Fatalf("expected out-of-range verdict, got %+v", resp)
	}

	// Unknown device location is not "too far": distance is nil.
	mock.ExpectQuery(`SELECT id, hospital_id, title`).WithArgs("job-1").WillReturnRows(row())
	resp, err = svc.Distance(context.Background(), "job-1", nil)
	if err != nil {
		t.Fatalf("distance: %v", err)
	}
	if resp.DistanceKm != nil || resp.WithinRange || resp.DistanceFormatted != "" {
		t.Fatalf("expected unknown-location verdict, got %+v", resp)
	}
}
