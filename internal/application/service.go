package application

import (
	"context"
	"errors"
	"time"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/db"

	"github.com/google/uuid"
)

var ErrNotApplied = errors.New("application is not in applied state")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Apply(ctx context.Context, jobID, doctorID, note string) (Application, error) {
	app := Application{
		ID:       uuid.NewString(),
		JobID:    jobID,
		DoctorID: doctorID,
		Status:   StatusApplied,
		Note:     note,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO applications (id, job_id, doctor_id, status, note)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (job_id, doctor_id) DO UPDATE SET note=EXCLUDED.note
		RETURNING id, status, applied_at
	`, app.ID, app.JobID, app.DoctorID, app.Status, app.Note)
	if err := row.Scan(&app.ID, &app.Status, &app.AppliedAt); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Approve stamps approved_at and materializes the job session the check-in
// flow operates on. Approval time is passed in so callers control the clock.
func (s *Service) Approve(ctx context.Context, id string, now time.Time) (ApprovalResult, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return ApprovalResult{}, err
	}
	if app.Status != StatusApplied {
		return ApprovalResult{}, ErrNotApplied
	}

	_, err = s.db.Exec(ctx, `
		UPDATE applications SET status=$2, approved_at=$3 WHERE id=$1
	`, id, StatusApproved, now)
	if err != nil {
		return ApprovalResult{}, err
	}
	app.Status = StatusApproved
	app.ApprovedAt = &now

	var sessionID int64
	row := s.db.QueryRow(ctx, `
		INSERT INTO job_sessions (application_id, job_id, doctor_id, session_date, start_time, end_time, approved_at)
		SELECT a.id, a.job_id, a.doctor_id, j.session_date, j.start_time, j.end_time, $2
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.id = $1
		RETURNING id
	`, id, now)
	if err := row.Scan(&sessionID); err != nil {
		return ApprovalResult{}, err
	}

	return ApprovalResult{Application: app, SessionID: sessionID}, nil
}

func (s *Service) Reject(ctx context.Context, id string) (Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.Status != StatusApplied {
		return Application{}, ErrNotApplied
	}

	_, err = s.db.Exec(ctx, `UPDATE applications SET status=$2 WHERE id=$1`, id, StatusRejected)
	if err != nil {
		return Application{}, err
	}
	app.Status = StatusRejected
	return app, nil
}

func (s *Service) Get(ctx context.Context, id string) (Application, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, job_id, doctor_id, status, COALESCE(note,''), applied_at, approved_at
		FROM applications WHERE id=$1
	`, id)
	var app Application
	if err := row.Scan(&app.ID, &app.JobID, &app.DoctorID, &app.Status, &app.Note, &app.AppliedAt, &app.ApprovedAt); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID string) ([]Application, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, job_id, doctor_id, status, COALESCE(note,''), applied_at, approved_at
		FROM applications WHERE doctor_id=$1
		ORDER BY applied_at DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var app Application
		if err := rows.Scan(&app.ID, &app.JobID, &app.DoctorID, &app.Status, &app.Note, &app.AppliedAt, &app.ApprovedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (s *Service) ListForJob(ctx context.Context, jobID string) ([]Application, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, job_id, doctor_id, status, COALESCE(note,''), applied_at, approved_at
		FROM applications WHERE job_id=$1
		ORDER BY applied_at
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var app Application
		if err := rows.Scan(&app.ID, &app.JobID, &app.DoctorID, &app.Status, &app.Note, &app.AppliedAt, &app.ApprovedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}
