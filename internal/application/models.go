package application

import "time"

const (
	StatusApplied  = "applied"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Application struct {
	ID         string     `json:"id"`
	JobID      string     `json:"job_id"`
	DoctorID   string     `json:"doctor_id"`
	Status     string     `json:"status"`
	Note       string     `json:"note,omitempty"`
	AppliedAt  time.Time  `json:"applied_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// ApprovalResult carries the session created when a hospital approves an
// application; the session id is what the tracking endpoints key on.
type ApprovalResult struct {
	Application Application `json:"application"`
	SessionID   int64       `json:"session_id"`
}
