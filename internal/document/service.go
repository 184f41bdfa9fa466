package document

import (
	"context"
	"time"

	"github.com/alverstonegroupofcompanies/medlink-frontend-sub000/internal/db"

	"github.com/google/uuid"
)

// Document is credential metadata (license, degree) backing doctor
// verification. The file itself lives in external object storage; only the
// URL is kept here.
type Document struct {
	ID        string    `json:"id"`
	DoctorID  string    `json:"doctor_id"`
	Kind      string    `json:"kind"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) SaveDocument(ctx context.Context, doctorID, url, kind string) (Document, error) {
	doc := Document{
		ID:       uuid.NewString(),
		DoctorID: doctorID,
		Kind:     kind,
		URL:      url,
		Status:   "pending",
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO documents (id, doctor_id, url, kind, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, doc.ID, doc.DoctorID, doc.URL, doc.Kind, doc.Status)
	if err := row.Scan(&doc.CreatedAt); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *Service) Verify(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `UPDATE documents SET status='verified' WHERE id=$1`, id)
	return err
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID string) ([]Document, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, doctor_id, kind, url, status, created_at
		FROM documents WHERE doctor_id=$1
		ORDER BY created_at DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.DoctorID, &d.Kind, &d.URL, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}
