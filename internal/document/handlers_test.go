package document

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func passthrough(c *fiber.Ctx) error {
	c.Locals("user_id", "doc-1")
	return c.Next()
}

func newApp(t *testing.T) (*fiber.App, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	app := fiber.New()
	RegisterRoutes(app.Group("/documents"), NewService(mock), passthrough)
	return app, mock
}

func TestUploadHandler(t *testing.T) {
	app, mock := newApp(t)

	mock.ExpectQuery(`INSERT INTO documents`).
		WithArgs(pgxmock.AnyArg(), "doc-1", "https://storage.example/license.pdf", "license", "pending").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	req := httptest.NewRequest("POST", "/documents/upload", strings.NewReader(`{"file_name":"license.pdf","kind":"license"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Document  Document  `json:"document"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Document.URL != "https://storage.example/license.pdf" {
		t.Fatalf("unexpected url %q", out.Document.URL)
	}
	if out.ExpiresAt.Before(time.Now()) {
		t.Fatalf("expected future expiry, got %v", out.ExpiresAt)
	}
}

func TestVerifyHandler(t *testing.T) {
	app, mock := newApp(t)

	mock.ExpectExec(`UPDATE documents SET status`).
		WithArgs("document-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	resp, err := app.Test(httptest.NewRequest("POST", "/documents/document-1/verify", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestListHandler(t *testing.T) {
	app, mock := newApp(t)

	mock.ExpectQuery(`SELECT id, doctor_id, kind, url, status, created_at`).
		WithArgs("doc-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "doctor_id", "kind", "url", "status", "created_at"}))

	resp, err := app.Test(httptest.NewRequest("GET", "/documents/", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
