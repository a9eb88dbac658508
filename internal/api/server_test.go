package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fmuoria/CV-Assessment-agent/internal/export"
	"github.com/fmuoria/CV-Assessment-agent/internal/ingestion"
	"github.com/fmuoria/CV-Assessment-agent/internal/llm"
	"github.com/fmuoria/CV-Assessment-agent/internal/models"
	"github.com/fmuoria/CV-Assessment-agent/internal/wizard"
)

type cannedGenerator struct {
	response string
}

func (g cannedGenerator) GenerateContent(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return g.response, nil
}

func (g cannedGenerator) Close() error { return nil }

type fakeGmail struct {
	subject string
}

func (g *fakeGmail) FetchLatestCV(ctx context.Context, subject string) (ingestion.Upload, error) {
	g.subject = subject
	return ingestion.Upload{
		FileName: "applicant.txt",
		MimeType: "text/plain",
		Content:  strings.NewReader("Ada Lovelace\nSkills: Go"),
	}, nil
}

func quizResponse(n int) string {
	var items []string
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf(`{"id": %d, "question": "Q%d?", "type": "multiple_choice",
			"options": ["A", "B"], "correct_answer": "A", "explanation": "", "difficulty": "easy",
			"category": "technical"}`, i, i))
	}
	return fmt.Sprintf(`{"detected_language": "en", "profile_summary": "Developer",
		"top_skills": ["Go"], "items": [%s]}`, strings.Join(items, ","))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry := ingestion.NewRegistry()
	registry.RegisterReady(models.MimePlainText, ingestion.TextProvider{})

	store := wizard.NewStore(wizard.Dependencies{
		Extractor: ingestion.NewExtractor(registry),
		Generator: cannedGenerator{response: quizResponse(5)},
	}, 0)
	files := ingestion.NewFileHandler(t.TempDir(), 1<<20, false)

	return NewServer(store, files, registry, "test-secret")
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if got := rec.Result().Cookies(); len(got) > 0 {
		c.cookies = got
	}
	return rec
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, strings.NewReader(body), "application/json")
}

func (c *client) upload(name, content string) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		c.t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	return c.do(http.MethodPost, "/wizard/upload", &buf, mw.FormDataContentType())
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) wizard.Snapshot {
	t.Helper()
	var s wizard.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("Failed to decode snapshot: %v\n%s", err, rec.Body.String())
	}
	return s
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	c := &client{t: t, handler: newTestServer(t).Router()}

	rec := c.do(http.MethodGet, "/health", nil, "")
	expectStatus(t, rec, http.StatusOK)

	var body struct {
		Status    string          `json:"status"`
		Providers map[string]bool `json:"providers"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Status != "healthy" {
		t.Errorf("Expected healthy, got %q", body.Status)
	}
	if !body.Providers["txt"] || body.Providers["pdf"] {
		t.Errorf("Expected only txt ready, got %v", body.Providers)
	}
}

func TestMetrics(t *testing.T) {
	c := &client{t: t, handler: newTestServer(t).Router()}

	expectStatus(t, c.do(http.MethodPost, "/wizard", nil, ""), http.StatusCreated)
	c.do(http.MethodGet, "/wizard/results", nil, "")

	rec := c.do(http.MethodGet, "/metrics", nil, "")
	expectStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	for _, want := range []string{
		`cv_wizard_http_requests_total{method="POST",route="POST /wizard",status="201"}`,
		`cv_wizard_errors_total{kind="InvalidTransition"}`,
		"cv_wizard_active_sessions_current",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected metrics to contain %s", want)
		}
	}
}

func TestQuizFlowOverHTTP(t *testing.T) {
	c := &client{t: t, handler: newTestServer(t).Router()}

	rec := c.do(http.MethodPost, "/wizard?variant=quiz", nil, "")
	expectStatus(t, rec, http.StatusCreated)
	if len(c.cookies) == 0 {
		t.Fatal("Expected a session cookie")
	}

	rec = c.upload("cv.txt", "Jane Doe\nGo, Python")
	expectStatus(t, rec, http.StatusOK)
	if s := decodeSnapshot(t, rec); s.FileName != "cv.txt" || s.Step != models.StepUpload {
		t.Errorf("Expected cv.txt in upload step, got %q in %s", s.FileName, s.Step)
	}

	expectStatus(t, c.postJSON("/wizard/next", ""), http.StatusOK)
	expectStatus(t, c.postJSON("/wizard/configure", `{"item_count": 5, "difficulty": "Facile"}`), http.StatusOK)

	rec = c.postJSON("/wizard/generate", "")
	expectStatus(t, rec, http.StatusOK)
	s := decodeSnapshot(t, rec)
	if s.Step != models.StepInteract || s.Total != 5 {
		t.Fatalf("Expected 5 items in interact, got %d in %s", s.Total, s.Step)
	}
	if s.Quiz.Items[0].CorrectAnswer != "" {
		t.Error("Expected correct answers hidden while answering")
	}

	expectStatus(t, c.postJSON("/wizard/answer", `{"id": 1, "answer": "A"}`), http.StatusOK)
	expectStatus(t, c.postJSON("/wizard/goto", `{"index": 4}`), http.StatusOK)
	expectStatus(t, c.postJSON("/wizard/next", ""), http.StatusOK)

	rec = c.do(http.MethodGet, "/wizard/results", nil, "")
	expectStatus(t, rec, http.StatusOK)
	var res wizard.Results
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Score == nil || res.Score.Correct != 1 || res.Score.Total != 5 {
		t.Errorf("Expected 1/5, got %+v", res.Score)
	}

	rec = c.do(http.MethodGet, "/wizard/report.xlsx", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != export.ContentTypeXLSX {
		t.Errorf("Expected xlsx content type, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "cv_quiz") {
		t.Errorf("Expected attachment named after the CV, got %q", cd)
	}

	rec = c.do(http.MethodGet, "/wizard/report.html", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "1 / 5") {
		t.Error("Expected the score in the HTML report")
	}

	rec = c.postJSON("/wizard/reset", "")
	expectStatus(t, rec, http.StatusOK)
	if s := decodeSnapshot(t, rec); s.Step != models.StepUpload {
		t.Errorf("Expected upload after reset, got %s", s.Step)
	}
}

func TestErrorResponses(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, handler: srv.Router()}

	rec := c.do(http.MethodGet, "/wizard", nil, "")
	expectStatus(t, rec, http.StatusNotFound)

	c.do(http.MethodPost, "/wizard?variant=challenge", nil, "")

	tests := []struct {
		name   string
		run    func() *httptest.ResponseRecorder
		status int
		kind   string
	}{
		{"bad variant", func() *httptest.ResponseRecorder { return c.do(http.MethodPost, "/wizard?variant=essay", nil, "") }, http.StatusBadRequest, "ValidationError"},
		{"unsupported upload", func() *httptest.ResponseRecorder { return c.upload("photo.png", "\x89PNG") }, http.StatusBadRequest, "UnsupportedFormat"},
		{"results too early", func() *httptest.ResponseRecorder { return c.do(http.MethodGet, "/wizard/results", nil, "") }, http.StatusConflict, "InvalidTransition"},
		{"bad json", func() *httptest.ResponseRecorder { return c.postJSON("/wizard/answer", "{") }, http.StatusBadRequest, "ValidationError"},
		{"gmail not configured", func() *httptest.ResponseRecorder { return c.postJSON("/wizard/upload/gmail", `{"subject": "CV"}`) }, http.StatusServiceUnavailable, "GmailUnavailable"},
		// canned quiz JSON does not hold 3 challenges
		{"malformed generation", func() *httptest.ResponseRecorder { return c.upload("cv.txt", "Jane Doe") }, http.StatusBadGateway, "MalformedResponse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.run()
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var body map[string]string
			json.Unmarshal(rec.Body.Bytes(), &body)
			if body["kind"] != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, body["kind"])
			}
			if body["error"] == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestSessionHeader(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/wizard", nil))
	expectStatus(t, rec, http.StatusCreated)
	id := rec.Header().Get(SessionHeader)
	if id == "" {
		t.Fatal("Expected the session id in the response header")
	}

	req := httptest.NewRequest(http.MethodGet, "/wizard", nil)
	req.Header.Set(SessionHeader, id)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)
	if s := decodeSnapshot(t, rec); s.ID != id || s.Variant != models.VariantQuiz {
		t.Errorf("Expected quiz session %s, got %s %s", id, s.Variant, s.ID)
	}
}

func TestGmailUpload(t *testing.T) {
	srv := newTestServer(t)
	gmail := &fakeGmail{}
	srv.SetGmailSource(gmail)
	c := &client{t: t, handler: srv.Router()}

	c.do(http.MethodPost, "/wizard", nil, "")
	rec := c.postJSON("/wizard/upload/gmail", `{"subject": "Application"}`)
	expectStatus(t, rec, http.StatusOK)

	if gmail.subject != "Application" {
		t.Errorf("Expected subject Application, got %q", gmail.subject)
	}
	if s := decodeSnapshot(t, rec); s.FileName != "applicant.txt" {
		t.Errorf("Expected applicant.txt, got %q", s.FileName)
	}

	rec = c.postJSON("/wizard/upload/gmail", `{"subject": ""}`)
	if rec.Code != http.StatusConflict && rec.Code != http.StatusBadRequest {
		t.Errorf("Expected an error for an empty subject, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind string
		want int
	}{
		{"UnsupportedFormat", http.StatusBadRequest},
		{"ValidationError", http.StatusBadRequest},
		{"SessionNotFound", http.StatusNotFound},
		{"InvalidTransition", http.StatusConflict},
		{"StaleResult", http.StatusConflict},
		{"ParseError", http.StatusUnprocessableEntity},
		{"GenerationFailed", http.StatusBadGateway},
		{"MalformedResponse", http.StatusBadGateway},
		{"ProviderNotReady", http.StatusServiceUnavailable},
		{"InternalError", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.kind); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
