package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fmuoria/CV-Assessment-agent/internal/export"
	"github.com/fmuoria/CV-Assessment-agent/internal/ingestion"
	"github.com/fmuoria/CV-Assessment-agent/internal/models"
	"github.com/fmuoria/CV-Assessment-agent/internal/wizard"
)

const (
	cookieName = "cv-wizard"
	sessionKey = "wizard_id"
	// SessionHeader lets API clients without cookies address a session
	SessionHeader = "X-Wizard-Session"
)

// GmailFetcher fetches the newest CV attachment matching a subject
type GmailFetcher interface {
	FetchLatestCV(ctx context.Context, subject string) (ingestion.Upload, error)
}

// Server handles HTTP requests
type Server struct {
	store    *wizard.Store
	files    *ingestion.FileHandler
	registry *ingestion.Registry
	cookies  *sessions.CookieStore
	gmail    GmailFetcher
	maxForm  int64
}

// NewServer creates a new API server
func NewServer(store *wizard.Store, files *ingestion.FileHandler, registry *ingestion.Registry, sessionSecret string) *Server {
	cookies := sessions.NewCookieStore([]byte(sessionSecret))
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode
	cookies.Options.MaxAge = int(wizard.DefaultSessionTTL.Seconds())

	return &Server{
		store:    store,
		files:    files,
		registry: registry,
		cookies:  cookies,
		maxForm:  32 << 20,
	}
}

// SetGmailSource enables fetching CVs from Gmail
func (s *Server) SetGmailSource(g GmailFetcher) {
	s.gmail = g
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /wizard", s.handleCreate)
	mux.HandleFunc("GET /wizard", s.withSession(s.handleSnapshot))
	mux.HandleFunc("POST /wizard/upload", s.withSession(s.handleUpload))
	mux.HandleFunc("POST /wizard/upload/gmail", s.withSession(s.handleGmailUpload))
	mux.HandleFunc("POST /wizard/configure", s.withSession(s.handleConfigure))
	mux.HandleFunc("POST /wizard/generate", s.withSession(s.handleGenerate))
	mux.HandleFunc("POST /wizard/answer", s.withSession(s.handleAnswer))
	mux.HandleFunc("POST /wizard/next", s.withSession(s.step((*wizard.Controller).Next)))
	mux.HandleFunc("POST /wizard/previous", s.withSession(s.step((*wizard.Controller).Previous)))
	mux.HandleFunc("POST /wizard/goto", s.withSession(s.handleGoto))
	mux.HandleFunc("GET /wizard/results", s.withSession(s.handleResults))
	mux.HandleFunc("POST /wizard/reset", s.withSession(s.handleReset))
	mux.HandleFunc("POST /wizard/skills", s.withSession(s.handleSkills))
	mux.HandleFunc("POST /wizard/run", s.withSession(s.handleRun))
	mux.HandleFunc("POST /wizard/check", s.withSession(s.handleCheck))
	mux.HandleFunc("GET /wizard/report.html", s.withSession(s.download(wizard.FormatHTML)))
	mux.HandleFunc("GET /wizard/report.xlsx", s.withSession(s.download(wizard.FormatExcel)))
	mux.HandleFunc("GET /wizard/result.json", s.withSession(s.download(wizard.FormatJSON)))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(s.metricsMiddleware(mux, mux))
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.respondError(w, http.StatusNotFound, "NotFound", "no such endpoint")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "CV Assessment Agent",
		"version": "2.0.0",
		"endpoints": map[string]string{
			"POST /wizard?variant=quiz|challenge": "Start a wizard session",
			"GET /wizard":                         "Current session state",
			"POST /wizard/upload":                 "Upload a CV (multipart field 'file')",
			"POST /wizard/upload/gmail":           "Fetch the newest CV attachment from Gmail",
			"POST /wizard/configure":              "Set question count and difficulty",
			"POST /wizard/generate":               "Generate the quiz or challenges",
			"POST /wizard/answer":                 "Record an answer or challenge code",
			"POST /wizard/next":                   "Next step or item",
			"POST /wizard/previous":               "Previous step or item",
			"POST /wizard/goto":                   "Jump to an item",
			"GET /wizard/results":                 "Score of a finished quiz",
			"POST /wizard/reset":                  "Start over",
			"POST /wizard/skills":                 "Edit the detected top skills",
			"POST /wizard/run":                    "Run challenge code in the sandbox",
			"POST /wizard/check":                  "Syntax check challenge code",
			"GET /wizard/report.html":             "HTML report",
			"GET /wizard/report.xlsx":             "Excel workbook",
			"GET /wizard/result.json":             "Raw generation result",
			"GET /health":                         "Health check",
			"GET /metrics":                        "Prometheus metrics",
		},
	})
}

// handleHealth reports liveness and which document providers have loaded
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	providers := make(map[string]bool, len(models.SupportedKinds))
	for _, k := range models.SupportedKinds {
		providers[string(k)] = s.registry.Ready(k)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"sessions":  s.store.Len(),
		"providers": providers,
	})
}

// handleCreate starts a session and binds it to the browser cookie
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	variant, err := models.ParseVariant(r.URL.Query().Get("variant"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "ValidationError", err.Error())
		return
	}

	c, err := s.store.Create(variant)
	if err != nil {
		s.respondWizardError(w, err)
		return
	}

	session, _ := s.cookies.Get(r, cookieName)
	if old, ok := session.Values[sessionKey].(string); ok && old != "" {
		s.store.Delete(old)
	}
	session.Values[sessionKey] = c.ID()
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session cookie: %v", err)
	}

	w.Header().Set(SessionHeader, c.ID())
	s.respondJSON(w, http.StatusCreated, c.Snapshot())
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error

// withSession resolves the caller's session from the cookie or the session header
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			// A cookie signed with another secret yields an empty session
			session, _ := s.cookies.Get(r, cookieName)
			id, _ = session.Values[sessionKey].(string)
		}
		if id == "" {
			s.respondWizardError(w, fmt.Errorf("%w: start one with POST /wizard", wizard.ErrSessionNotFound))
			return
		}

		c, err := s.store.Get(id)
		if err != nil {
			s.respondWizardError(w, err)
			return
		}
		if err := h(w, r, c); err != nil {
			s.respondWizardError(w, err)
		}
	}
}

// step wraps a controller action that takes no input and answers with the new state
func (s *Server) step(action func(*wizard.Controller) error) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
		if err := action(c); err != nil {
			return err
		}
		s.respondJSON(w, http.StatusOK, c.Snapshot())
		return nil
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	s.respondJSON(w, http.StatusOK, c.Snapshot())
	return nil
}

// handleUpload extracts a CV sent as multipart field "file"
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	if err := r.ParseMultipartForm(s.maxForm); err != nil {
		return fmt.Errorf("%w: failed to parse form: %v", wizard.ErrValidation, err)
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return fmt.Errorf("%w: no file selected", wizard.ErrValidation)
	}

	up, err := s.files.ReadUpload(files[0])
	if err != nil {
		return err
	}
	log.Printf("Received %s for session %s", up.FileName, c.ID())

	if err := c.Upload(r.Context(), up); err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, c.Snapshot())
	return nil
}

// handleGmailUpload uses the newest CV attachment whose message matches the subject
func (s *Server) handleGmailUpload(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	if s.gmail == nil {
		s.respondError(w, http.StatusServiceUnavailable, "GmailUnavailable", "gmail is not configured")
		return nil
	}

	var body struct {
		Subject string `json:"subject"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if body.Subject == "" {
		return fmt.Errorf("%w: subject is required", wizard.ErrValidation)
	}

	up, err := s.gmail.FetchLatestCV(r.Context(), body.Subject)
	if err != nil {
		return err
	}
	if err := c.Upload(r.Context(), up); err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, c.Snapshot())
	return nil
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	var body struct {
		ItemCount  int               `json:"item_count"`
		Difficulty models.Difficulty `json:"difficulty"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if err := c.Configure(models.GenerationRequest{ItemCount: body.ItemCount, Difficulty: body.Difficulty}); err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, c.Snapshot())
	return nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	if err := c.Generate(r.Context()); err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, c.Snapshot())
	return nil
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	var body struct {
		ID     int    `json:"id"`
		Answer string `json:"answer"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if err := c.Answer(body.ID, body.Answer); err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, c.Snapshot())
	return nil
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	var body struct {
		Index int `json:"index"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if err := c.Goto(body.Index); err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, c.Snapshot())
	return nil
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	res, err := c.Results()
	if err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, res)
	return nil
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	c.Reset()
	s.respondJSON(w, http.StatusOK, c.Snapshot())
	return nil
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	var edit wizard.SkillEdit
	if err := decodeJSON(r, &edit); err != nil {
		return err
	}
	skills, err := c.EditSkills(edit)
	if err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, map[string][]string{"top_skills": skills})
	return nil
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	var body struct {
		ID int `json:"id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	out, err := c.RunCode(r.Context(), body.ID)
	if err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"output": out,
		"text":   out.String(),
	})
	return nil
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
	var body struct {
		ID int `json:"id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if err := c.CheckCode(body.ID); err != nil {
		return err
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

// download sends an exported report as an attachment
func (s *Server) download(format string) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, c *wizard.Controller) error {
		doc, err := c.Export(format)
		if err != nil {
			return err
		}
		writeDocument(w, doc)
		return nil
	}
}

func writeDocument(w http.ResponseWriter, doc export.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		log.Printf("Failed to write %s: %v", doc.FileName, err)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", wizard.ErrValidation, err)
	}
	return nil
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind string) int {
	switch kind {
	case "UnsupportedFormat", "ReadError", "ValidationError":
		return http.StatusBadRequest
	case "SessionNotFound", "NoAttachment":
		return http.StatusNotFound
	case "InvalidTransition", "StaleResult":
		return http.StatusConflict
	case "ParseError":
		return http.StatusUnprocessableEntity
	case "GenerationFailed", "MalformedResponse":
		return http.StatusBadGateway
	case "ProviderNotReady":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondWizardError(w http.ResponseWriter, err error) {
	kind := wizard.Kind(err)
	wizardErrors.WithLabelValues(kind).Inc()
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}
	s.respondError(w, status, kind, err.Error())
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, kind, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
		"kind":  kind,
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
