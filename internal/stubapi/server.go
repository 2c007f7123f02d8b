package stubapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/mutuals/internal/delivery"
	"github.com/phrazzld/mutuals/internal/domain"
	"github.com/phrazzld/mutuals/internal/domain/follow"
)

// Route paths served by the stub.
const (
	RegisterPath    = "/hiring/generateWebhook"
	WebhookPath     = "/hiring/testWebhook"
	SubmissionsPath = "/hiring/submissions"
)

// Options configures a Server.
type Options struct {
	// Users is served as data.users; nil means DefaultUsers.
	Users []json.RawMessage

	// FailFirst makes the webhook answer 503 to that many deliveries.
	FailFirst int

	// OmitUsers drops data.users from the registration response.
	OmitUsers bool
}

// Submission is an outcome accepted by the webhook. Correct reports whether
// it lists exactly the mutual pairs of the served users, once each.
type Submission struct {
	RegNo      string    `json:"regNo"`
	Outcome    [][2]int  `json:"outcome"`
	Correct    bool      `json:"correct"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// registrationBody is the registration request with validation rules.
type registrationBody struct {
	Name  string `json:"name" validate:"required"`
	RegNo string `json:"regNo" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Server holds the stub's state. It is safe for concurrent use.
type Server struct {
	opts     Options
	validate *validator.Validate
	logger   *slog.Logger
	expected domain.ResultSet

	mu          sync.Mutex
	tokens      map[string]string // token -> regNo
	deliveries  int
	submissions []Submission
}

// NewServer creates a Server.
func NewServer(opts Options, logger *slog.Logger) *Server {
	if opts.Users == nil {
		opts.Users = DefaultUsers()
	}
	logger = logger.With("component", "stub_api")

	expected := domain.ResultSet{}
	if !opts.OmitUsers {
		g, _ := follow.NewBuilder(logger, follow.LastWins).Build(opts.Users)
		expected = follow.Extract(g)
	}

	return &Server{
		opts:     opts,
		validate: validator.New(),
		logger:   logger,
		expected: expected,
		tokens:   make(map[string]string),
	}
}

// matches reports whether got lists exactly the expected pairs, each once.
func (s *Server) matches(got []domain.MutualPair) bool {
	unique := domain.NewResultSet(got...)
	if len(unique) != len(got) || len(unique) != len(s.expected) {
		return false
	}
	for _, p := range s.expected {
		if !unique.Contains(p) {
			return false
		}
	}
	return true
}

// Router returns the HTTP handler exposing the stub's routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post(RegisterPath, s.handleRegister)
	r.Post(WebhookPath, s.handleWebhook)
	r.Get(SubmissionsPath, s.handleSubmissions)

	return r
}

// Submissions returns a copy of the accepted outcomes.
func (s *Server) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// Deliveries returns how many webhook calls carried a valid token.
func (s *Server) Deliveries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deliveries
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request handled",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registrationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(body); err != nil {
		respondError(w, http.StatusBadRequest, "name, regNo and a valid email are required")
		return
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.tokens[token] = body.RegNo
	s.mu.Unlock()

	resp := map[string]any{
		"webhook":     webhookURL(r),
		"accessToken": token,
	}
	if !s.opts.OmitUsers {
		resp["data"] = map[string]any{"users": s.opts.Users}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Authorization")

	s.mu.Lock()
	regNo, known := s.tokens[token]
	if !known {
		s.mu.Unlock()
		respondError(w, http.StatusUnauthorized, "unknown access token")
		return
	}
	s.deliveries++
	attempt := s.deliveries
	s.mu.Unlock()

	if attempt <= s.opts.FailFirst {
		respondError(w, http.StatusServiceUnavailable, "try again later")
		return
	}

	var outcome delivery.Outcome
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		respondError(w, http.StatusBadRequest, "invalid outcome: "+err.Error())
		return
	}
	if outcome.RegNo != regNo {
		respondError(w, http.StatusBadRequest, "regNo does not match registration")
		return
	}

	sub := Submission{
		RegNo:      outcome.RegNo,
		Outcome:    make([][2]int, 0, len(outcome.Outcome)),
		Correct:    s.matches(outcome.Outcome),
		ReceivedAt: time.Now().UTC(),
	}
	for _, p := range outcome.Outcome {
		sub.Outcome = append(sub.Outcome, [2]int{p.A, p.B})
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, sub)
	s.mu.Unlock()

	s.logger.Info("outcome received",
		"reg_no", sub.RegNo,
		"pairs", len(sub.Outcome),
		"correct", sub.Correct)

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Submissions())
}

func webhookURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + WebhookPath
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
