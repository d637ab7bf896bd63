package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/AdilMir1433/User-Service/internal/account"
	"github.com/AdilMir1433/User-Service/internal/auth"
	"github.com/AdilMir1433/User-Service/internal/config"
	"github.com/AdilMir1433/User-Service/internal/model"
	"github.com/AdilMir1433/User-Service/internal/report"
	"github.com/AdilMir1433/User-Service/internal/session"
)

// Directory answers the user lookups the exam services make.
type Directory interface {
	ListUsersByRole(ctx context.Context, role model.Role, adminID int64) ([]model.User, error)
	GetAdminID(ctx context.Context, userID int64) (*int64, error)
}

type Server struct {
	cfg      config.Config
	flow     *account.Flow
	reports  *report.Service
	users    Directory
	gate     *auth.Gate
	limiter  *multiLimiter
	validate *validator.Validate

	trustedProxies map[string]struct{}
}

func NewServer(cfg config.Config, flow *account.Flow, reports *report.Service, users Directory, gate *auth.Gate) *Server {
	perMinute := cfg.LoginRatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	return &Server{
		cfg:      cfg,
		flow:     flow,
		reports:  reports,
		users:    users,
		gate:     gate,
		limiter:  newMultiLimiter(rate.Limit(float64(perMinute)/60), perMinute, 10*time.Minute),
		validate: validator.New(),

		trustedProxies: trustedSet(cfg.TrustedProxies),
	}
}

func trustedSet(proxies []string) map[string]struct{} {
	set := make(map[string]struct{}, len(proxies))
	for _, proxy := range proxies {
		set[proxy] = struct{}{}
	}
	return set
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(s.cfg.SessionCookie, s.cfg.SessionTTL))
		r.Use(s.gate.Middleware)

		r.Route("/users/authentication", func(r chi.Router) {
			r.With(s.rateLimit).Post("/login", s.handleLogin)
			r.With(s.rateLimit).Post("/verification", s.handleVerification)
			r.Post("/create-user", s.handleCreateUser)
			r.With(auth.RequireRole(model.RoleAdmin)).Post("/save-student", s.handleSaveStudent)
			r.With(auth.RequireRole(model.RoleAdmin)).Post("/save-teacher", s.handleSaveTeacher)
			r.Post("/logout", s.handleLogout)
			r.Get("/sessionData", s.handleSessionData)

			r.With(auth.RequireAuthenticated).Get("/get-all-students", s.handleGetAllStudents)
			r.Post("/get-teacher-id", s.handleGetTeacherIDs)
			r.Post("/get-admin-id", s.handleGetAdminID)

			r.Post("/save-score", s.handleSaveScore)
			r.Get("/get-score-of-student", s.handleScoresOfStudent)
			r.Get("/get-question-score", s.handleQuestionScore)
			r.Get("/get-scores-and-questions", s.handleScoresAndQuestions)
			r.Get("/get-exams-of-student", s.handleExamsOfStudent)
			r.Get("/get-total-of-student", s.handleTotalOfStudent)
		})
	})

	return r
}

type userSummary struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           model.Role `json:"role"`
	AdminID        *int64     `json:"adminId,omitempty"`
	DisplayPicture string     `json:"displayPicture,omitempty"`
}

func summarize(user model.User) userSummary {
	return userSummary{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		AdminID:        user.AdminID,
		DisplayPicture: user.DisplayPicture,
	}
}

func queryID(r *http.Request, names ...string) (int64, bool) {
	for _, name := range names {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}
	return 0, false
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

// decodeValid decodes a JSON body and runs its validate tags. It writes the
// error response itself and reports whether the handler may continue.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := decodeJSON(r, out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return false
	}
	return s.valid(w, out)
}

func (s *Server) valid(w http.ResponseWriter, in interface{}) bool {
	err := s.validate.Struct(in)
	if err == nil {
		return true
	}
	fields := []string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()[:1])+fe.Field()[1:])
		}
	}
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "validation_failed", "fields": fields})
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
