package http

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/AdilMir1433/User-Service/internal/account"
	"github.com/AdilMir1433/User-Service/internal/session"
)

const maxPictureBytes = 5 << 20

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verificationRequest struct {
	Token string `json:"token" validate:"required"`
}

type newUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

func (req newUserRequest) input() account.NewUser {
	return account.NewUser{Name: req.Name, Email: req.Email, Password: req.Password}
}

type destinationResponse struct {
	Destination account.Destination `json:"destination"`
	Redirect    string              `json:"redirect"`
}

type createdResponse struct {
	destinationResponse
	User userSummary `json:"user"`
}

func routed(d account.Destination) destinationResponse {
	return destinationResponse{Destination: d, Redirect: d.Path()}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	dest, err := s.flow.Login(r.Context(), session.KeyFromContext(r.Context()), req.Email, req.Password)
	if err != nil {
		writeFlowError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, routed(dest))
}

func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	dest, err := s.flow.Verify(r.Context(), session.KeyFromContext(r.Context()), req.Token)
	if err != nil {
		writeFlowError(w, "verification", err)
		return
	}
	writeJSON(w, http.StatusOK, routed(dest))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req newUserRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	dest, user, err := s.flow.SignupAdmin(r.Context(), session.KeyFromContext(r.Context()), req.input())
	if err != nil {
		writeFlowError(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{destinationResponse: routed(dest), User: summarize(user)})
}

func (s *Server) handleSaveTeacher(w http.ResponseWriter, r *http.Request) {
	var req newUserRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	dest, user, err := s.flow.ProvisionTeacher(r.Context(), session.KeyFromContext(r.Context()), req.input())
	if err != nil {
		writeFlowError(w, "save teacher", err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{destinationResponse: routed(dest), User: summarize(user)})
}

// handleSaveStudent takes a multipart form: name, email, password and an
// optional displayPicture file.
func (s *Server) handleSaveStudent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req := newUserRequest{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if !s.valid(w, req) {
		return
	}

	var picture []byte
	file, _, err := r.FormFile("displayPicture")
	switch {
	case err == nil:
		defer file.Close()
		picture, err = io.ReadAll(io.LimitReader(file, maxPictureBytes+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_picture")
			return
		}
		if len(picture) > maxPictureBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "picture_too_large")
			return
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		writeError(w, http.StatusBadRequest, "invalid_picture")
		return
	}

	dest, user, err := s.flow.ProvisionStudent(r.Context(), session.KeyFromContext(r.Context()), req.input(), picture)
	if err != nil {
		writeFlowError(w, "save student", err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{destinationResponse: routed(dest), User: summarize(user)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.flow.Logout(r.Context(), session.KeyFromContext(r.Context())); err != nil {
		writeFlowError(w, "logout", err)
		return
	}
	writeJSON(w, http.StatusOK, routed(account.DestinationLogin))
}

func (s *Server) handleSessionData(w http.ResponseWriter, r *http.Request) {
	profile, err := s.flow.Current(r.Context(), session.KeyFromContext(r.Context()))
	if err != nil {
		writeFlowError(w, "session data", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func writeFlowError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, account.ErrNotFound):
		writeError(w, http.StatusNotFound, "user_not_found")
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, account.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "no_session")
	case errors.Is(err, account.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, account.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, account.ErrConflict):
		writeError(w, http.StatusConflict, "email_taken")
	default:
		log.Printf("%s failed: %v", op, err)
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
