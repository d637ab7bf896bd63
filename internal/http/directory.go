package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/AdilMir1433/User-Service/internal/auth"
	"github.com/AdilMir1433/User-Service/internal/model"
	"github.com/AdilMir1433/User-Service/internal/report"
	"github.com/AdilMir1433/User-Service/internal/repository"
)

type scoreRequest struct {
	StudentID  int64 `json:"studentId" validate:"required,gt=0"`
	ExamID     int64 `json:"examId" validate:"required,gt=0"`
	QuestionID int64 `json:"questionId" validate:"required,gt=0"`
	Score      int   `json:"score" validate:"gte=0"`
}

// handleGetAllStudents lists the students of the caller's admin.
func (s *Server) handleGetAllStudents(w http.ResponseWriter, r *http.Request) {
	user := auth.IdentityFromContext(r.Context()).User
	adminID := user.ID
	if user.Role != model.RoleAdmin {
		if user.AdminID == nil {
			writeJSON(w, http.StatusOK, []userSummary{})
			return
		}
		adminID = *user.AdminID
	}
	students, err := s.users.ListUsersByRole(r.Context(), model.RoleStudent, adminID)
	if err != nil {
		log.Printf("list students failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	out := make([]userSummary, 0, len(students))
	for _, student := range students {
		out = append(out, summarize(student))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTeacherIDs(w http.ResponseWriter, r *http.Request) {
	adminID, ok := queryID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	teachers, err := s.users.ListUsersByRole(r.Context(), model.RoleTeacher, adminID)
	if err != nil {
		log.Printf("list teachers failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	ids := make([]int64, 0, len(teachers))
	for _, teacher := range teachers {
		ids = append(ids, teacher.ID)
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleGetAdminID(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	adminID, err := s.users.GetAdminID(r.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	if err != nil {
		log.Printf("get admin id failed: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]*int64{"adminId": adminID})
}

func (s *Server) handleSaveScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	score := model.Score{StudentID: req.StudentID, ExamID: req.ExamID, QuestionID: req.QuestionID, Score: req.Score}
	if err := s.reports.SaveScore(r.Context(), &score); err != nil {
		writeReportError(w, "save score", err)
		return
	}
	writeJSON(w, http.StatusCreated, score)
}

func (s *Server) handleScoresOfStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := queryID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	scores, err := s.reports.ScoresOf(r.Context(), studentID)
	if err != nil {
		writeReportError(w, "scores of student", err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleQuestionScore(w http.ResponseWriter, r *http.Request) {
	questionID, ok := queryID(r, "questionID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	score, err := s.reports.QuestionScore(r.Context(), questionID)
	if err != nil {
		writeReportError(w, "question score", err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleScoresAndQuestions(w http.ResponseWriter, r *http.Request) {
	examID, okExam := queryID(r, "examID")
	studentID, okStudent := queryID(r, "studentID")
	if !okExam || !okStudent {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	pairs, err := s.reports.QuestionsAndScores(r.Context(), examID, studentID)
	if err != nil {
		writeReportError(w, "scores and questions", err)
		return
	}
	writeJSON(w, http.StatusOK, pairs)
}

func (s *Server) handleExamsOfStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := queryID(r, "studentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	exams, err := s.reports.ExamsOf(r.Context(), studentID)
	if err != nil {
		writeReportError(w, "exams of student", err)
		return
	}
	writeJSON(w, http.StatusOK, exams)
}

func (s *Server) handleTotalOfStudent(w http.ResponseWriter, r *http.Request) {
	examID, okExam := queryID(r, "examId", "examID")
	userID, okUser := queryID(r, "userID", "userId")
	if !okExam || !okUser {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	total, err := s.reports.Total(r.Context(), examID, userID)
	if err != nil {
		writeReportError(w, "total of student", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": total})
}

func writeReportError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "invalid_score")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "score_not_found")
	default:
		log.Printf("%s failed: %v", op, err)
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
