// Package report answers score queries for the exam services. Every
// aggregation filters the stored scores of a student and then folds them.
package report

import (
	"context"
	"errors"

	"github.com/AdilMir1433/User-Service/internal/model"
)

var ErrInvalidScore = errors.New("invalid_score")

type ScoreStore interface {
	SaveScore(ctx context.Context, score *model.Score) error
	ListScoresByStudent(ctx context.Context, studentID int64) ([]model.Score, error)
	GetScoreByQuestion(ctx context.Context, questionID int64) (model.Score, error)
}

type Service struct {
	store ScoreStore
}

func NewService(store ScoreStore) *Service {
	return &Service{store: store}
}

func (s *Service) SaveScore(ctx context.Context, score *model.Score) error {
	if score == nil || score.StudentID <= 0 || score.ExamID <= 0 || score.QuestionID <= 0 {
		return ErrInvalidScore
	}
	return s.store.SaveScore(ctx, score)
}

func (s *Service) ScoresOf(ctx context.Context, studentID int64) ([]model.Score, error) {
	scores, err := s.store.ListScoresByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if scores == nil {
		scores = []model.Score{}
	}
	return scores, nil
}

func (s *Service) QuestionScore(ctx context.Context, questionID int64) (model.Score, error) {
	return s.store.GetScoreByQuestion(ctx, questionID)
}

func (s *Service) QuestionsAndScores(ctx context.Context, examID, studentID int64) ([]model.QuestionAndScore, error) {
	scores, err := s.store.ListScoresByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return QuestionsAndScores(scores, examID), nil
}

func (s *Service) ExamsOf(ctx context.Context, studentID int64) ([]int64, error) {
	scores, err := s.store.ListScoresByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return Exams(scores), nil
}

func (s *Service) Total(ctx context.Context, examID, studentID int64) (int, error) {
	scores, err := s.store.ListScoresByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return Total(scores, examID, studentID), nil
}

// Total sums the scores of studentID in examID.
func Total(scores []model.Score, examID, studentID int64) int {
	total := 0
	for _, score := range scores {
		if score.ExamID == examID && score.StudentID == studentID {
			total += score.Score
		}
	}
	return total
}

// Exams lists the distinct exam ids in first-seen order.
func Exams(scores []model.Score) []int64 {
	seen := make(map[int64]struct{}, len(scores))
	exams := []int64{}
	for _, score := range scores {
		if _, ok := seen[score.ExamID]; ok {
			continue
		}
		seen[score.ExamID] = struct{}{}
		exams = append(exams, score.ExamID)
	}
	return exams
}

func QuestionsAndScores(scores []model.Score, examID int64) []model.QuestionAndScore {
	out := []model.QuestionAndScore{}
	for _, score := range scores {
		if score.ExamID != examID {
			continue
		}
		out = append(out, model.QuestionAndScore{QuestionID: score.QuestionID, Score: score.Score})
	}
	return out
}
