package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdilMir1433/User-Service/internal/crypto"
	"github.com/AdilMir1433/User-Service/internal/model"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrDuplicate          = errors.New("duplicate")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

const userColumns = `id, name, email, password_hash, role, admin_id, COALESCE(token, ''), display_picture, created_at, updated_at`

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email))
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, userID int64) (model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// CheckCredentials loads the user behind email and verifies password against
// the stored bcrypt hash.
func (s *Store) CheckCredentials(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// CreateUser inserts user and fills in the generated id and timestamps.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, admin_id, token, display_picture, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		RETURNING id
	`, user.Name, user.Email, user.PasswordHash, string(user.Role), user.AdminID, user.Token, user.DisplayPicture, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// UpdateToken replaces the current token of a user. The previous value is
// simply overwritten.
func (s *Store) UpdateToken(ctx context.Context, userID int64, token string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET token = NULLIF($1, ''), updated_at = $2 WHERE id = $3
	`, token, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsersByRole returns the users with role provisioned by adminID.
func (s *Store) ListUsersByRole(ctx context.Context, role model.Role, adminID int64) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users WHERE role = $1 AND admin_id = $2 ORDER BY id
	`, string(role), adminID)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// GetAdminID returns the owning admin of a user; nil for admins themselves.
func (s *Store) GetAdminID(ctx context.Context, userID int64) (*int64, error) {
	var adminID *int64
	err := s.pool.QueryRow(ctx, `SELECT admin_id FROM users WHERE id = $1`, userID).Scan(&adminID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return adminID, err
}

func (s *Store) SaveScore(ctx context.Context, score *model.Score) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO scores (student_id, exam_id, question_id, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, score.StudentID, score.ExamID, score.QuestionID, score.Score).Scan(&score.ID)
}

func (s *Store) ListScoresByStudent(ctx context.Context, studentID int64) ([]model.Score, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, student_id, exam_id, question_id, score FROM scores WHERE student_id = $1 ORDER BY id
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []model.Score
	for rows.Next() {
		var score model.Score
		if err := rows.Scan(&score.ID, &score.StudentID, &score.ExamID, &score.QuestionID, &score.Score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

func (s *Store) GetScoreByQuestion(ctx context.Context, questionID int64) (model.Score, error) {
	var score model.Score
	err := s.pool.QueryRow(ctx, `
		SELECT id, student_id, exam_id, question_id, score FROM scores WHERE question_id = $1 ORDER BY id LIMIT 1
	`, questionID).Scan(&score.ID, &score.StudentID, &score.ExamID, &score.QuestionID, &score.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Score{}, ErrNotFound
	}
	return score, err
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.AdminID,
		&user.Token,
		&user.DisplayPicture,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	user.Role = model.Role(role)
	return user, nil
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
