package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdilMir1433/User-Service/internal/crypto"
	"github.com/AdilMir1433/User-Service/internal/db"
	"github.com/AdilMir1433/User-Service/internal/model"
)

func openTestDB(t *testing.T) *pgxpool.Pool {
	url := os.Getenv("USERS_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("USERS_TEST_DB or DATABASE_URL not set")
		return nil
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		pool.Close()
		t.Fatalf("schema error: %v", err)
	}
	return pool
}

func TestUserLifecycle(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	ctx := context.Background()
	store := NewStore(pool)
	suffix := time.Now().UnixNano()

	hash, _ := crypto.HashPassword("secret")
	admin := model.User{Name: "Admin", Email: fmt.Sprintf("Admin-%d@X.com", suffix), PasswordHash: hash, Role: model.RoleAdmin}
	if err := store.CreateUser(ctx, &admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if admin.ID == 0 {
		t.Fatalf("expected generated id")
	}
	dup := model.User{Name: "Again", Email: admin.Email, PasswordHash: hash, Role: model.RoleAdmin}
	if err := store.CreateUser(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	teacher := model.User{Name: "Teacher", Email: fmt.Sprintf("teacher-%d@x.com", suffix), PasswordHash: hash, Role: model.RoleTeacher, AdminID: &admin.ID}
	if err := store.CreateUser(ctx, &teacher); err != nil {
		t.Fatalf("create teacher: %v", err)
	}

	got, err := store.CheckCredentials(ctx, fmt.Sprintf("admin-%d@x.com", suffix), "secret")
	if err != nil || got.ID != admin.ID || got.Token != "" {
		t.Fatalf("unexpected credential check %+v err=%v", got, err)
	}
	if _, err := store.CheckCredentials(ctx, admin.Email, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := store.GetUserByEmail(ctx, "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.UpdateToken(ctx, admin.ID, "tok-1"); err != nil {
		t.Fatalf("update token: %v", err)
	}
	if got, _ := store.GetUserByID(ctx, admin.ID); got.Token != "tok-1" {
		t.Fatalf("expected stored token, got %q", got.Token)
	}
	if err := store.UpdateToken(ctx, -1, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	teachers, err := store.ListUsersByRole(ctx, model.RoleTeacher, admin.ID)
	if err != nil || len(teachers) != 1 || teachers[0].ID != teacher.ID {
		t.Fatalf("unexpected teachers %+v err=%v", teachers, err)
	}
	owner, err := store.GetAdminID(ctx, teacher.ID)
	if err != nil || owner == nil || *owner != admin.ID {
		t.Fatalf("unexpected owner %v err=%v", owner, err)
	}
	if owner, err := store.GetAdminID(ctx, admin.ID); err != nil || owner != nil {
		t.Fatalf("expected nil owner for admin, got %v err=%v", owner, err)
	}
}

func TestScores(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	ctx := context.Background()
	store := NewStore(pool)
	student := time.Now().UnixNano() % 1_000_000_000

	for i, value := range []int{3, 4} {
		score := model.Score{StudentID: student, ExamID: 5, QuestionID: student*10 + int64(i), Score: value}
		if err := store.SaveScore(ctx, &score); err != nil || score.ID == 0 {
			t.Fatalf("save score: %v", err)
		}
	}
	scores, err := store.ListScoresByStudent(ctx, student)
	if err != nil || len(scores) != 2 || scores[0].Score != 3 {
		t.Fatalf("unexpected scores %+v err=%v", scores, err)
	}
	score, err := store.GetScoreByQuestion(ctx, student*10+1)
	if err != nil || score.Score != 4 {
		t.Fatalf("unexpected question score %+v err=%v", score, err)
	}
	if _, err := store.GetScoreByQuestion(ctx, -5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
