package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
  id              BIGSERIAL PRIMARY KEY,
  name            TEXT NOT NULL,
  email           TEXT NOT NULL UNIQUE,
  password_hash   TEXT NOT NULL,
  role            TEXT NOT NULL CHECK (role IN ('ADMIN', 'TEACHER', 'STUDENT')),
  admin_id        BIGINT REFERENCES users(id),
  token           TEXT,
  display_picture TEXT NOT NULL DEFAULT '',
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS users_role_admin_idx ON users (role, admin_id);

CREATE TABLE IF NOT EXISTS scores (
  id          BIGSERIAL PRIMARY KEY,
  student_id  BIGINT NOT NULL,
  exam_id     BIGINT NOT NULL,
  question_id BIGINT NOT NULL,
  score       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS scores_student_exam_idx ON scores (student_id, exam_id);
`

// EnsureSchema creates the users and scores tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
