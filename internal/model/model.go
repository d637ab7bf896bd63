package model

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// Authority is the role-derived authorization attribute attached to an
// authenticated request.
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	AdminID        *int64    `json:"adminId,omitempty"`
	Token          string    `json:"token,omitempty"`
	DisplayPicture string    `json:"displayPicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// LoginKey is the value tokens are issued for.
func (u User) LoginKey() string {
	return u.Email
}

type Score struct {
	ID         int64 `json:"id"`
	StudentID  int64 `json:"studentId"`
	ExamID     int64 `json:"examId"`
	QuestionID int64 `json:"questionId"`
	Score      int   `json:"score"`
}

type QuestionAndScore struct {
	QuestionID int64 `json:"questionId"`
	Score      int   `json:"score"`
}
