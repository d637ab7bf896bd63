// Package account drives login, token verification and account provisioning.
// Every step leaves the resulting user in the caller's session slot.
package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/AdilMir1433/User-Service/internal/auth"
	"github.com/AdilMir1433/User-Service/internal/crypto"
	"github.com/AdilMir1433/User-Service/internal/mailer"
	"github.com/AdilMir1433/User-Service/internal/media"
	"github.com/AdilMir1433/User-Service/internal/model"
	"github.com/AdilMir1433/User-Service/internal/repository"
	"github.com/AdilMir1433/User-Service/internal/session"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrInternal           = errors.New("internal_error")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidInput       = errors.New("invalid_input")
	ErrConflict           = errors.New("email_taken")
	ErrForbidden          = errors.New("forbidden")
)

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	CheckCredentials(ctx context.Context, email, password string) (model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateToken(ctx context.Context, userID int64, token string) error
}

type Flow struct {
	codec    *auth.Codec
	users    UserStore
	sessions session.Store
	mail     mailer.Mailer
	media    media.Host
}

func NewFlow(codec *auth.Codec, users UserStore, sessions session.Store, mail mailer.Mailer, host media.Host) *Flow {
	if host == nil {
		host = media.NoopHost{}
	}
	if !mail.Enabled() {
		log.Printf("account flow: mailer disabled; re-issued and signup tokens will not reach users")
	}
	return &Flow{codec: codec, users: users, sessions: sessions, mail: mail, media: host}
}

type NewUser struct {
	Name     string
	Email    string
	Password string
}

func (n NewUser) normalized() (NewUser, error) {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	if n.Name == "" || n.Email == "" || n.Password == "" {
		return n, ErrInvalidInput
	}
	return n, nil
}

// Profile is the public view of the session user.
type Profile struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           model.Role `json:"role"`
	AdminID        *int64     `json:"adminId"`
	DisplayPicture []byte     `json:"displayPicture"`
}

// Login checks the password of email. A still valid stored token logs the user
// straight in; otherwise a fresh token is issued, stored and mailed, and the
// user is sent to token verification.
func (f *Flow) Login(ctx context.Context, sessionKey, email, password string) (Destination, error) {
	if err := f.sessions.Clear(ctx, sessionKey); err != nil {
		record("login", "internal")
		return "", errors.Join(ErrInternal, err)
	}

	user, err := f.users.CheckCredentials(ctx, email, password)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		record("login", "not_found")
		return "", ErrNotFound
	case errors.Is(err, repository.ErrInvalidCredentials):
		record("login", "bad_password")
		return "", ErrInvalidCredentials
	case err != nil:
		record("login", "internal")
		return "", errors.Join(ErrInternal, err)
	}

	if ok, err := f.codec.Validate(user.Token, user); err == nil && ok {
		if err := f.sessions.Set(ctx, sessionKey, user); err != nil {
			record("login", "internal")
			return "", errors.Join(ErrInternal, err)
		}
		record("login", "token_valid")
		return DashboardFor(user.Role), nil
	} else if err != nil {
		log.Printf("login: stored token of user %d unusable: %v", user.ID, err)
	}

	token, err := f.codec.Issue(user)
	if err != nil {
		record("login", "internal")
		return "", errors.Join(ErrInternal, err)
	}
	if err := f.users.UpdateToken(ctx, user.ID, token); err != nil {
		record("login", "internal")
		return "", errors.Join(ErrInternal, fmt.Errorf("persist token: %w", err))
	}
	user.Token = token
	if err := f.sessions.Set(ctx, sessionKey, user); err != nil {
		record("login", "internal")
		return "", errors.Join(ErrInternal, err)
	}
	if err := f.mail.SendAccessToken(user.Email, token); err != nil {
		record("login", "internal")
		return "", errors.Join(ErrInternal, fmt.Errorf("mail token: %w", err))
	}
	if !f.mail.Enabled() {
		log.Printf("login: mailer disabled; token for user %d was not delivered", user.ID)
		record("login", "token_undelivered")
		return DestinationVerifyToken, nil
	}
	record("login", "token_reissued")
	return DestinationVerifyToken, nil
}

// Verify accepts a raw token submitted by the user. The token becomes the
// user's current token before it is validated.
func (f *Flow) Verify(ctx context.Context, sessionKey, token string) (Destination, error) {
	token = strings.TrimSpace(token)
	subject, err := f.codec.Subject(token)
	if err != nil {
		log.Printf("verification: token %s rejected: %v", auth.MaskToken(token), err)
		record("verify", "rejected")
		return DestinationLogin, nil
	}

	user, err := f.users.GetUserByEmail(ctx, subject)
	if errors.Is(err, repository.ErrNotFound) {
		record("verify", "not_found")
		return "", ErrNotFound
	}
	if err != nil {
		record("verify", "internal")
		return "", errors.Join(ErrInternal, err)
	}

	user.Token = token
	if err := f.users.UpdateToken(ctx, user.ID, token); err != nil {
		record("verify", "internal")
		return "", errors.Join(ErrInternal, fmt.Errorf("persist token: %w", err))
	}
	if err := f.sessions.Set(ctx, sessionKey, user); err != nil {
		record("verify", "internal")
		return "", errors.Join(ErrInternal, err)
	}

	if ok, _ := f.codec.Validate(token, user); !ok {
		record("verify", "rejected")
		return DestinationLogin, nil
	}
	record("verify", "verified")
	return DashboardFor(user.Role), nil
}

// SignupAdmin creates a self-serve account. Signups are always admins.
func (f *Flow) SignupAdmin(ctx context.Context, sessionKey string, in NewUser) (Destination, model.User, error) {
	user, err := f.create(ctx, in, model.RoleAdmin, nil, "")
	if err != nil {
		record("signup", outcome(err))
		return "", model.User{}, err
	}
	if err := f.mail.SendAccessToken(user.Email, user.Token); err != nil {
		record("signup", "internal")
		return "", model.User{}, errors.Join(ErrInternal, fmt.Errorf("mail token: %w", err))
	}
	if err := f.sessions.Set(ctx, sessionKey, user); err != nil {
		record("signup", "internal")
		return "", model.User{}, errors.Join(ErrInternal, err)
	}
	record("signup", "created")
	return DestinationWelcome, user, nil
}

// ProvisionStudent creates a student owned by the admin in the session slot.
// A non-empty picture is uploaded to the media host first.
func (f *Flow) ProvisionStudent(ctx context.Context, sessionKey string, in NewUser, picture []byte) (Destination, model.User, error) {
	return f.provision(ctx, sessionKey, in, model.RoleStudent, picture)
}

// ProvisionTeacher creates a teacher owned by the admin in the session slot.
func (f *Flow) ProvisionTeacher(ctx context.Context, sessionKey string, in NewUser) (Destination, model.User, error) {
	return f.provision(ctx, sessionKey, in, model.RoleTeacher, nil)
}

func (f *Flow) provision(ctx context.Context, sessionKey string, in NewUser, role model.Role, picture []byte) (Destination, model.User, error) {
	op := "provision_" + strings.ToLower(string(role))
	admin, err := f.sessions.Get(ctx, sessionKey)
	if err != nil {
		record(op, "internal")
		return "", model.User{}, errors.Join(ErrInternal, err)
	}
	if admin == nil {
		record(op, "unauthenticated")
		return "", model.User{}, ErrUnauthenticated
	}
	// The session user becomes the owner, so it must be an admin whatever
	// identity the request carried.
	if admin.Role != model.RoleAdmin {
		record(op, "forbidden")
		return "", model.User{}, ErrForbidden
	}

	pictureID := ""
	if len(picture) > 0 {
		pictureID, err = f.media.Upload(ctx, picture)
		if err != nil {
			record(op, "internal")
			return "", model.User{}, errors.Join(ErrInternal, fmt.Errorf("upload picture: %w", err))
		}
	}

	adminID := admin.ID
	user, err := f.create(ctx, in, role, &adminID, pictureID)
	if err != nil {
		record(op, outcome(err))
		return "", model.User{}, err
	}
	if err := f.mail.SendWelcome(user.Email, user.Name, in.Password, user.Token); err != nil {
		record(op, "internal")
		return "", model.User{}, errors.Join(ErrInternal, fmt.Errorf("mail welcome: %w", err))
	}
	record(op, "created")
	return DestinationWelcome, user, nil
}

// create issues the first token for a new account and persists both together.
func (f *Flow) create(ctx context.Context, in NewUser, role model.Role, adminID *int64, pictureID string) (model.User, error) {
	in, err := in.normalized()
	if err != nil {
		return model.User{}, err
	}
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return model.User{}, errors.Join(ErrInternal, err)
	}
	user := model.User{
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   hash,
		Role:           role,
		AdminID:        adminID,
		DisplayPicture: pictureID,
	}
	token, err := f.codec.Issue(user)
	if err != nil {
		return model.User{}, errors.Join(ErrInternal, err)
	}
	user.Token = token
	if err := f.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, ErrConflict
		}
		return model.User{}, errors.Join(ErrInternal, fmt.Errorf("persist user: %w", err))
	}
	return user, nil
}

func (f *Flow) Logout(ctx context.Context, sessionKey string) error {
	if err := f.sessions.Clear(ctx, sessionKey); err != nil {
		return errors.Join(ErrInternal, err)
	}
	return nil
}

// Current returns the session user. The display picture is best effort: a
// failed fetch leaves it nil.
func (f *Flow) Current(ctx context.Context, sessionKey string) (Profile, error) {
	user, err := f.sessions.Get(ctx, sessionKey)
	if err != nil {
		return Profile{}, errors.Join(ErrInternal, err)
	}
	if user == nil {
		return Profile{}, ErrUnauthenticated
	}
	profile := Profile{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		AdminID: user.AdminID,
	}
	if user.DisplayPicture != "" {
		picture, err := f.media.Fetch(ctx, user.DisplayPicture)
		if err != nil {
			log.Printf("session data: display picture of user %d unavailable: %v", user.ID, err)
		} else {
			profile.DisplayPicture = picture
		}
	}
	return profile, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
