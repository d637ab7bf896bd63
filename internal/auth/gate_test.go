package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdilMir1433/User-Service/internal/model"
	"github.com/AdilMir1433/User-Service/internal/session"
)

type fakeUsers struct {
	byEmail map[string]model.User
	calls   int
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	f.calls++
	user, ok := f.byEmail[email]
	if !ok {
		return model.User{}, ErrUnknownUser
	}
	return user, nil
}

type observed struct {
	called bool
	id     *Identity
	header string
}

func recordingHandler(obs *observed) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		obs.called = true
		obs.id = IdentityFromContext(r.Context())
		obs.header = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})
}

func newGateFixture(t *testing.T) (*Gate, *Codec, *fakeUsers, *session.MemoryStore, model.User) {
	t.Helper()
	codec := NewCodec("gate-secret")
	student := model.User{ID: 9, Name: "Sam", Email: "sam@x.com", Role: model.RoleStudent}
	users := &fakeUsers{byEmail: map[string]model.User{student.Email: student}}
	sessions := session.NewMemoryStore()
	return NewGate(codec, users, sessions), codec, users, sessions, student
}

func serve(gate *Gate, req *http.Request) (*httptest.ResponseRecorder, *observed) {
	obs := &observed{}
	rec := httptest.NewRecorder()
	gate.Middleware(recordingHandler(obs)).ServeHTTP(rec, req)
	return rec, obs
}

func TestGateAuthenticatesBearerHeader(t *testing.T) {
	gate, codec, _, _, student := newGateFixture(t)
	token, err := codec.Issue(student)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/sessionData", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec, obs := serve(gate, req)

	if rec.Code != http.StatusOK || !obs.called {
		t.Fatalf("expected request to reach handler, got %d", rec.Code)
	}
	if obs.id == nil || obs.id.User.ID != student.ID {
		t.Fatalf("expected identity for student, got %+v", obs.id)
	}
	if len(obs.id.Authorities) != 1 || obs.id.Authorities[0] != "ROLE_STUDENT" {
		t.Fatalf("unexpected authorities %v", obs.id.Authorities)
	}
}

func TestGateAllowsAnonymousRequests(t *testing.T) {
	gate, _, users, _, _ := newGateFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = req.WithContext(session.WithKey(req.Context(), "empty-session"))
	rec, obs := serve(gate, req)

	if rec.Code != http.StatusOK || !obs.called {
		t.Fatalf("expected anonymous request to proceed, got %d", rec.Code)
	}
	if obs.id != nil {
		t.Fatalf("expected no identity, got %+v", obs.id)
	}
	if users.calls != 0 {
		t.Fatalf("expected no user lookup, got %d", users.calls)
	}
}

func TestGateFallsBackToSessionToken(t *testing.T) {
	gate, codec, _, sessions, student := newGateFixture(t)
	token, err := codec.Issue(student)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	student.Token = token
	if err := sessions.Set(context.Background(), "k1", student); err != nil {
		t.Fatalf("session set error: %v", err)
	}

	for _, header := range []string{"", "Basic c2FtOnB3"} {
		req := httptest.NewRequest(http.MethodGet, "/sessionData", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		req = req.WithContext(session.WithKey(req.Context(), "k1"))
		_, obs := serve(gate, req)

		if obs.id == nil || obs.id.User.Email != student.Email {
			t.Fatalf("header %q: expected identity from session, got %+v", header, obs.id)
		}
		if obs.header != "Bearer "+token {
			t.Fatalf("header %q: expected synthesized bearer header, got %q", header, obs.header)
		}
		if header != "" && req.Header.Get("Authorization") != header {
			t.Fatalf("original request header must not be mutated")
		}
	}
}

func TestGateIgnoresBadTokens(t *testing.T) {
	gate, codec, _, _, student := newGateFixture(t)
	stale := fixedCodec("gate-secret", time.Now().Add(-2*TokenValidity))
	expired, err := stale.Issue(student)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	ghost, err := codec.Issue(model.User{Email: "ghost@x.com"})
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	forged, err := NewCodec("forged").Issue(student)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	for name, token := range map[string]string{
		"expired":   expired,
		"unknown":   ghost,
		"forged":    forged,
		"malformed": "garbage",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec, obs := serve(gate, req)
		if rec.Code != http.StatusOK || !obs.called {
			t.Fatalf("%s: expected request to proceed, got %d", name, rec.Code)
		}
		if obs.id != nil {
			t.Fatalf("%s: expected no identity, got %+v", name, obs.id)
		}
	}
}

func TestGateSkipsWhenAlreadyAuthenticated(t *testing.T) {
	gate, _, users, _, student := newGateFixture(t)
	existing := &Identity{User: student, Token: "earlier"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	req = req.WithContext(WithIdentity(req.Context(), existing))
	_, obs := serve(gate, req)

	if obs.id != existing {
		t.Fatalf("expected existing identity to be kept")
	}
	if users.calls != 0 {
		t.Fatalf("expected no re-authentication, got %d lookups", users.calls)
	}
}
