package crypto

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		attempt  string
		match    bool
	}{
		{"same password", "s3cret-pass", "s3cret-pass", true},
		{"wrong password", "s3cret-pass", "s3cret-pasS", false},
		{"empty attempt", "s3cret-pass", "", false},
		{"empty password round trip", "", "", true},
		{"empty password rejects others", "", "x", false},
	}
	for _, tc := range cases {
		hash, err := HashPassword(tc.password)
		if err != nil {
			t.Fatalf("%s: hash error: %v", tc.name, err)
		}
		if hash == tc.password {
			t.Fatalf("%s: hash must not equal the password", tc.name)
		}
		cost, err := bcrypt.Cost([]byte(hash))
		if err != nil || cost != bcrypt.DefaultCost {
			t.Fatalf("%s: expected cost %d, got %d err=%v", tc.name, bcrypt.DefaultCost, cost, err)
		}
		err = CheckPassword(hash, tc.attempt)
		if tc.match && err != nil {
			t.Fatalf("%s: expected match, got %v", tc.name, err)
		}
		if !tc.match && err == nil {
			t.Fatalf("%s: expected mismatch", tc.name)
		}
	}
}

func TestHashesAreSalted(t *testing.T) {
	first, _ := HashPassword("same")
	second, _ := HashPassword("same")
	if first == second {
		t.Fatalf("expected distinct salts per hash")
	}
}

func TestCheckPasswordRejectsGarbageHash(t *testing.T) {
	if err := CheckPassword("not-a-bcrypt-hash", "secret"); err == nil {
		t.Fatalf("expected malformed hash to fail")
	}
}
