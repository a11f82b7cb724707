package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestDevTokenParsing(t *testing.T) {
	v := &Verifier{Mode: "dev"}
	p, err := v.Verify("alice:Planner")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Subject != "alice" || p.Role != "planner" {
		t.Fatalf("principal = %+v", p)
	}
	if _, err := v.Verify("no-role"); err == nil {
		t.Fatal("dev token without role must fail")
	}
}

func TestPrincipalPermissions(t *testing.T) {
	cases := []struct {
		role      string
		admin     bool
		canSubmit bool
	}{
		{"admin", true, true},
		{"planner", false, true},
		{"viewer", false, false},
		{"", false, false},
	}
	for _, c := range cases {
		p := Principal{Subject: "s", Role: c.role}
		if p.IsAdmin() != c.admin {
			t.Fatalf("IsAdmin(%q) = %v", c.role, p.IsAdmin())
		}
		if p.CanSubmit() != c.canSubmit {
			t.Fatalf("CanSubmit(%q) = %v", c.role, p.CanSubmit())
		}
	}
}

func hs256Token(t *testing.T, secret []byte, claims map[string]any) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(b)
	}
	signing := enc(map[string]string{"alg": "HS256", "typ": "JWT"}) + "." + enc(claims)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signing))
	return signing + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func TestHMACVerification(t *testing.T) {
	secret := []byte("shared-secret")
	v := &Verifier{Mode: "hmac", HMACSecret: secret, SubjectClaim: "sub", RoleClaim: "role"}

	tok := hs256Token(t, secret, map[string]any{"sub": "bob", "role": "Admin"})
	p, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Subject != "bob" || p.Role != "admin" {
		t.Fatalf("principal = %+v", p)
	}

	if _, err := v.Verify(hs256Token(t, []byte("other"), map[string]any{"sub": "bob"})); err == nil {
		t.Fatal("wrong secret must fail")
	}
	if _, err := v.Verify("not.a.token"); err == nil {
		t.Fatal("garbage token must fail")
	}
	if _, err := v.Verify(hs256Token(t, secret, map[string]any{"role": "admin"})); err == nil {
		t.Fatal("missing subject claim must fail")
	}
}

func TestHMACRoleDefaultsToViewer(t *testing.T) {
	secret := []byte("s")
	v := &Verifier{Mode: "hmac", HMACSecret: secret, SubjectClaim: "sub", RoleClaim: "role"}
	p, err := v.Verify(hs256Token(t, secret, map[string]any{"sub": "carol"}))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Role != "viewer" {
		t.Fatalf("role = %q, want viewer", p.Role)
	}
}

func TestCustomClaimNames(t *testing.T) {
	secret := []byte("s")
	v := &Verifier{Mode: "hmac", HMACSecret: secret, SubjectClaim: "email", RoleClaim: "access"}
	p, err := v.Verify(hs256Token(t, secret, map[string]any{"email": "d@example.org", "access": "planner"}))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Subject != "d@example.org" || p.Role != "planner" {
		t.Fatalf("principal = %+v", p)
	}
}
