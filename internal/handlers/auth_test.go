package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
)

func TestRegistration(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/register/", "", map[string]string{
		"email": "a@x.com", "name": "A", "password": "p1secret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body.String())
	}

	resp := decode(t, w)
	if resp["message"] != "Registration Successful" {
		t.Errorf("unexpected response: %s", spew.Sdump(resp))
	}
	token, ok := resp["token"].(map[string]interface{})
	if !ok || token["access"] == "" || token["refresh"] == "" {
		t.Errorf("missing token pair: %s", spew.Sdump(resp))
	}
}

func TestRegistrationValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body map[string]string
		want string // field expected in the error map
	}{
		{"missing email", map[string]string{"name": "A", "password": "p1secret"}, "email"},
		{"bad email", map[string]string{"email": "nope", "name": "A", "password": "p1secret"}, "email"},
		{"missing name", map[string]string{"email": "a@x.com", "password": "p1secret"}, "name"},
		{"missing password", map[string]string{"email": "a@x.com", "name": "A"}, "password"},
		{"short password", map[string]string{"email": "a@x.com", "name": "A", "password": "p1"}, "password"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := env.do("POST", "/api/register/", "", c.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body.String())
			}
			resp := decode(t, w)
			errs, ok := resp["errors"].(map[string]interface{})
			if !ok {
				t.Fatalf("no errors envelope: %s", w.Body.String())
			}
			if _, ok := errs[c.want]; !ok {
				t.Errorf("no error on %q: %s", c.want, spew.Sdump(errs))
			}
		})
	}
}

func TestRegistrationDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register("a@x.com", "A", "p1secret")

	w := env.do("POST", "/api/register/", "", map[string]string{
		"email": "a@x.com", "name": "B", "password": "p2secret",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	errs, _ := resp["errors"].(map[string]interface{})
	if _, ok := errs["email"]; !ok {
		t.Errorf("no email error: %s", w.Body.String())
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register("a@x.com", "A", "p1secret")

	w := env.do("POST", "/api/login/", "", map[string]string{
		"email": "a@x.com", "password": "p1secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["message"] != "Login Success" {
		t.Errorf("unexpected response: %s", spew.Sdump(resp))
	}
	if _, ok := resp["token"].(map[string]interface{}); !ok {
		t.Errorf("missing token pair: %s", w.Body.String())
	}
}

// Unknown email and wrong password must be indistinguishable on the wire.
func TestLoginFailureIsUniform(t *testing.T) {
	env := newTestEnv(t)
	env.register("a@x.com", "A", "p1secret")

	wrongPass := env.do("POST", "/api/login/", "", map[string]string{
		"email": "a@x.com", "password": "wrong-pass",
	})
	unknown := env.do("POST", "/api/login/", "", map[string]string{
		"email": "nobody@x.com", "password": "p1secret",
	})

	if wrongPass.Code != http.StatusNotFound {
		t.Errorf("wrong password: status = %d, want 404", wrongPass.Code)
	}
	if wrongPass.Code != unknown.Code || wrongPass.Body.String() != unknown.Body.String() {
		t.Errorf("failure responses differ:\n%s\n%s", wrongPass.Body.String(), unknown.Body.String())
	}

	resp := decode(t, wrongPass)
	errs, _ := resp["errors"].(map[string]interface{})
	if _, ok := errs["field_errors"]; !ok {
		t.Errorf("missing field_errors: %s", wrongPass.Body.String())
	}
}

func TestTokenRefresh(t *testing.T) {
	env := newTestEnv(t)
	pair := env.register("a@x.com", "A", "p1secret")

	w := env.do("POST", "/api/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}

	access, _ := decode(t, w)["access"].(string)
	if access == "" {
		t.Fatalf("no access token in response: %s", w.Body.String())
	}

	// The refreshed access token works as a bearer credential.
	env.createPost(access, "t1", "c1")
}

func TestTokenRefreshRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	pair := env.register("a@x.com", "A", "p1secret")

	w := env.do("POST", "/api/token/refresh/", "", map[string]string{"refresh": pair.Access})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401; body %s", w.Code, w.Body.String())
	}
}

func TestTokenRefreshExpired(t *testing.T) {
	env := newTestEnv(t)
	pair := env.register("a@x.com", "A", "p1secret")

	env.clock.Advance(25 * time.Hour)

	w := env.do("POST", "/api/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401; body %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["code"] != "token_not_valid" || resp["detail"] != "Token is invalid or expired" {
		t.Errorf("unexpected error body: %s", w.Body.String())
	}
}

func TestTokenVerify(t *testing.T) {
	env := newTestEnv(t)
	pair := env.register("a@x.com", "A", "p1secret")

	for _, tok := range []string{pair.Access, pair.Refresh} {
		w := env.do("POST", "/api/token/verify/", "", map[string]string{"token": tok})
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200; body %s", w.Code, w.Body.String())
		}
	}

	w := env.do("POST", "/api/token/verify/", "", map[string]string{"token": "garbage"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", w.Code)
	}

	w = env.do("POST", "/api/token/verify/", "", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing token field: status = %d, want 400", w.Code)
	}
}
