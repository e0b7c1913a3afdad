package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prize_wheel/pkg/token"
)

var secret = []byte("secret")

func protected(t *testing.T) http.Handler {
	return Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := SessionIDFromContext(r.Context())
		if !ok {
			t.Error("expected a session ID in the context")
		}
		_, _ = w.Write([]byte(id))
	}))
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	tok, _ := token.GenerateAccessToken("abc", secret, time.Minute)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	protected(t).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "abc" {
		t.Errorf("expected session abc, got %q", w.Body.String())
	}
}

func TestAuthAcceptsQueryToken(t *testing.T) {
	tok, _ := token.GenerateAccessToken("ws", secret, time.Minute)

	r := httptest.NewRequest(http.MethodGet, "/?token="+tok, nil)
	w := httptest.NewRecorder()
	protected(t).ServeHTTP(w, r)

	if w.Code != http.StatusOK || w.Body.String() != "ws" {
		t.Errorf("expected 200 ws, got %d %q", w.Code, w.Body.String())
	}
}

func TestAuthRejects(t *testing.T) {
	bad, _ := token.GenerateAccessToken("abc", []byte("other"), time.Minute)

	for name, header := range map[string]string{
		"missing":   "",
		"wrong key": "Bearer " + bad,
		"scheme":    "Basic abc",
	} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		Auth(secret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Errorf("%s: handler must not run", name)
		})).ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, w.Code)
		}
	}
}
