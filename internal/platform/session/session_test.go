package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oklog/ulid/v2"
)

func serveWithSession(t *testing.T, cookie *http.Cookie) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromRequest(r)
		if !ok {
			t.Error("session id missing from request context")
		}
		seen = id
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddlewareIssuesCookieWhenAbsent(t *testing.T) {
	seen, rec := serveWithSession(t, nil)
	if seen == "" {
		t.Fatal("no session id assigned")
	}
	if _, err := ulid.Parse(seen); err != nil {
		t.Fatalf("session id %q is not a ULID: %v", seen, err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != seen {
		t.Fatalf("cookie = %s=%s, want %s=%s", c.Name, c.Value, CookieName, seen)
	}
	if !c.HttpOnly || c.Path != "/" {
		t.Fatalf("cookie attributes = %+v", c)
	}
}

func TestMiddlewareReusesValidCookie(t *testing.T) {
	existing := ulid.Make().String()
	seen, rec := serveWithSession(t, &http.Cookie{Name: CookieName, Value: existing})
	if seen != existing {
		t.Fatalf("session id = %q, want %q", seen, existing)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("cookie reissued for a valid session")
	}
}

func TestMiddlewareReplacesMalformedCookie(t *testing.T) {
	cases := map[string]string{
		"blank":          "   ",
		"non-alphanum":   "abc-def",
		"path traversal": "../../etc",
		"too long":       "A123456789012345678901234567890123456789012345678901234567890123456789",
	}

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			seen, rec := serveWithSession(t, &http.Cookie{Name: CookieName, Value: value})
			if seen == value || seen == "" {
				t.Fatalf("session id = %q, want a fresh identifier", seen)
			}
			if len(rec.Result().Cookies()) != 1 {
				t.Fatal("replacement cookie not issued")
			}
		})
	}
}

func TestFromRequestWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	if _, ok := FromRequest(req); ok {
		t.Fatal("FromRequest reported a session on a bare request")
	}
}
