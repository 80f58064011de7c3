package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func newAuthEcho() *echo.Echo {
	e := echo.New()
	whoami := func(c echo.Context) error {
		claims := CurrentClaims(c)
		if claims == nil {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, claims.Role+":"+claims.Email)
	}
	e.GET("/me", whoami, RequireUser(testSecret))
	e.GET("/maybe", whoami, OptionalUser(testSecret))
	e.GET("/admin", whoami, RequireUser(testSecret), RequireRole(RoleAdmin))
	return e
}

func do(e *echo.Echo, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireUser(t *testing.T) {
	e := newAuthEcho()
	token, err := IssueToken(testSecret, UserClaims{UserID: 7, Email: "jo@example.com", Role: RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if rec := do(e, "/me", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", rec.Code)
	}
	rec := do(e, "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) })
	if rec.Code != http.StatusOK || rec.Body.String() != "user:jo@example.com" {
		t.Fatalf("bearer: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(e, "/me", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) })
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie: %d %s", rec.Code, rec.Body.String())
	}

	forged, _ := IssueToken("other-secret", UserClaims{UserID: 7, Role: RoleUser}, time.Hour)
	if rec := do(e, "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+forged) }); rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged token accepted: %d", rec.Code)
	}
	expired, _ := IssueToken(testSecret, UserClaims{UserID: 7, Role: RoleUser}, -time.Minute)
	if rec := do(e, "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token accepted: %d", rec.Code)
	}
}

func TestOptionalUser(t *testing.T) {
	e := newAuthEcho()
	if rec := do(e, "/maybe", nil); rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("anonymous: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, "/maybe", func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") }); rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("bad token must degrade to anonymous: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	e := newAuthEcho()
	user, _ := IssueToken(testSecret, UserClaims{UserID: 1, Role: RoleUser}, time.Hour)
	admin, _ := IssueToken(testSecret, UserClaims{Role: RoleAdmin, Email: "admin"}, time.Hour)

	if rec := do(e, "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+user) }); rec.Code != http.StatusForbidden {
		t.Fatalf("user reached admin route: %d", rec.Code)
	}
	rec := do(e, "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) })
	if rec.Code != http.StatusOK || rec.Body.String() != "admin:admin" {
		t.Fatalf("admin: %d %s", rec.Code, rec.Body.String())
	}
}
