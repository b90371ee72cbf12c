package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/taskify/backend/api/transport"
	"github.com/taskify/backend/domain"
	"github.com/taskify/backend/internal/session"
)

func issueToken(t *testing.T, m *session.Manager) string {
	t.Helper()
	tok, err := m.Issue(&domain.User{ID: "user-1", Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	return tok
}

func TestSessionGuard_ValidCookiePassesClaims(t *testing.T) {
	t.Parallel()

	sessions := session.NewManager("secret", time.Hour)
	var seen *session.Claims
	handler := SessionGuard(sessions, DenyJSON, nil)(func(ctx *fasthttp.RequestCtx) {
		seen, _ = ClaimsFrom(ctx)
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie(session.CookieName, issueToken(t, sessions))
	handler(&ctx)

	if seen == nil {
		t.Fatalf("handler did not receive claims")
	}
	if seen.UserID != "user-1" || seen.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", seen)
	}
}

func TestSessionGuard_MissingCookieRedirects(t *testing.T) {
	t.Parallel()

	sessions := session.NewManager("secret", time.Hour)
	called := false
	handler := SessionGuard(sessions, DenyRedirect, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
	})

	var ctx fasthttp.RequestCtx
	handler(&ctx)

	if called {
		t.Fatalf("handler must not run without a session")
	}
	if got := ctx.Response.StatusCode(); got != http.StatusSeeOther {
		t.Fatalf("status: got %d want %d", got, http.StatusSeeOther)
	}
	if loc := string(ctx.Response.Header.Peek("Location")); !strings.HasSuffix(loc, "/login") {
		t.Fatalf("location: got %q want a redirect to /login", loc)
	}
}

func TestSessionGuard_MissingCookieJSON(t *testing.T) {
	t.Parallel()

	sessions := session.NewManager("secret", time.Hour)
	handler := SessionGuard(sessions, DenyJSON, nil)(func(ctx *fasthttp.RequestCtx) {
		t.Fatalf("handler must not run without a session")
	})

	var ctx fasthttp.RequestCtx
	handler(&ctx)

	if got := ctx.Response.StatusCode(); got != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", got, http.StatusUnauthorized)
	}
	var env transport.Envelope
	if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
		t.Fatalf("body is not a json envelope: %v", err)
	}
	if env.Status != "error" {
		t.Fatalf("envelope status: got %q want %q", env.Status, "error")
	}
}

func TestSessionGuard_GarbageCookieDenied(t *testing.T) {
	t.Parallel()

	sessions := session.NewManager("secret", time.Hour)
	handler := SessionGuard(sessions, DenyJSON, nil)(func(ctx *fasthttp.RequestCtx) {
		t.Fatalf("handler must not run with a garbage token")
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie(session.CookieName, "not-a-token")
	handler(&ctx)

	if got := ctx.Response.StatusCode(); got != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", got, http.StatusUnauthorized)
	}
}

func TestSessionGuard_ForeignSecretDenied(t *testing.T) {
	t.Parallel()

	ours := session.NewManager("ours", time.Hour)
	theirs := session.NewManager("theirs", time.Hour)
	handler := SessionGuard(ours, DenyJSON, nil)(func(ctx *fasthttp.RequestCtx) {
		t.Fatalf("handler must not run with a foreign token")
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetCookie(session.CookieName, issueToken(t, theirs))
	handler(&ctx)

	if got := ctx.Response.StatusCode(); got != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", got, http.StatusUnauthorized)
	}
}

func TestClaimsFrom_Absent(t *testing.T) {
	t.Parallel()

	var ctx fasthttp.RequestCtx
	if _, ok := ClaimsFrom(&ctx); ok {
		t.Fatalf("expected no claims on a bare request")
	}
}
